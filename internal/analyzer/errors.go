package analyzer

// FailureKind categorizes analysis failures. The user-visible outcome is the
// same fixed failure reply for every kind; the kind is preserved for logs and
// metrics so the causes can be told apart in operation.
type FailureKind int

const (
	// KindDecode indicates the inbound bytes could not be decoded as an image.
	KindDecode FailureKind = iota
	// KindModel indicates the Gemini call itself failed.
	KindModel
	// KindFormat indicates the model's reply contained no JSON object at all.
	KindFormat
	// KindParse indicates the reply looked like JSON but did not parse.
	KindParse
	// KindValidate indicates parsed JSON was missing required fields.
	KindValidate
)

// String returns the metric/log label for the failure kind.
func (k FailureKind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindModel:
		return "model"
	case KindFormat:
		return "format"
	case KindParse:
		return "parse"
	case KindValidate:
		return "validate"
	default:
		return "unknown"
	}
}

// AnalysisError wraps an underlying failure with its kind.
type AnalysisError struct {
	Kind FailureKind
	Err  error
}

func (e *AnalysisError) Error() string {
	return "analysis failed (" + e.Kind.String() + "): " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
