package lineapi

// Message is any outbound message payload accepted by the reply endpoint.
type Message interface {
	message()
}

// TextMessage is a plain text reply.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextMessage creates a text message.
func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

func (TextMessage) message() {}

// FlexMessage is a rich-card reply rendered by the LINE client from a Flex
// container. AltText is shown in chat lists and push notifications.
type FlexMessage struct {
	Type     string      `json:"type"`
	AltText  string      `json:"altText"`
	Contents *FlexBubble `json:"contents"`
}

// NewFlexMessage creates a flex message wrapping a single bubble.
func NewFlexMessage(altText string, bubble *FlexBubble) FlexMessage {
	return FlexMessage{Type: "flex", AltText: altText, Contents: bubble}
}

func (FlexMessage) message() {}
