package lineapi

// Flex container and component types, shaped to the LINE Flex Message JSON
// schema. Only the subset the bot renders is modeled: a single bubble with
// box/text/image/button/separator components.
//
// Reference: https://developers.line.biz/en/reference/messaging-api/#flex-message

// FlexComponent is any component that can appear in a box's contents.
type FlexComponent interface {
	flexComponent()
}

// FlexBubble is a single-card flex container.
type FlexBubble struct {
	Type   string     `json:"type"`
	Header *FlexBox   `json:"header,omitempty"`
	Hero   *FlexImage `json:"hero,omitempty"`
	Body   *FlexBox   `json:"body,omitempty"`
	Footer *FlexBox   `json:"footer,omitempty"`
}

// NewFlexBubble creates an empty bubble container.
func NewFlexBubble() *FlexBubble {
	return &FlexBubble{Type: "bubble"}
}

// FlexBox lays out child components vertically or horizontally.
type FlexBox struct {
	Type            string          `json:"type"`
	Layout          string          `json:"layout"`
	Contents        []FlexComponent `json:"contents"`
	Spacing         string          `json:"spacing,omitempty"`
	Margin          string          `json:"margin,omitempty"`
	BackgroundColor string          `json:"backgroundColor,omitempty"`
}

// NewFlexBox creates a box with the given layout ("vertical" or "horizontal").
func NewFlexBox(layout string, contents ...FlexComponent) *FlexBox {
	return &FlexBox{Type: "box", Layout: layout, Contents: contents}
}

func (*FlexBox) flexComponent() {}

// FlexText is a text component.
type FlexText struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Weight string `json:"weight,omitempty"`
	Style  string `json:"style,omitempty"`
	Color  string `json:"color,omitempty"`
	Size   string `json:"size,omitempty"`
	Align  string `json:"align,omitempty"`
	Margin string `json:"margin,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
}

func (*FlexText) flexComponent() {}

// FlexImage is an image component, usable as a bubble hero.
type FlexImage struct {
	Type        string     `json:"type"`
	URL         string     `json:"url"`
	Size        string     `json:"size,omitempty"`
	AspectRatio string     `json:"aspectRatio,omitempty"`
	AspectMode  string     `json:"aspectMode,omitempty"`
	Action      *URIAction `json:"action,omitempty"`
}

func (*FlexImage) flexComponent() {}

// FlexButton is a tappable button component.
type FlexButton struct {
	Type   string     `json:"type"`
	Style  string     `json:"style,omitempty"`
	Height string     `json:"height,omitempty"`
	Color  string     `json:"color,omitempty"`
	Action *URIAction `json:"action"`
}

func (*FlexButton) flexComponent() {}

// FlexSeparator draws a divider line between components.
type FlexSeparator struct {
	Type   string `json:"type"`
	Margin string `json:"margin,omitempty"`
}

func (*FlexSeparator) flexComponent() {}

// URIAction opens a URL when its component is tapped.
type URIAction struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	URI   string `json:"uri"`
}

// NewURIAction creates a URI action.
func NewURIAction(label, uri string) *URIAction {
	return &URIAction{Type: "uri", Label: label, URI: uri}
}
