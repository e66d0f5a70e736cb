// Package card renders a validated analysis result into the LINE Flex bubble
// the user receives, including the affiliate-tagged Amazon purchase link.
package card

import (
	"net/url"
	"strings"

	"github.com/Yuito3784/recbook/internal/analyzer"
	"github.com/Yuito3784/recbook/internal/lineapi"
)

// DefaultMarketplaceBase is the e-commerce host purchase links point at.
const DefaultMarketplaceBase = "https://www.amazon.co.jp"

// heroIconURL is the fixed book icon shown as the bubble hero.
const heroIconURL = "https://cdn-icons-png.flaticon.com/512/3389/3389081.png"

// Fixed reply texts. The instruction reply answers any text message
// regardless of content; the failure reply covers every analysis failure.
const (
	instructionText = "本の表紙写真を送ってください！📸"
	failureText     = "解析失敗...もう一度試してください🙇‍♂️"
)

// Renderer maps analysis results onto the fixed card layout. It holds only
// immutable configuration and is safe for concurrent use.
type Renderer struct {
	affiliateTag    string
	marketplaceBase string
}

// NewRenderer creates a Renderer with the given affiliate tag, which is
// appended to every generated purchase link.
func NewRenderer(affiliateTag string) *Renderer {
	return &Renderer{
		affiliateTag:    affiliateTag,
		marketplaceBase: DefaultMarketplaceBase,
	}
}

// PurchaseURL builds the marketplace search URL for the keyword, with the
// keyword percent-encoded into the k parameter and the affiliate tag
// appended as the tag parameter. Spaces encode as %20, not +.
func (r *Renderer) PurchaseURL(keyword string) string {
	k := strings.ReplaceAll(url.QueryEscape(keyword), "+", "%20")
	return r.marketplaceBase + "/s?k=" + k + "&tag=" + url.QueryEscape(r.affiliateTag)
}

// Bubble renders the fixed-layout card for an analysis result: header banner,
// hero icon, body with title / catchphrase / description, a checklist of key
// points when present, and a footer purchase button. Purely a deterministic
// mapping; the result is assumed schema-validated.
func (r *Renderer) Bubble(res *analyzer.Result) lineapi.FlexMessage {
	purchaseURL := r.PurchaseURL(res.SearchKeyword)

	bubble := lineapi.NewFlexBubble()

	bubble.Header = lineapi.NewFlexBox("vertical", &lineapi.FlexText{
		Type:   "text",
		Text:   "⚡ 激アツ書籍発見 ⚡",
		Weight: "bold",
		Color:  "#FFD700",
		Size:   "sm",
		Align:  "center",
	})
	bubble.Header.BackgroundColor = "#000000"

	bubble.Hero = &lineapi.FlexImage{
		Type:        "image",
		URL:         heroIconURL,
		Size:        "xs",
		AspectRatio: "1:1",
		AspectMode:  "cover",
		Action:      lineapi.NewURIAction("", purchaseURL),
	}

	body := lineapi.NewFlexBox("vertical",
		&lineapi.FlexText{
			Type:   "text",
			Text:   res.Title,
			Weight: "bold",
			Size:   "xl",
			Wrap:   true,
		},
		&lineapi.FlexText{
			Type:   "text",
			Text:   "『" + res.Catchphrase + "』",
			Weight: "bold",
			Style:  "italic",
			Size:   "md",
			Color:  "#ff5555",
			Wrap:   true,
			Margin: "md",
		},
		&lineapi.FlexText{
			Type:   "text",
			Text:   res.Description,
			Size:   "sm",
			Color:  "#555555",
			Wrap:   true,
			Margin: "md",
		},
	)

	if len(res.KeyPoints) > 0 {
		body.Contents = append(body.Contents, &lineapi.FlexSeparator{Type: "separator", Margin: "lg"})
		checklist := lineapi.NewFlexBox("vertical")
		checklist.Margin = "lg"
		checklist.Spacing = "sm"
		for _, point := range res.KeyPoints {
			checklist.Contents = append(checklist.Contents, &lineapi.FlexText{
				Type: "text",
				Text: "✅ " + point,
				Size: "sm",
				Wrap: true,
			})
		}
		body.Contents = append(body.Contents, checklist)
	}
	bubble.Body = body

	footer := lineapi.NewFlexBox("vertical", &lineapi.FlexButton{
		Type:   "button",
		Style:  "primary",
		Height: "sm",
		Color:  "#FF9900",
		Action: lineapi.NewURIAction("Amazonで今すぐ見る ➤", purchaseURL),
	})
	footer.Spacing = "sm"
	bubble.Footer = footer

	return lineapi.NewFlexMessage("【要約】"+res.Title, bubble)
}

// InstructionMessage is the fixed reply to any text message.
func InstructionMessage() lineapi.TextMessage {
	return lineapi.NewTextMessage(instructionText)
}

// FailureMessage is the fixed reply when analysis fails for any reason.
func FailureMessage() lineapi.TextMessage {
	return lineapi.NewTextMessage(failureText)
}
