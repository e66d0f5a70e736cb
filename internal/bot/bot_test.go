package bot

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Yuito3784/recbook/internal/analyzer"
	"github.com/Yuito3784/recbook/internal/card"
	"github.com/Yuito3784/recbook/internal/lineapi"
)

const testSecret = "test-channel-secret"

// recordingClient records outbound API calls and serves canned content.
type recordingClient struct {
	replies    []recordedReply
	content    []byte
	contentErr error
	replyErr   error
	fetches    []string
}

type recordedReply struct {
	token    string
	messages []lineapi.Message
}

func (c *recordingClient) ReplyMessage(ctx context.Context, replyToken string, messages ...lineapi.Message) error {
	c.replies = append(c.replies, recordedReply{token: replyToken, messages: messages})
	return c.replyErr
}

func (c *recordingClient) GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error) {
	c.fetches = append(c.fetches, messageID)
	if c.contentErr != nil {
		return nil, "", c.contentErr
	}
	return c.content, "image/jpeg", nil
}

// stubAnalyzer returns a fixed result or error and records invocations.
type stubAnalyzer struct {
	result *analyzer.Result
	err    error
	calls  int
}

func (a *stubAnalyzer) Analyze(ctx context.Context, image []byte) (*analyzer.Result, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookBody(messageType, extra string) string {
	return fmt.Sprintf(`{
		"destination": "U0",
		"events": [{
			"type": "message",
			"replyToken": "token-1",
			"source": {"type": "user", "userId": "U1"},
			"message": {"type": %q, "id": "msg-1"%s}
		}]
	}`, messageType, extra)
}

func postWebhook(t *testing.T, b *Bot, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/index", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(lineapi.SignatureHeader, signature)
	}
	rr := httptest.NewRecorder()
	b.ServeHTTP(rr, req)
	return rr
}

func TestTextMessage_GetsInstructionReply(t *testing.T) {
	client := &recordingClient{}
	b := New(testSecret, client, &stubAnalyzer{}, card.NewRenderer("tag-22"))

	body := webhookBody("text", `, "text": "what do I do?"`)
	rr := postWebhook(t, b, body, sign(body))

	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Fatalf("expected 200 OK, got %d %q", rr.Code, rr.Body.String())
	}
	if len(client.replies) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(client.replies))
	}
	reply := client.replies[0]
	if reply.token != "token-1" {
		t.Errorf("unexpected reply token: %s", reply.token)
	}
	msg, ok := reply.messages[0].(lineapi.TextMessage)
	if !ok {
		t.Fatalf("expected text reply, got %T", reply.messages[0])
	}
	if msg.Text != card.InstructionMessage().Text {
		t.Errorf("unexpected instruction text: %q", msg.Text)
	}
}

func TestImageMessage_Success_RepliesWithCard(t *testing.T) {
	client := &recordingClient{content: []byte("jpeg-bytes")}
	stub := &stubAnalyzer{result: &analyzer.Result{
		Title: "T", Author: "A", Catchphrase: "C", Description: "D", SearchKeyword: "T A",
	}}
	b := New(testSecret, client, stub, card.NewRenderer("tag-22"))

	body := webhookBody("image", "")
	rr := postWebhook(t, b, body, sign(body))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(client.fetches) != 1 || client.fetches[0] != "msg-1" {
		t.Errorf("expected content fetch for msg-1, got %v", client.fetches)
	}
	if stub.calls != 1 {
		t.Errorf("expected one analyzer call, got %d", stub.calls)
	}

	flex, ok := client.replies[0].messages[0].(lineapi.FlexMessage)
	if !ok {
		t.Fatalf("expected flex reply, got %T", client.replies[0].messages[0])
	}
	if flex.AltText != "【要約】T" {
		t.Errorf("unexpected alt text: %s", flex.AltText)
	}
}

func TestImageMessage_AnalysisFailure_RepliesFixedText(t *testing.T) {
	client := &recordingClient{content: []byte("jpeg-bytes")}
	stub := &stubAnalyzer{err: &analyzer.AnalysisError{Kind: analyzer.KindFormat, Err: errors.New("no JSON object")}}
	b := New(testSecret, client, stub, card.NewRenderer("tag-22"))

	body := webhookBody("image", "")
	rr := postWebhook(t, b, body, sign(body))

	if rr.Code != http.StatusOK {
		t.Fatalf("analysis failure must still ack the webhook, got %d", rr.Code)
	}
	msg, ok := client.replies[0].messages[0].(lineapi.TextMessage)
	if !ok {
		t.Fatalf("expected text failure reply, got %T (card must not be rendered)", client.replies[0].messages[0])
	}
	if msg.Text != card.FailureMessage().Text {
		t.Errorf("unexpected failure text: %q", msg.Text)
	}
}

func TestImageMessage_ContentFetchFailure_RepliesFixedText(t *testing.T) {
	client := &recordingClient{contentErr: errors.New("blob endpoint down")}
	stub := &stubAnalyzer{}
	b := New(testSecret, client, stub, card.NewRenderer("tag-22"))

	body := webhookBody("image", "")
	rr := postWebhook(t, b, body, sign(body))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if stub.calls != 0 {
		t.Error("analyzer must not run without image content")
	}
	msg := client.replies[0].messages[0].(lineapi.TextMessage)
	if msg.Text != card.FailureMessage().Text {
		t.Errorf("unexpected failure text: %q", msg.Text)
	}
}

func TestInvalidSignature_RejectedWithoutOutboundCalls(t *testing.T) {
	client := &recordingClient{}
	stub := &stubAnalyzer{}
	b := New(testSecret, client, stub, card.NewRenderer("tag-22"))

	body := webhookBody("image", "")
	rr := postWebhook(t, b, body, "invalid-signature")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if len(client.replies) != 0 || len(client.fetches) != 0 || stub.calls != 0 {
		t.Error("no outbound API call may happen for an unverified delivery")
	}
}

func TestMissingSignature_Rejected(t *testing.T) {
	b := New(testSecret, &recordingClient{}, &stubAnalyzer{}, card.NewRenderer("tag-22"))
	rr := postWebhook(t, b, webhookBody("text", ""), "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUnsupportedMessageType_Ignored(t *testing.T) {
	client := &recordingClient{}
	b := New(testSecret, client, &stubAnalyzer{}, card.NewRenderer("tag-22"))

	body := webhookBody("sticker", "")
	rr := postWebhook(t, b, body, sign(body))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(client.replies) != 0 {
		t.Errorf("expected no reply for sticker message, got %d", len(client.replies))
	}
}

func TestNonMessageEvent_Ignored(t *testing.T) {
	client := &recordingClient{}
	b := New(testSecret, client, &stubAnalyzer{}, card.NewRenderer("tag-22"))

	body := `{"destination":"U0","events":[{"type":"follow","replyToken":"token-1"}]}`
	rr := postWebhook(t, b, body, sign(body))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(client.replies) != 0 {
		t.Error("follow events must be ignored")
	}
}

func TestReplyDeliveryFailure_SurfacesAsServerError(t *testing.T) {
	client := &recordingClient{replyErr: errors.New("reply endpoint 500")}
	b := New(testSecret, client, &stubAnalyzer{}, card.NewRenderer("tag-22"))

	body := webhookBody("text", "")
	rr := postWebhook(t, b, body, sign(body))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on delivery failure, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	b := New(testSecret, &recordingClient{}, &stubAnalyzer{}, card.NewRenderer("tag-22"))
	req := httptest.NewRequest(http.MethodGet, "/api/index", nil)
	rr := httptest.NewRecorder()
	b.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
