// Package lineapi provides a client for the LINE Messaging API webhook and
// reply endpoints used by the bot.
//
// Inbound webhook deliveries are signed with X-Line-Signature (base64-encoded
// HMAC-SHA256 of the raw request body using the channel secret). ParseRequest
// validates the signature before unmarshalling the event envelope; a delivery
// that fails validation never reaches the dispatcher.
//
// Outbound replies go through the reply endpoint keyed by the one-time reply
// token carried on each inbound event. Message binary content (the user's
// uploaded image) is fetched from the separate data endpoint host.
//
// Reference: https://developers.line.biz/en/reference/messaging-api/
package lineapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// SignatureHeader is the request header carrying the webhook signature.
const SignatureHeader = "X-Line-Signature"

// maxBodySize is the maximum allowed webhook body size (1 MB). LINE batches
// multiple events per delivery, which stays well under this limit.
const maxBodySize = 1 << 20

// ErrInvalidSignature is returned when the webhook signature does not match
// the channel secret, or the signature header is missing entirely.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CallbackRequest is the webhook event envelope LINE delivers per batch.
type CallbackRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is a single webhook event. Only message events carry a Message;
// the bot ignores every other event type.
type Event struct {
	Type       string        `json:"type"`
	Timestamp  int64         `json:"timestamp"`
	ReplyToken string        `json:"replyToken,omitempty"`
	Source     *EventSource  `json:"source,omitempty"`
	Message    *EventMessage `json:"message,omitempty"`
}

// EventSource identifies where an event originated.
type EventSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// EventMessage is the message payload of a message event. Text is set for
// text messages; image content is fetched separately by ID.
type EventMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text,omitempty"`
}

// Message event and message type values used by the dispatcher.
const (
	EventTypeMessage = "message"
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// ParseRequest reads the webhook request body, validates its signature with
// the channel secret, and unmarshals the event envelope.
// Returns ErrInvalidSignature when the signature is missing or does not match.
func ParseRequest(channelSecret string, r *http.Request) (*CallbackRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read webhook body: %w", err)
	}
	defer r.Body.Close()

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		return nil, ErrInvalidSignature
	}
	if !ValidateSignature(channelSecret, body, signature) {
		return nil, ErrInvalidSignature
	}

	var cb CallbackRequest
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, fmt.Errorf("unmarshal webhook envelope: %w", err)
	}
	return &cb, nil
}

// ValidateSignature checks the X-Line-Signature header value against the
// HMAC-SHA256 of the body using the channel secret. The header carries the
// base64-encoded digest.
//
// Uses hmac.Equal for constant-time comparison to prevent timing attacks.
func ValidateSignature(channelSecret string, body []byte, signature string) bool {
	received, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return hmac.Equal(received, mac.Sum(nil))
}
