package lineapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// defaultAPIBase is the LINE Messaging API base URL.
	defaultAPIBase = "https://api.line.me"

	// defaultBlobBase is the base URL for message binary content downloads.
	defaultBlobBase = "https://api-data.line.me"

	// defaultTimeout is the HTTP client timeout for API calls.
	defaultTimeout = 30 * time.Second

	// maxContentSize caps a downloaded message content body (10 MB).
	maxContentSize = 10 << 20
)

// Client provides methods for replying to events and fetching message
// content via the LINE Messaging API.
type Client struct {
	httpClient  *http.Client
	accessToken string
	apiBase     string
	blobBase    string
}

// NewClient creates a LINE Messaging API client authenticated with the
// channel access token.
func NewClient(accessToken string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		accessToken: accessToken,
		apiBase:     defaultAPIBase,
		blobBase:    defaultBlobBase,
	}
}

// apiError is the LINE API error response body.
type apiError struct {
	Message string `json:"message"`
	Details []struct {
		Message  string `json:"message"`
		Property string `json:"property"`
	} `json:"details,omitempty"`
}

// replyRequest is the body of POST /v2/bot/message/reply.
type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

// ReplyMessage sends up to five messages in reply to the event identified by
// replyToken. The token is single-use; the call is made exactly once with no
// retry, so a delivery failure surfaces directly to the caller.
func (c *Client) ReplyMessage(ctx context.Context, replyToken string, messages ...Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("reply requires at least one message")
	}

	payload, err := json.Marshal(replyRequest{ReplyToken: replyToken, Messages: messages})
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/v2/bot/message/reply", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return fmt.Errorf("reply rejected (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("reply rejected (status %d)", resp.StatusCode)
	}

	log.Debug().Int("messages", len(messages)).Msg("Reply delivered")
	return nil
}

// GetMessageContent downloads the binary content of a message (the user's
// uploaded image) by message ID. Returns the content bytes and MIME type.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/bot/message/%s/content", c.blobBase, messageID), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build content request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch message content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch message content %s: status %d", messageID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return nil, "", fmt.Errorf("read message content: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	log.Debug().
		Str("messageId", messageID).
		Int("bytes", len(data)).
		Str("mime", mimeType).
		Msg("Message content downloaded")

	return data, mimeType, nil
}
