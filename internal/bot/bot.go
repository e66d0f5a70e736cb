// Package bot wires the webhook receiver and event dispatcher: verify and
// parse an inbound LINE delivery, route each event by message type, and send
// exactly one reply per handled event.
//
// Data flows strictly one way per request: webhook → dispatch →
// (analyze → render) → send. There is no queue, no background task, and no
// cross-request state; the handler holds only immutable configuration, so
// concurrent deliveries need no coordination.
package bot

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Yuito3784/recbook/internal/analyzer"
	"github.com/Yuito3784/recbook/internal/card"
	"github.com/Yuito3784/recbook/internal/lineapi"
	"github.com/Yuito3784/recbook/internal/metrics"
)

// MessagingClient is the subset of the LINE client the dispatcher needs.
// *lineapi.Client implements it; tests substitute a recorder.
type MessagingClient interface {
	ReplyMessage(ctx context.Context, replyToken string, messages ...lineapi.Message) error
	GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error)
}

// CoverAnalyzer produces a validated analysis result from raw image bytes.
// *analyzer.Analyzer implements it.
type CoverAnalyzer interface {
	Analyze(ctx context.Context, image []byte) (*analyzer.Result, error)
}

// Bot handles webhook deliveries for the book-cover bot.
type Bot struct {
	channelSecret string
	line          MessagingClient
	analyzer      CoverAnalyzer
	renderer      *card.Renderer
}

// New creates a Bot. channelSecret verifies webhook signatures; renderer
// carries the affiliate tag configuration.
func New(channelSecret string, line MessagingClient, a CoverAnalyzer, renderer *card.Renderer) *Bot {
	return &Bot{
		channelSecret: channelSecret,
		line:          line,
		analyzer:      a,
		renderer:      renderer,
	}
}

// ServeHTTP accepts one POST per inbound event batch. Signature failures are
// rejected with 400 before any event is processed; a reply delivery failure
// surfaces as a 500 so the platform's own webhook retry can kick in. Every
// verified delivery otherwise gets a literal "OK".
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cb, err := lineapi.ParseRequest(b.channelSecret, r)
	if err != nil {
		if errors.Is(err, lineapi.ErrInvalidSignature) {
			log.Warn().Msg("Webhook delivery rejected: invalid signature")
			http.Error(w, "invalid signature", http.StatusBadRequest)
		} else {
			log.Warn().Err(err).Msg("Webhook delivery rejected: malformed body")
			http.Error(w, "malformed webhook body", http.StatusBadRequest)
		}
		return
	}

	deliveryID := uuid.NewString()
	logger := log.With().Str("deliveryId", deliveryID).Logger()
	logger.Debug().Int("events", len(cb.Events)).Msg("Webhook delivery verified")

	for _, event := range cb.Events {
		if err := b.handleEvent(r.Context(), logger, event); err != nil {
			logger.Error().Err(err).Str("eventType", event.Type).Msg("Event handling failed")
			http.Error(w, "event handling failed", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleEvent routes one verified event. Non-message events and message
// types other than text/image are silently ignored. The returned error is a
// reply delivery failure only; analysis failures are answered with the fixed
// failure text and reported as success to the transport.
func (b *Bot) handleEvent(ctx context.Context, logger zerolog.Logger, event lineapi.Event) error {
	if event.Type != lineapi.EventTypeMessage || event.Message == nil {
		logger.Debug().Str("eventType", event.Type).Msg("Ignoring non-message event")
		b.countOutcome("ignored")
		return nil
	}

	switch event.Message.Type {
	case lineapi.MessageTypeText:
		b.countOutcome("text_instruction")
		return b.line.ReplyMessage(ctx, event.ReplyToken, card.InstructionMessage())

	case lineapi.MessageTypeImage:
		return b.handleImage(ctx, logger, event)

	default:
		logger.Debug().Str("messageType", event.Message.Type).Msg("Ignoring unsupported message type")
		b.countOutcome("ignored")
		return nil
	}
}

// handleImage fetches the image content, runs the analysis pipeline, and
// replies with either the rendered card or the fixed failure text.
func (b *Bot) handleImage(ctx context.Context, logger zerolog.Logger, event lineapi.Event) error {
	image, _, err := b.line.GetMessageContent(ctx, event.Message.ID)
	if err != nil {
		logger.Error().Err(err).Str("messageId", event.Message.ID).Msg("Failed to fetch image content")
		b.countOutcome("failure_fetch")
		return b.line.ReplyMessage(ctx, event.ReplyToken, card.FailureMessage())
	}

	result, err := b.analyzer.Analyze(ctx, image)
	if err != nil {
		// The analyzer already logged the cause; the user sees one fixed
		// failure reply regardless of the kind.
		var ae *analyzer.AnalysisError
		if errors.As(err, &ae) {
			b.countOutcome("failure_" + ae.Kind.String())
		} else {
			b.countOutcome("failure_unknown")
		}
		return b.line.ReplyMessage(ctx, event.ReplyToken, card.FailureMessage())
	}

	b.countOutcome("card")
	return b.line.ReplyMessage(ctx, event.ReplyToken, b.renderer.Bubble(result))
}

// countOutcome emits one EMF count for the per-event outcome.
func (b *Bot) countOutcome(outcome string) {
	metrics.New().
		Dimension("Outcome", outcome).
		Count("EventsHandled").
		Flush()
}
