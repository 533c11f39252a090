// Package observe defines the extension points the engine reports to.
package observe

import (
	"context"
	"time"

	"cdr.dev/slog/v3"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// Hook receives notifications at fixed points of a turn and of credential
// validation. Implementations must not block.
type Hook interface {
	// RequestBuilt fires once the provider payload is encoded, before sending.
	RequestBuilt(ctx context.Context, provider domain.Provider, messages, tokenLimit int)
	// ReplyReceived fires after the reply text was extracted.
	ReplyReceived(ctx context.Context, provider domain.Provider, replyLen int, latency time.Duration)
	// CallFailed fires when a provider call returns an error.
	CallFailed(ctx context.Context, provider domain.Provider, err error)
	// CredentialChecked fires once per validated credential.
	CredentialChecked(ctx context.Context, botID string, provider domain.Provider, valid bool)
	// TurnCompleted fires after a reply was appended and the cursor moved.
	TurnCompleted(ctx context.Context, sessionID, botID string, nextCursor int)
}

// Nop ignores every notification.
type Nop struct{}

var _ Hook = Nop{}

func (Nop) RequestBuilt(context.Context, domain.Provider, int, int) {}
func (Nop) ReplyReceived(context.Context, domain.Provider, int, time.Duration) {}
func (Nop) CallFailed(context.Context, domain.Provider, error) {}
func (Nop) CredentialChecked(context.Context, string, domain.Provider, bool) {}
func (Nop) TurnCompleted(context.Context, string, string, int) {}

// LogHook writes every notification to a structured logger.
type LogHook struct {
	log slog.Logger
}

var _ Hook = (*LogHook)(nil)

// NewLogHook returns a Hook backed by logger.
func NewLogHook(logger slog.Logger) *LogHook {
	return &LogHook{log: logger}
}

func (h *LogHook) RequestBuilt(ctx context.Context, provider domain.Provider, messages, tokenLimit int) {
	h.log.Debug(ctx, "provider request built",
		slog.F("provider", provider),
		slog.F("messages", messages),
		slog.F("token_limit", tokenLimit),
	)
}

func (h *LogHook) ReplyReceived(ctx context.Context, provider domain.Provider, replyLen int, latency time.Duration) {
	h.log.Info(ctx, "provider reply received",
		slog.F("provider", provider),
		slog.F("reply_len", replyLen),
		slog.F("latency_ms", latency.Milliseconds()),
	)
}

func (h *LogHook) CallFailed(ctx context.Context, provider domain.Provider, err error) {
	h.log.Warn(ctx, "provider call failed", slog.F("provider", provider), slog.Error(err))
}

func (h *LogHook) CredentialChecked(ctx context.Context, botID string, provider domain.Provider, valid bool) {
	h.log.Info(ctx, "credential checked",
		slog.F("bot_id", botID),
		slog.F("provider", provider),
		slog.F("valid", valid),
	)
}

func (h *LogHook) TurnCompleted(ctx context.Context, sessionID, botID string, nextCursor int) {
	h.log.Debug(ctx, "turn completed",
		slog.F("session_id", sessionID),
		slog.F("bot_id", botID),
		slog.F("next_cursor", nextCursor),
	)
}
