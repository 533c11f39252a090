package observe

import (
	"testing"
	"time"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/stretchr/testify/assert"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

func TestLogHookDoesNotFailOnWarnings(t *testing.T) {
	var h Hook = NewLogHook(slogtest.Make(t, nil))

	ctx := t.Context()
	h.RequestBuilt(ctx, domain.ProviderOpenAI, 2, 500)
	h.ReplyReceived(ctx, domain.ProviderOpenAI, 10, time.Millisecond)
	h.CallFailed(ctx, domain.ProviderAnthropic, assert.AnError)
	h.CredentialChecked(ctx, "a", domain.ProviderDeepSeek, false)
	h.TurnCompleted(ctx, "s1", "a", 1)
}

func TestNopIsAHook(t *testing.T) {
	var h Hook = Nop{}
	assert.NotPanics(t, func() {
		h.TurnCompleted(t.Context(), "s1", "a", 0)
		h.CallFailed(t.Context(), domain.ProviderOpenAI, assert.AnError)
	})
}
