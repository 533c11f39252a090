package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
	"github.com/xiaot623/gogo/roundtable/internal/observe"
	"github.com/xiaot623/gogo/roundtable/internal/repository"
	"github.com/xiaot623/gogo/roundtable/policy"
)

// scriptedCompleter answers with "reply-<botID>-<n>" and records each prompt.
type scriptedCompleter struct {
	mu      sync.Mutex
	calls   []completion
	failFor map[string]error
}

type completion struct {
	bot    domain.Bot
	prompt []domain.PromptMessage
}

func (c *scriptedCompleter) Complete(_ context.Context, bot domain.Bot, messages []domain.PromptMessage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, completion{bot: bot, prompt: messages})
	if err := c.failFor[bot.ID]; err != nil {
		return "", err
	}
	return fmt.Sprintf("reply-%s-%d", bot.ID, len(c.calls)), nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (p *recordingPublisher) Publish(_ string, msg domain.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
}

type turnHook struct {
	observe.Nop
	turns []int
}

func (h *turnHook) TurnCompleted(_ context.Context, _, _ string, next int) {
	h.turns = append(h.turns, next)
}

func newTestValidator(t *testing.T) *CredentialValidator {
	t.Helper()
	engine, err := policy.NewEngine(t.Context(), policy.DefaultPolicy)
	require.NoError(t, err)
	return NewCredentialValidator(engine, nil, 4)
}

func newTestService(t *testing.T, completer *scriptedCompleter, opts ...Option) *Service {
	t.Helper()
	store := repository.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	svc := New(store, completer, newTestValidator(t), slogtest.Make(t, nil), opts...)
	n := 0
	svc.newID = func() string {
		n++
		return "sess-" + strconv.Itoa(n)
	}
	return svc
}

func roster(ids ...string) []BotConfig {
	bots := make([]BotConfig, len(ids))
	for i, id := range ids {
		bots[i] = BotConfig{ID: id, Name: "Bot " + id, Provider: domain.ProviderOpenAI, Credential: "sk-1234567890"}
	}
	return bots
}
