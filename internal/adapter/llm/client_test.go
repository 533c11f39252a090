package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

type fakeInvoker struct {
	body  []byte
	err   error
	calls []*WireRequest
}

func (f *fakeInvoker) Invoke(_ context.Context, req *WireRequest) ([]byte, error) {
	f.calls = append(f.calls, req)
	return f.body, f.err
}

type recordingHook struct {
	built, received, failed int
}

func (h *recordingHook) RequestBuilt(context.Context, domain.Provider, int, int) { h.built++ }
func (h *recordingHook) ReplyReceived(context.Context, domain.Provider, int, time.Duration) {
	h.received++
}
func (h *recordingHook) CallFailed(context.Context, domain.Provider, error) { h.failed++ }
func (h *recordingHook) CredentialChecked(context.Context, string, domain.Provider, bool) {}
func (h *recordingHook) TurnCompleted(context.Context, string, string, int) {}

func newTestClient(inv Invoker, hook *recordingHook) *Client {
	return NewClient(inv,
		WithAdapter(NewOpenAIAdapter(Endpoint{URL: "https://openai.test", Model: "gpt-4o"})),
		WithAdapter(NewAnthropicAdapter(Endpoint{URL: "https://anthropic.test", Model: "claude"}, "2023-06-01")),
		WithHook(hook),
	)
}

func TestClientCompleteDispatchesByProvider(t *testing.T) {
	inv := &fakeInvoker{body: []byte(`{"content":[{"type":"text","text":"hello from claude"}]}`)}
	hook := &recordingHook{}
	c := newTestClient(inv, hook)

	bot := domain.Bot{ID: "b", Name: "Claude", Provider: domain.ProviderAnthropic, Credential: "ant-0123456789", TokenLimit: 250}
	reply, err := c.Complete(context.Background(), bot, testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "hello from claude", reply)

	require.Len(t, inv.calls, 1)
	assert.Equal(t, "https://anthropic.test", inv.calls[0].URL)
	assert.Equal(t, "ant-0123456789", inv.calls[0].Header.Get("x-api-key"))
	assert.Contains(t, string(inv.calls[0].Body), `"max_tokens":250`)
	assert.Equal(t, 1, hook.built)
	assert.Equal(t, 1, hook.received)
}

func TestClientCompleteUnsupportedProvider(t *testing.T) {
	inv := &fakeInvoker{}
	hook := &recordingHook{}
	c := newTestClient(inv, hook)

	_, err := c.Complete(context.Background(), domain.Bot{ID: "x", Provider: "gemini"}, testPrompt())

	var unsupported *domain.UnsupportedProviderError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, domain.Provider("gemini"), unsupported.Provider)
	assert.Empty(t, inv.calls, "no network attempt for unsupported providers")
}

func TestClientCompleteWrapsTransportFailure(t *testing.T) {
	cause := &StatusError{Status: 401, Message: "bad key"}
	hook := &recordingHook{}
	c := newTestClient(&fakeInvoker{err: cause}, hook)

	_, err := c.Complete(context.Background(), domain.Bot{ID: "a", Provider: domain.ProviderOpenAI}, testPrompt())

	var callErr *domain.ProviderCallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, domain.ProviderOpenAI, callErr.Provider)
	assert.Equal(t, 401, callErr.Status)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, 1, hook.failed)
	assert.Equal(t, 0, hook.received)
}

func TestClientCompleteWrapsMalformedReply(t *testing.T) {
	c := newTestClient(&fakeInvoker{body: []byte(`{"choices":[]}`)}, &recordingHook{})

	_, err := c.Complete(context.Background(), domain.Bot{ID: "a", Provider: domain.ProviderOpenAI}, testPrompt())

	var callErr *domain.ProviderCallError
	require.ErrorAs(t, err, &callErr)
	assert.Zero(t, callErr.Status)
}
