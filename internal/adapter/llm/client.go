package llm

import (
	"context"
	"errors"
	"time"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
	"github.com/xiaot623/gogo/roundtable/internal/observe"
)

// Client routes completions to the adapter registered for a bot's provider
// and sends them through an Invoker.
type Client struct {
	invoker  Invoker
	adapters map[domain.Provider]Adapter
	hook     observe.Hook
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAdapter registers an adapter with the client. A later adapter for the
// same provider replaces an earlier one.
func WithAdapter(a Adapter) ClientOption {
	return func(c *Client) {
		c.adapters[a.Provider()] = a
	}
}

// WithHook sets the observability hook.
func WithHook(h observe.Hook) ClientOption {
	return func(c *Client) {
		c.hook = h
	}
}

// NewClient creates a new Client with the given invoker and options.
func NewClient(invoker Invoker, opts ...ClientOption) *Client {
	c := &Client{
		invoker:  invoker,
		adapters: make(map[domain.Provider]Adapter),
		hook:     observe.Nop{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Adapter returns the adapter registered for provider.
func (c *Client) Adapter(provider domain.Provider) (Adapter, error) {
	a, ok := c.adapters[provider]
	if !ok {
		return nil, &domain.UnsupportedProviderError{Provider: provider}
	}
	return a, nil
}

// Complete builds the provider request for bot, sends it and returns the
// reply text. Unknown providers fail before any network attempt; every other
// failure is a *domain.ProviderCallError. Nothing is retried.
func (c *Client) Complete(ctx context.Context, bot domain.Bot, messages []domain.PromptMessage) (string, error) {
	adapter, err := c.Adapter(bot.Provider)
	if err != nil {
		return "", err
	}

	req, err := adapter.BuildRequest(messages, bot.TokenLimit)
	if err != nil {
		return "", c.fail(ctx, bot.Provider, err)
	}
	adapter.Authorize(req, bot.Credential)
	c.hook.RequestBuilt(ctx, bot.Provider, len(messages), bot.TokenLimit)

	start := time.Now()
	body, err := c.invoker.Invoke(ctx, req)
	if err != nil {
		return "", c.fail(ctx, bot.Provider, err)
	}

	reply, err := adapter.ExtractReply(body)
	if err != nil {
		return "", c.fail(ctx, bot.Provider, err)
	}
	c.hook.ReplyReceived(ctx, bot.Provider, len(reply), time.Since(start))

	return reply, nil
}

func (c *Client) fail(ctx context.Context, provider domain.Provider, cause error) error {
	callErr := &domain.ProviderCallError{Provider: provider, Cause: cause}
	var statusErr *StatusError
	if errors.As(cause, &statusErr) {
		callErr.Status = statusErr.Status
	}
	c.hook.CallFailed(ctx, provider, callErr)
	return callErr
}
