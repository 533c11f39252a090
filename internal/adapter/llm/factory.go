package llm

import (
	"context"
	"time"

	"cdr.dev/slog/v3"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "ROUNDTABLE_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// ProvidersConfig locates every supported provider.
type ProvidersConfig struct {
	OpenAI           Endpoint
	Anthropic        Endpoint
	AnthropicVersion string
	DeepSeek         Endpoint
}

// DefaultAdapters returns one adapter per supported provider.
func DefaultAdapters(cfg ProvidersConfig) []Adapter {
	return []Adapter{
		NewOpenAIAdapter(cfg.OpenAI),
		NewAnthropicAdapter(cfg.Anthropic, cfg.AnthropicVersion),
		NewDeepSeekAdapter(cfg.DeepSeek),
	}
}

// NewInvoker returns a MockInvoker when mode is MOCK and an HTTPInvoker
// otherwise.
func NewInvoker(logger slog.Logger, mode string, timeout time.Duration) Invoker {
	if mode == ModeMock {
		logger.Info(context.Background(), "mock mode detected, using mock LLM invoker", slog.F("env", EnvMode))
		return NewMockInvoker()
	}
	return NewHTTPInvoker(timeout)
}
