// Package llm translates between the provider-neutral prompt model and each
// provider's wire format, and performs the provider calls.
package llm

import (
	"context"
	"net/http"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// Adapter translates between the neutral prompt and one provider's native
// request and response bodies.
type Adapter interface {
	// Provider returns the tag this adapter serves.
	Provider() domain.Provider

	// BuildRequest encodes messages and tokenLimit into the provider request.
	BuildRequest(messages []domain.PromptMessage, tokenLimit int) (*WireRequest, error)

	// Authorize attaches credential to req the way the provider expects.
	Authorize(req *WireRequest, credential string)

	// ExtractReply returns the reply text from a provider response body.
	ExtractReply(body []byte) (string, error)
}

// WireRequest is a provider-native HTTP request ready to send.
type WireRequest struct {
	Provider domain.Provider
	URL      string
	Header   http.Header
	Body     []byte
}

// Invoker sends a WireRequest and returns the raw response body.
type Invoker interface {
	Invoke(ctx context.Context, req *WireRequest) ([]byte, error)
}

// Completer runs one completion for a bot.
type Completer interface {
	Complete(ctx context.Context, bot domain.Bot, messages []domain.PromptMessage) (string, error)
}

// Ensure Client implements Completer interface.
var _ Completer = (*Client)(nil)

// Endpoint locates a provider API and the model to request from it.
type Endpoint struct {
	URL   string
	Model string
}
