package llm

import (
	"encoding/json"
	"net/http"

	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// ChatAdapter speaks the OpenAI Chat Completions format: the prompt is sent
// as one flat message list, system entries included, and the reply is read
// from the first choice. DeepSeek serves the same format.
type ChatAdapter struct {
	provider domain.Provider
	endpoint Endpoint
}

// NewOpenAIAdapter creates a ChatAdapter for OpenAI.
func NewOpenAIAdapter(endpoint Endpoint) *ChatAdapter {
	return &ChatAdapter{provider: domain.ProviderOpenAI, endpoint: endpoint}
}

// NewDeepSeekAdapter creates a ChatAdapter for DeepSeek.
func NewDeepSeekAdapter(endpoint Endpoint) *ChatAdapter {
	return &ChatAdapter{provider: domain.ProviderDeepSeek, endpoint: endpoint}
}

func (a *ChatAdapter) Provider() domain.Provider { return a.provider }

// ChatMessage represents a chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest represents the chat completion request.
type ChatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

// ChatCompletionResponse represents the chat completion response.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice represents a completion choice.
type Choice struct {
	Index        int          `json:"index"`
	Message      *ChatMessage `json:"message,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (a *ChatAdapter) BuildRequest(messages []domain.PromptMessage, tokenLimit int) (*WireRequest, error) {
	req := ChatCompletionRequest{
		Model:     a.endpoint.Model,
		Messages:  make([]ChatMessage, 0, len(messages)),
		MaxTokens: tokenLimit,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, xerrors.Errorf("marshal %s request: %w", a.provider, err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &WireRequest{
		Provider: a.provider,
		URL:      a.endpoint.URL,
		Header:   header,
		Body:     body,
	}, nil
}

func (a *ChatAdapter) Authorize(req *WireRequest, credential string) {
	req.Header.Set("Authorization", "Bearer "+credential)
}

func (a *ChatAdapter) ExtractReply(body []byte) (string, error) {
	var resp ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", xerrors.Errorf("unmarshal %s response: %w", a.provider, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return "", xerrors.Errorf("%s response has no choices", a.provider)
	}
	return resp.Choices[0].Message.Content, nil
}
