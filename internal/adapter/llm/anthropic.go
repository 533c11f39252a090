package llm

import (
	"encoding/json"
	"net/http"

	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// AnthropicAdapter speaks the Anthropic Messages format, which carries the
// system prompt in its own top-level field.
type AnthropicAdapter struct {
	endpoint Endpoint
	version  string
}

// NewAnthropicAdapter creates a new AnthropicAdapter. version is sent as the
// anthropic-version header.
func NewAnthropicAdapter(endpoint Endpoint, version string) *AnthropicAdapter {
	return &AnthropicAdapter{endpoint: endpoint, version: version}
}

func (a *AnthropicAdapter) Provider() domain.Provider { return domain.ProviderAnthropic }

// --- Anthropic request types ---

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- Anthropic response types ---

type anthropicResponse struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (a *AnthropicAdapter) BuildRequest(messages []domain.PromptMessage, tokenLimit int) (*WireRequest, error) {
	ar := anthropicRequest{
		Model:     a.endpoint.Model,
		System:    systemPrompt(messages),
		Messages:  make([]anthropicMessage, 0, len(messages)),
		MaxTokens: tokenLimit,
	}
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			continue
		}
		ar.Messages = append(ar.Messages, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(ar)
	if err != nil {
		return nil, xerrors.Errorf("marshal anthropic request: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("anthropic-version", a.version)
	return &WireRequest{
		Provider: domain.ProviderAnthropic,
		URL:      a.endpoint.URL,
		Header:   header,
		Body:     body,
	}, nil
}

func (a *AnthropicAdapter) Authorize(req *WireRequest, credential string) {
	req.Header.Set("x-api-key", credential)
}

func (a *AnthropicAdapter) ExtractReply(body []byte) (string, error) {
	var ar anthropicResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return "", xerrors.Errorf("unmarshal anthropic response: %w", err)
	}
	if len(ar.Content) == 0 {
		return "", xerrors.New("anthropic response has no content blocks")
	}
	return ar.Content[0].Text, nil
}

// systemPrompt returns the first system entry, or the default instruction.
func systemPrompt(messages []domain.PromptMessage) string {
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			return m.Content
		}
	}
	return domain.DefaultSystemPrompt
}
