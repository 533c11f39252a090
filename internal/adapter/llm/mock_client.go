package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// MockInvoker answers every request locally with a well-formed reply in the
// requesting provider's response format.
type MockInvoker struct{}

// NewMockInvoker creates a new mock invoker.
func NewMockInvoker() *MockInvoker {
	return &MockInvoker{}
}

// Ensure MockInvoker implements Invoker interface.
var _ Invoker = (*MockInvoker)(nil)

// Invoke returns a mock response body.
func (m *MockInvoker) Invoke(ctx context.Context, req *WireRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var in struct {
		Messages []ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal(req.Body, &in); err != nil {
		return nil, xerrors.Errorf("mock: decode request: %w", err)
	}
	text := generateMockResponse(req.Provider, in.Messages)

	if req.Provider == domain.ProviderAnthropic {
		return json.Marshal(anthropicResponse{
			ID:         fmt.Sprintf("mock-msg-%d", time.Now().UnixNano()),
			Model:      "mock",
			Content:    []anthropicContent{{Type: "text", Text: text}},
			StopReason: "end_turn",
		})
	}
	return json.Marshal(ChatCompletionResponse{
		ID:    fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Model: "mock",
		Choices: []Choice{{
			Message:      &ChatMessage{Role: string(domain.RoleAssistant), Content: text},
			FinishReason: "stop",
		}},
	})
}

// generateMockResponse echoes the last user message.
func generateMockResponse(provider domain.Provider, messages []ChatMessage) string {
	var lastUserMessage string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == string(domain.RoleUser) {
			lastUserMessage = messages[i].Content
			break
		}
	}

	if lastUserMessage == "" {
		return fmt.Sprintf("[MOCK %s] This is a mock response.", provider)
	}
	return fmt.Sprintf("[MOCK %s] Received your message: %q. This is a mock response.", provider, truncate(lastUserMessage, 100))
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
