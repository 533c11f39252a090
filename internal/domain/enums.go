// Package domain defines the core domain models for roundtable.
package domain

// Role is the author of a message in the conversation log.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Provider tags the upstream LLM vendor a bot talks to.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderDeepSeek  Provider = "deepseek"
)

// EventType represents the type of a session event.
type EventType string

const (
	EventTypeSessionCreated EventType = "session_created"
	EventTypeUserInput      EventType = "user_input"
	// LLM call events
	EventTypeLLMCallStarted EventType = "llm_call_started"
	EventTypeLLMCallDone    EventType = "llm_call_done"
)

// DefaultSystemPrompt is prepended to every prompt the engine builds and is
// the fallback system text for providers that carry it out of band.
const DefaultSystemPrompt = "you are a happy conversation bot"

// Token limit bounds applied when a roster is configured.
const (
	DefaultTokenLimit = 500
	MinTokenLimit     = 50
	MaxTokenLimit     = 2000
)

// MinCredentialLength is the shortest credential considered well-formed.
const MinCredentialLength = 10
