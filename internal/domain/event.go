package domain

import "encoding/json"

// Event is a trace record attached to a session.
type Event struct {
	EventID   string          `json:"eventId"`
	SessionID string          `json:"sessionId"`
	Ts        int64           `json:"ts"` // Unix milliseconds
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// SessionCreatedPayload is the payload for session_created events.
type SessionCreatedPayload struct {
	BotIDs []string `json:"botIds"`
}

// UserInputPayload is the payload for user_input events.
type UserInputPayload struct {
	Length int `json:"length"`
}

// LLMCallStartedPayload is the payload for llm_call_started events.
type LLMCallStartedPayload struct {
	RequestID  string   `json:"requestId"`
	BotID      string   `json:"botId"`
	Provider   Provider `json:"provider"`
	Explicit   bool     `json:"explicit"`
	TokenLimit int      `json:"tokenLimit"`
}

// LLMCallDonePayload is the payload for llm_call_done events.
type LLMCallDonePayload struct {
	RequestID string   `json:"requestId"`
	BotID     string   `json:"botId"`
	Provider  Provider `json:"provider"`
	LatencyMs int64    `json:"latencyMs"`
	Error     string   `json:"error,omitempty"`
}
