package domain

import "fmt"

// InvalidRosterError is returned when a session is created with a roster
// that can't take turns.
type InvalidRosterError struct {
	Reason string
}

func (e *InvalidRosterError) Error() string {
	return fmt.Sprintf("invalid roster: %s", e.Reason)
}

// SessionNotFoundError is returned for unknown session identifiers.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("chat session %q not found", e.SessionID)
}

// BotNotInRosterError is returned when an explicit turn names a bot the
// session doesn't have.
type BotNotInRosterError struct {
	SessionID string
	BotID     string
}

func (e *BotNotInRosterError) Error() string {
	return fmt.Sprintf("bot %q not found in session %q", e.BotID, e.SessionID)
}

// UnsupportedProviderError is returned when no adapter is registered for a
// provider tag. It is raised before any network attempt.
type UnsupportedProviderError struct {
	Provider Provider
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %s", e.Provider)
}

// ProviderCallError wraps any transport, authentication or decoding failure
// of a provider call.
type ProviderCallError struct {
	Provider Provider
	Status   int // HTTP status, 0 when no response was received
	Cause    error
}

func (e *ProviderCallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to get response from %s [%d]: %v", e.Provider, e.Status, e.Cause)
	}
	return fmt.Sprintf("failed to get response from %s: %v", e.Provider, e.Cause)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Cause
}
