package service

import (
	"context"
	"time"

	"cdr.dev/slog/v3"
	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// BotConfig is a roster entry as supplied by the caller. TokenLimit <= 0
// means unset.
type BotConfig struct {
	ID         string
	Name       string
	Provider   domain.Provider
	Credential string
	TokenLimit int
}

// ResolveTokenLimit picks the per-session override, then the bot's own
// limit, then the default, and clamps the result into the allowed range.
func ResolveTokenLimit(override, own int) int {
	limit := domain.DefaultTokenLimit
	switch {
	case override > 0:
		limit = override
	case own > 0:
		limit = own
	}
	return min(max(limit, domain.MinTokenLimit), domain.MaxTokenLimit)
}

// CreateSession starts a conversation with a fixed roster. The log starts
// with openingTopic as a user message and the cursor at the first bot.
func (s *Service) CreateSession(ctx context.Context, roster []BotConfig, openingTopic string, tokenLimits map[string]int) (*domain.Session, error) {
	if len(roster) == 0 {
		return nil, &domain.InvalidRosterError{Reason: "at least one bot is required"}
	}

	bots := make([]domain.Bot, 0, len(roster))
	seen := make(map[string]struct{}, len(roster))
	for _, b := range roster {
		if b.ID == "" {
			return nil, &domain.InvalidRosterError{Reason: "bot id is required"}
		}
		if _, dup := seen[b.ID]; dup {
			return nil, &domain.InvalidRosterError{Reason: "duplicate bot id " + b.ID}
		}
		seen[b.ID] = struct{}{}

		bots = append(bots, domain.Bot{
			ID:         b.ID,
			Name:       b.Name,
			Provider:   b.Provider,
			Credential: b.Credential,
			TokenLimit: ResolveTokenLimit(tokenLimits[b.ID], b.TokenLimit),
		})
	}

	session := &domain.Session{
		ID:        s.newID(),
		Bots:      bots,
		Messages:  []domain.Message{domain.UserMessage(openingTopic)},
		Cursor:    0,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, xerrors.Errorf("failed to create session: %w", err)
	}

	botIDs := make([]string, len(bots))
	for i, b := range bots {
		botIDs[i] = b.ID
	}
	s.traceEvent(ctx, session.ID, domain.EventTypeSessionCreated, domain.SessionCreatedPayload{BotIDs: botIDs})
	s.logger.Info(ctx, "session created", slog.F("session_id", session.ID), slog.F("bots", len(bots)))

	return session.Clone(), nil
}

// GetSession looks a session up by id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

// AppendUserInput adds a user message to the log and returns the updated
// session. The cursor and roster are untouched; text is not validated.
func (s *Service) AppendUserInput(ctx context.Context, sessionID, text string) (*domain.Session, error) {
	msg := domain.UserMessage(text)
	if err := s.store.AppendMessage(ctx, sessionID, msg); err != nil {
		return nil, err
	}
	s.traceEvent(ctx, sessionID, domain.EventTypeUserInput, domain.UserInputPayload{Length: len(text)})
	s.publisher.Publish(sessionID, msg)

	return s.store.GetSession(ctx, sessionID)
}
