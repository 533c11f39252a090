package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// AdvanceTurn lets one bot speak. The speaker is the bot under the cursor,
// or the explicitly named one. The whole log, behind the fixed system
// prompt, goes to the speaker's provider; on success the reply is appended
// and the cursor moves to the slot after the speaker. On failure the session
// is left exactly as it was and the error is returned unchanged.
func (s *Service) AdvanceTurn(ctx context.Context, sessionID string, speaker domain.Speaker) (*domain.TurnResult, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	index, err := resolveSpeaker(session, speaker)
	if err != nil {
		return nil, err
	}
	bot := session.Bots[index]

	requestID := "llm_" + uuid.NewString()[:8]
	s.traceEvent(ctx, session.ID, domain.EventTypeLLMCallStarted, domain.LLMCallStartedPayload{
		RequestID:  requestID,
		BotID:      bot.ID,
		Provider:   bot.Provider,
		Explicit:   speaker.IsExplicit(),
		TokenLimit: bot.TokenLimit,
	})

	startTime := time.Now()
	reply, err := s.llm.Complete(ctx, bot, BuildPrompt(session.Messages))

	done := domain.LLMCallDonePayload{
		RequestID: requestID,
		BotID:     bot.ID,
		Provider:  bot.Provider,
		LatencyMs: time.Since(startTime).Milliseconds(),
	}
	if err != nil {
		done.Error = err.Error()
		s.traceEvent(ctx, session.ID, domain.EventTypeLLMCallDone, done)
		return nil, err
	}
	s.traceEvent(ctx, session.ID, domain.EventTypeLLMCallDone, done)

	msg := domain.AssistantMessage(bot, reply)
	next := session.NextCursor(index)
	if err := s.store.RecordTurn(ctx, session.ID, msg, next); err != nil {
		return nil, xerrors.Errorf("failed to record turn: %w", err)
	}
	s.publisher.Publish(session.ID, msg)
	s.hook.TurnCompleted(ctx, session.ID, bot.ID, next)

	return &domain.TurnResult{
		SessionID: session.ID,
		Reply: domain.BotResponse{
			BotID:   bot.ID,
			BotName: bot.Name,
			Content: reply,
		},
		NextCursor: next,
	}, nil
}

// resolveSpeaker returns the roster index of the bot that speaks next.
func resolveSpeaker(session *domain.Session, speaker domain.Speaker) (int, error) {
	botID, explicit := speaker.BotID()
	if !explicit {
		return session.Cursor, nil
	}
	index := session.BotIndex(botID)
	if index < 0 {
		return 0, &domain.BotNotInRosterError{SessionID: session.ID, BotID: botID}
	}
	return index, nil
}

// BuildPrompt prepends the fixed system instruction to the session log.
func BuildPrompt(log []domain.Message) []domain.PromptMessage {
	prompt := make([]domain.PromptMessage, 0, len(log)+1)
	prompt = append(prompt, domain.PromptMessage{Role: domain.RoleSystem, Content: domain.DefaultSystemPrompt})
	for _, m := range log {
		prompt = append(prompt, domain.PromptMessage{Role: m.Role, Content: m.Content})
	}
	return prompt
}
