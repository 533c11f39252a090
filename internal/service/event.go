package service

import (
	"context"
	"encoding/json"
	"time"

	"cdr.dev/slog/v3"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// recordEvent records an event to the store.
func (s *Service) recordEvent(ctx context.Context, sessionID string, eventType domain.EventType, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return xerrors.Errorf("failed to marshal payload: %w", err)
	}

	event := &domain.Event{
		EventID:   "evt_" + uuid.NewString(),
		SessionID: sessionID,
		Ts:        time.Now().UnixMilli(),
		Type:      eventType,
		Payload:   payloadBytes,
	}

	return s.store.CreateEvent(ctx, event)
}

// traceEvent records an event and only logs when that fails; tracing never
// fails the operation it describes.
func (s *Service) traceEvent(ctx context.Context, sessionID string, eventType domain.EventType, payload interface{}) {
	if err := s.recordEvent(ctx, sessionID, eventType, payload); err != nil {
		s.logger.Warn(ctx, "failed to record event",
			slog.F("session_id", sessionID),
			slog.F("type", eventType),
			slog.Error(err),
		)
	}
}

// GetSessionEvents lists the trace events of a session.
func (s *Service) GetSessionEvents(ctx context.Context, sessionID string, afterTs int64, limit int) ([]domain.Event, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	events, err := s.store.GetEvents(ctx, sessionID, afterTs, limit)
	if err != nil {
		return nil, xerrors.Errorf("failed to get events: %w", err)
	}
	return events, nil
}
