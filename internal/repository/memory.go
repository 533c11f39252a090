package repository

import (
	"context"
	"sync"

	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// MemoryStore keeps sessions in a process-lifetime map. It is safe for
// concurrent use across sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	events   map[string][]domain.Event
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		events:   make(map[string][]domain.Event),
	}
}

// CreateSession stores a copy of session. Identifiers are never reused.
func (s *MemoryStore) CreateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return xerrors.Errorf("session %q already exists", session.ID)
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

// GetSession returns a copy of the stored session.
func (s *MemoryStore) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, &domain.SessionNotFoundError{SessionID: sessionID}
	}
	return session.Clone(), nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, sessionID string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return &domain.SessionNotFoundError{SessionID: sessionID}
	}
	session.Messages = append(session.Messages, msg)
	return nil
}

func (s *MemoryStore) RecordTurn(_ context.Context, sessionID string, msg domain.Message, nextCursor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return &domain.SessionNotFoundError{SessionID: sessionID}
	}
	if nextCursor < 0 || nextCursor >= len(session.Bots) {
		return xerrors.Errorf("cursor %d out of range for roster of %d", nextCursor, len(session.Bots))
	}
	session.Messages = append(session.Messages, msg)
	session.Cursor = nextCursor
	return nil
}

func (s *MemoryStore) CreateEvent(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.SessionID] = append(s.events[event.SessionID], *event)
	return nil
}

// GetEvents returns events after afterTs in insertion order. limit <= 0
// means no limit.
func (s *MemoryStore) GetEvents(_ context.Context, sessionID string, afterTs int64, limit int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Event
	for _, e := range s.events[sessionID] {
		if e.Ts <= afterTs {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Close drops every session.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.sessions)
	clear(s.events)
	return nil
}
