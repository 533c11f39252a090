// Package repository holds session storage implementations.
package repository

import (
	"context"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// Store is the session storage capability the service depends on. Sessions
// returned by GetSession are copies; every mutation goes through
// AppendMessage or RecordTurn. Unknown session ids yield
// *domain.SessionNotFoundError.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// AppendMessage appends msg to the session log without touching the cursor.
	AppendMessage(ctx context.Context, sessionID string, msg domain.Message) error
	// RecordTurn appends msg and moves the cursor to nextCursor atomically.
	RecordTurn(ctx context.Context, sessionID string, msg domain.Message, nextCursor int) error

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, sessionID string, afterTs int64, limit int) ([]domain.Event, error)

	// Lifecycle
	Close() error
}
