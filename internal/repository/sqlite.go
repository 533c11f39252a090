package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// SQLiteStore implements Store using SQLite. With the default memory DSN the
// data still lives only as long as the process.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, xerrors.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, xerrors.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, xerrors.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			cursor INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bots (
			session_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			bot_id TEXT NOT NULL,
			name TEXT NOT NULL,
			provider TEXT NOT NULL,
			credential TEXT NOT NULL,
			token_limit INTEGER NOT NULL,
			PRIMARY KEY (session_id, position),
			UNIQUE (session_id, bot_id),
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			bot_id TEXT,
			bot_name TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return xerrors.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession inserts the session, its roster and its opening log.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, cursor, created_at) VALUES (?, ?, ?)`,
		session.ID, session.Cursor, session.CreatedAt); err != nil {
		return xerrors.Errorf("insert session: %w", err)
	}
	for i, b := range session.Bots {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bots (session_id, position, bot_id, name, provider, credential, token_limit) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			session.ID, i, b.ID, b.Name, string(b.Provider), b.Credential, b.TokenLimit); err != nil {
			return xerrors.Errorf("insert bot %q: %w", b.ID, err)
		}
	}
	for _, m := range session.Messages {
		if err := insertMessage(ctx, tx, session.ID, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSession retrieves a session with its roster and full log.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session := domain.Session{ID: sessionID}
	err := s.db.QueryRowContext(ctx,
		`SELECT cursor, created_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.Cursor, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.SessionNotFoundError{SessionID: sessionID}
	}
	if err != nil {
		return nil, xerrors.Errorf("get session: %w", err)
	}

	bots, err := s.db.QueryContext(ctx,
		`SELECT bot_id, name, provider, credential, token_limit FROM bots WHERE session_id = ? ORDER BY position ASC`,
		sessionID)
	if err != nil {
		return nil, xerrors.Errorf("get bots: %w", err)
	}
	defer bots.Close()
	for bots.Next() {
		var b domain.Bot
		var provider string
		if err := bots.Scan(&b.ID, &b.Name, &provider, &b.Credential, &b.TokenLimit); err != nil {
			return nil, err
		}
		b.Provider = domain.Provider(provider)
		session.Bots = append(session.Bots, b)
	}
	if err := bots.Err(); err != nil {
		return nil, err
	}

	msgs, err := s.db.QueryContext(ctx,
		`SELECT role, content, bot_id, bot_name, created_at FROM messages WHERE session_id = ? ORDER BY seq ASC`,
		sessionID)
	if err != nil {
		return nil, xerrors.Errorf("get messages: %w", err)
	}
	defer msgs.Close()
	for msgs.Next() {
		var m domain.Message
		var role string
		var botID, botName sql.NullString
		if err := msgs.Scan(&role, &m.Content, &botID, &botName, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		m.BotID = botID.String
		m.BotName = botName.String
		session.Messages = append(session.Messages, m)
	}
	return &session, msgs.Err()
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, msg domain.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := sessionExists(ctx, tx, sessionID); err != nil {
		return err
	}
	if err := insertMessage(ctx, tx, sessionID, msg); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecordTurn(ctx context.Context, sessionID string, msg domain.Message, nextCursor int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var rosterLen int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bots WHERE session_id = ?`, sessionID).Scan(&rosterLen); err != nil {
		return xerrors.Errorf("count bots: %w", err)
	}
	if rosterLen == 0 {
		return &domain.SessionNotFoundError{SessionID: sessionID}
	}
	if nextCursor < 0 || nextCursor >= rosterLen {
		return xerrors.Errorf("cursor %d out of range for roster of %d", nextCursor, rosterLen)
	}

	if err := insertMessage(ctx, tx, sessionID, msg); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET cursor = ? WHERE session_id = ?`, nextCursor, sessionID); err != nil {
		return xerrors.Errorf("update cursor: %w", err)
	}
	return tx.Commit()
}

// CreateEvent creates a new event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.Event) error {
	payload := ""
	if event.Payload != nil {
		payload = string(event.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, session_id, ts, type, payload) VALUES (?, ?, ?, ?, ?)`,
		event.EventID, event.SessionID, event.Ts, string(event.Type), payload)
	return err
}

// GetEvents retrieves events for a session.
func (s *SQLiteStore) GetEvents(ctx context.Context, sessionID string, afterTs int64, limit int) ([]domain.Event, error) {
	query := `SELECT event_id, session_id, ts, type, payload FROM events WHERE session_id = ?`
	args := []interface{}{sessionID}

	if afterTs > 0 {
		query += ` AND ts > ?`
		args = append(args, afterTs)
	}

	query += ` ORDER BY ts ASC, rowid ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		var eventType string
		var payload sql.NullString
		if err := rows.Scan(&event.EventID, &event.SessionID, &event.Ts, &eventType, &payload); err != nil {
			return nil, err
		}
		event.Type = domain.EventType(eventType)
		if payload.Valid && payload.String != "" {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func sessionExists(ctx context.Context, tx *sql.Tx, sessionID string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_id = ?`, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.SessionNotFoundError{SessionID: sessionID}
	}
	return err
}

func insertMessage(ctx context.Context, tx *sql.Tx, sessionID string, m domain.Message) error {
	var botID, botName sql.NullString
	if m.BotID != "" {
		botID = sql.NullString{String: m.BotID, Valid: true}
		botName = sql.NullString{String: m.BotName, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, bot_id, bot_name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, string(m.Role), m.Content, botID, botName, m.CreatedAt); err != nil {
		return xerrors.Errorf("insert message: %w", err)
	}
	return nil
}
