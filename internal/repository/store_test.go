package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		fn(t, newTestSQLiteStore(t))
	})
}

func testSession(id string) *domain.Session {
	return &domain.Session{
		ID: id,
		Bots: []domain.Bot{
			{ID: "a", Name: "Alpha", Provider: domain.ProviderOpenAI, Credential: "sk-0123456789", TokenLimit: 500},
			{ID: "b", Name: "Beta", Provider: domain.ProviderAnthropic, Credential: "ant-0123456789", TokenLimit: 800},
		},
		Messages:  []domain.Message{domain.UserMessage("hello")},
		CreatedAt: time.Now(),
	}
}

func TestStoreSessionRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateSession(ctx, testSession("s1")))

		got, err := s.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", got.ID)
		assert.Equal(t, 0, got.Cursor)
		require.Len(t, got.Bots, 2)
		assert.Equal(t, "a", got.Bots[0].ID)
		assert.Equal(t, domain.ProviderAnthropic, got.Bots[1].Provider)
		assert.Equal(t, "ant-0123456789", got.Bots[1].Credential)
		assert.Equal(t, 800, got.Bots[1].TokenLimit)
		require.Len(t, got.Messages, 1)
		assert.Equal(t, domain.RoleUser, got.Messages[0].Role)
		assert.Equal(t, "hello", got.Messages[0].Content)
	})
}

func TestStoreGetSessionNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		_, err := s.GetSession(context.Background(), "missing")
		var notFound *domain.SessionNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "missing", notFound.SessionID)
	})
}

func TestStoreAppendMessage(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateSession(ctx, testSession("s1")))

		require.NoError(t, s.AppendMessage(ctx, "s1", domain.UserMessage("")))

		got, err := s.GetSession(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "", got.Messages[1].Content)
		assert.Equal(t, 0, got.Cursor)

		err = s.AppendMessage(ctx, "nope", domain.UserMessage("x"))
		var notFound *domain.SessionNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestStoreRecordTurn(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		session := testSession("s1")
		require.NoError(t, s.CreateSession(ctx, session))

		msg := domain.AssistantMessage(session.Bots[0], "hi from alpha")
		require.NoError(t, s.RecordTurn(ctx, "s1", msg, 1))

		got, err := s.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Cursor)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, domain.RoleAssistant, got.Messages[1].Role)
		assert.Equal(t, "a", got.Messages[1].BotID)
		assert.Equal(t, "Alpha", got.Messages[1].BotName)

		assert.Error(t, s.RecordTurn(ctx, "s1", msg, 2), "cursor must stay inside the roster")
		got, err = s.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, got.Messages, 2, "rejected turn must not append")

		var notFound *domain.SessionNotFoundError
		assert.ErrorAs(t, s.RecordTurn(ctx, "nope", msg, 0), &notFound)
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateSession(ctx, testSession("s1")))

		got, err := s.GetSession(ctx, "s1")
		require.NoError(t, err)
		got.Messages[0].Content = "tampered"
		got.Cursor = 1

		again, err := s.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "hello", again.Messages[0].Content)
		assert.Equal(t, 0, again.Cursor)
	})
}

func TestStoreEvents(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateSession(ctx, testSession("s1")))

		for i, typ := range []domain.EventType{domain.EventTypeSessionCreated, domain.EventTypeLLMCallStarted, domain.EventTypeLLMCallDone} {
			require.NoError(t, s.CreateEvent(ctx, &domain.Event{
				EventID:   "e" + string(rune('1'+i)),
				SessionID: "s1",
				Ts:        int64(100 + i),
				Type:      typ,
				Payload:   json.RawMessage(`{"n":1}`),
			}))
		}

		events, err := s.GetEvents(ctx, "s1", 0, 0)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, domain.EventTypeSessionCreated, events[0].Type)
		assert.JSONEq(t, `{"n":1}`, string(events[0].Payload))

		events, err = s.GetEvents(ctx, "s1", 100, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventTypeLLMCallStarted, events[0].Type)
	})
}

func TestOpen(t *testing.T) {
	s, err := Open(DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("postgres", "")
	assert.Error(t, err)
}
