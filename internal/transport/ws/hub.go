// Package ws streams session transcripts to WebSocket watchers.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cdr.dev/slog/v3"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

// Frame types sent to watchers.
const (
	FrameSnapshot = "snapshot"
	FrameMessage  = "message"
)

// Frame is one JSON document written to a watcher.
type Frame struct {
	Type      string          `json:"type"`
	Ts        int64           `json:"ts"`
	SessionID string          `json:"sessionId"`
	Message   *domain.Message `json:"message,omitempty"`
	Session   *domain.Session `json:"session,omitempty"`
}

// Connection is a single watcher.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	mu        sync.Mutex
}

// Hub tracks watchers per session and fans messages out to them.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// Sessions maps session id to set of connection IDs
	sessions map[string]map[string]bool

	register   chan *registration
	unregister chan *Connection
	broadcast  chan *sessionFrame
	done       chan struct{}

	logger slog.Logger
	mu     sync.RWMutex
}

type registration struct {
	conn  *Connection
	first func() ([]byte, error)
}

type sessionFrame struct {
	sessionID string
	data      []byte
}

// NewHub creates a new Hub. Run must be started before frames are delivered.
func NewHub(logger slog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		sessions:    make(map[string]map[string]bool),
		register:    make(chan *registration),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *sessionFrame, 256),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run is the hub's main loop. It returns when ctx is done, closing every
// remaining watcher's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, conn := range h.connections {
				close(conn.Send)
				delete(h.connections, id)
			}
			h.sessions = make(map[string]map[string]bool)
			h.mu.Unlock()
			return

		case reg := <-h.register:
			conn := reg.conn
			if reg.first != nil {
				data, err := reg.first()
				if err != nil {
					h.logger.Warn(ctx, "failed to build first frame", slog.F("conn_id", conn.ID), slog.Error(err))
					close(conn.Send)
					continue
				}
				conn.Send <- data
			}
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if h.sessions[conn.SessionID] == nil {
				h.sessions[conn.SessionID] = make(map[string]bool)
			}
			h.sessions[conn.SessionID][conn.ID] = true
			h.mu.Unlock()
			h.logger.Debug(ctx, "watcher registered", slog.F("conn_id", conn.ID), slog.F("session_id", conn.SessionID))

		case conn := <-h.unregister:
			h.remove(conn)
			h.logger.Debug(ctx, "watcher unregistered", slog.F("conn_id", conn.ID))

		case f := <-h.broadcast:
			var slow []*Connection
			h.mu.RLock()
			for connID := range h.sessions[f.sessionID] {
				conn, ok := h.connections[connID]
				if !ok {
					continue
				}
				select {
				case conn.Send <- f.data:
				default:
					slow = append(slow, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range slow {
				h.logger.Warn(ctx, "watcher buffer full, closing", slog.F("conn_id", conn.ID))
				h.remove(conn)
			}
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return
	}
	delete(h.connections, conn.ID)
	if set := h.sessions[conn.SessionID]; set != nil {
		delete(set, conn.ID)
		if len(set) == 0 {
			delete(h.sessions, conn.SessionID)
		}
	}
	close(conn.Send)
}

// NewConnection wraps ws as a watcher of sessionID.
func (h *Hub) NewConnection(ws *websocket.Conn, sessionID string) *Connection {
	return &Connection{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Conn:      ws,
		Send:      make(chan []byte, 256),
	}
}

// Register adds a connection to the hub. When first is non-nil the hub calls
// it while registering and queues its result ahead of any broadcast, so a
// snapshot taken there misses nothing published afterwards. A message
// published just before may be delivered twice. Register reports false once
// the hub has stopped.
func (h *Hub) Register(conn *Connection, first func() ([]byte, error)) bool {
	select {
	case h.register <- &registration{conn: conn, first: first}:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish broadcasts msg to every watcher of sessionID. It never blocks; when
// the broadcast queue is full the frame is dropped.
func (h *Hub) Publish(sessionID string, msg domain.Message) {
	data, err := json.Marshal(Frame{
		Type:      FrameMessage,
		Ts:        time.Now().UnixMilli(),
		SessionID: sessionID,
		Message:   &msg,
	})
	if err != nil {
		h.logger.Error(context.Background(), "failed to encode frame", slog.Error(err))
		return
	}
	select {
	case h.broadcast <- &sessionFrame{sessionID: sessionID, data: data}:
	default:
		h.logger.Warn(context.Background(), "broadcast queue full, dropping frame", slog.F("session_id", sessionID))
	}
}

// WatcherCount returns the number of watchers of sessionID.
func (h *Hub) WatcherCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
