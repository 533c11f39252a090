package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cdr.dev/slog/v3"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
)

const (
	writeTimeout   = 10 * time.Second
	readTimeout    = 60 * time.Second
	pingInterval   = 50 * time.Second
	maxMessageSize = 1024
)

// SessionSource looks up the session a watcher subscribes to.
type SessionSource interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Server upgrades watch requests and pumps frames to them.
type Server struct {
	hub      *Hub
	sessions SessionSource
	logger   slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a watch server. allowedOrigin limits browser origins;
// empty allows any.
func NewServer(h *Hub, sessions SessionSource, logger slog.Logger, allowedOrigin string) *Server {
	return &Server{
		hub:      h,
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// RegisterRoutes registers the watch endpoint.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/chat/sessions/:session_id/watch", s.HandleWatch)
}

// HandleWatch upgrades the request and streams the session: a snapshot
// frame first, then one message frame per appended message.
// GET /api/chat/sessions/:session_id/watch
func (s *Server) HandleWatch(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		var notFound *domain.SessionNotFoundError
		if errors.As(err, &notFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn(ctx, "failed to upgrade websocket", slog.Error(err))
		return nil
	}
	ws.SetReadLimit(maxMessageSize)

	conn := s.hub.NewConnection(ws, sessionID)
	if !s.hub.Register(conn, s.snapshotFrame(context.WithoutCancel(ctx), sessionID)) {
		_ = ws.Close()
		return nil
	}

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// snapshotFrame returns a func encoding the current session state.
func (s *Server) snapshotFrame(ctx context.Context, sessionID string) func() ([]byte, error) {
	return func() ([]byte, error) {
		session, err := s.sessions.GetSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(Frame{
			Type:      FrameSnapshot,
			Ts:        time.Now().UnixMilli(),
			SessionID: sessionID,
			Session:   session,
		})
	}
}

// readPump drains the connection so close and pong frames are processed.
// Watchers never send anything meaningful.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		_ = conn.Close()
	}()

	_ = conn.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Debug(context.Background(), "watcher read failed", slog.F("conn_id", conn.ID), slog.Error(err))
			}
			return
		}
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-conn.Send:
			_ = conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
