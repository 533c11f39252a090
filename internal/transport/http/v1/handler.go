// Package v1 provides the chat HTTP handlers.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
	"github.com/xiaot623/gogo/roundtable/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the chat routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/status", h.Status)

	e.POST("/api/chat/validate", h.ValidateCredentials)
	e.POST("/api/chat/start", h.StartChat)
	e.POST("/api/chat/response", h.NextResponse)
	e.POST("/api/chat/user-input", h.UserInput)

	e.GET("/api/chat/sessions/:session_id", h.GetSession)
	e.GET("/api/chat/sessions/:session_id/events", h.GetSessionEvents)
}

// Status reports that the server is up.
// GET /api/status
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "Server is running"})
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// writeError maps a service error to its HTTP status.
func writeError(c echo.Context, err error) error {
	var (
		roster      *domain.InvalidRosterError
		notFound    *domain.SessionNotFoundError
		notInRoster *domain.BotNotInRosterError
		unsupported *domain.UnsupportedProviderError
		callErr     *domain.ProviderCallError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &roster), errors.As(err, &notInRoster), errors.As(err, &unsupported):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &callErr):
		status = http.StatusBadGateway
	}
	return errorJSON(c, status, err.Error())
}
