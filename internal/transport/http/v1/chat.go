package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
	"github.com/xiaot623/gogo/roundtable/internal/service"
)

// BotRequest is a roster entry as sent by clients.
type BotRequest struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Provider   domain.Provider `json:"provider"`
	APIKey     string          `json:"apiKey"`
	TokenLimit int             `json:"tokenLimit,omitempty"`
}

// ValidateRequest is the body of POST /api/chat/validate.
type ValidateRequest struct {
	SelectedBots []BotRequest `json:"selectedBots"`
}

// StartRequest is the body of POST /api/chat/start.
type StartRequest struct {
	SelectedBots []BotRequest   `json:"selectedBots"`
	InitialTopic string         `json:"initialTopic"`
	TokenLimits  map[string]int `json:"tokenLimits,omitempty"`
}

// ResponseRequest is the body of POST /api/chat/response. An empty BotID
// lets the rotation pick the speaker.
type ResponseRequest struct {
	SessionID string `json:"sessionId"`
	BotID     string `json:"botId,omitempty"`
}

// UserInputRequest is the body of POST /api/chat/user-input.
type UserInputRequest struct {
	SessionID string `json:"sessionId"`
	UserInput string `json:"userInput"`
}

// ValidateCredentials checks the shape of every submitted credential.
// POST /api/chat/validate
func (h *Handler) ValidateCredentials(c echo.Context) error {
	var req ValidateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	checks := make([]service.CredentialCheck, len(req.SelectedBots))
	for i, b := range req.SelectedBots {
		checks[i] = service.CredentialCheck{BotID: b.ID, Provider: b.Provider, Credential: b.APIKey}
	}

	return c.JSON(http.StatusOK, h.service.ValidateCredentials(c.Request().Context(), checks))
}

// StartChat creates a session.
// POST /api/chat/start
func (h *Handler) StartChat(c echo.Context) error {
	var req StartRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	roster := make([]service.BotConfig, len(req.SelectedBots))
	for i, b := range req.SelectedBots {
		roster[i] = service.BotConfig{
			ID:         b.ID,
			Name:       b.Name,
			Provider:   b.Provider,
			Credential: b.APIKey,
			TokenLimit: b.TokenLimit,
		}
	}

	session, err := h.service.CreateSession(c.Request().Context(), roster, req.InitialTopic, req.TokenLimits)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// NextResponse runs one turn.
// POST /api/chat/response
func (h *Handler) NextResponse(c echo.Context) error {
	var req ResponseRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return errorJSON(c, http.StatusBadRequest, "sessionId is required")
	}

	result, err := h.service.AdvanceTurn(c.Request().Context(), req.SessionID, domain.SpeakerFromID(req.BotID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// UserInput appends a user message.
// POST /api/chat/user-input
func (h *Handler) UserInput(c echo.Context) error {
	var req UserInputRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return errorJSON(c, http.StatusBadRequest, "sessionId is required")
	}

	session, err := h.service.AppendUserInput(c.Request().Context(), req.SessionID, req.UserInput)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}
