package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
	v1 "github.com/xiaot623/gogo/roundtable/internal/transport/http/v1"
	"github.com/xiaot623/gogo/roundtable/internal/transport/ws"
)

// Client talks to a roundtable server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return xerrors.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return xerrors.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return xerrors.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return xerrors.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return xerrors.Errorf("%s [%d]: %s", path, resp.StatusCode, apiErr.Error)
		}
		return xerrors.Errorf("%s [%d]: %s", path, resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}

// Validate checks every bot's credential.
func (c *Client) Validate(ctx context.Context, bots []v1.BotRequest) (map[string]bool, error) {
	var out map[string]bool
	err := c.post(ctx, "/api/chat/validate", v1.ValidateRequest{SelectedBots: bots}, &out)
	return out, err
}

// Start creates a session.
func (c *Client) Start(ctx context.Context, bots []v1.BotRequest, topic string) (*domain.Session, error) {
	var out domain.Session
	if err := c.post(ctx, "/api/chat/start", v1.StartRequest{SelectedBots: bots, InitialTopic: topic}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Next asks for one turn; an empty botID follows the rotation.
func (c *Client) Next(ctx context.Context, sessionID, botID string) (*domain.TurnResult, error) {
	var out domain.TurnResult
	if err := c.post(ctx, "/api/chat/response", v1.ResponseRequest{SessionID: sessionID, BotID: botID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Say appends user input to the session.
func (c *Client) Say(ctx context.Context, sessionID, text string) error {
	var out domain.Session
	return c.post(ctx, "/api/chat/user-input", v1.UserInputRequest{SessionID: sessionID, UserInput: text}, &out)
}

// Watch subscribes to the session transcript and calls fn for every frame
// until the connection closes or ctx is done.
func (c *Client) Watch(ctx context.Context, sessionID string, fn func(ws.Frame)) error {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/chat/sessions/" + sessionID + "/watch"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return xerrors.Errorf("dial %s: %w", url, err)
	}
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var f ws.Frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return xerrors.Errorf("read frame: %w", err)
		}
		fn(f)
	}
}
