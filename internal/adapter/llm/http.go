package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/xerrors"
)

// HTTPInvoker posts provider requests over HTTP.
type HTTPInvoker struct {
	httpClient *http.Client
}

// NewHTTPInvoker creates an HTTPInvoker whose calls give up after timeout.
func NewHTTPInvoker(timeout time.Duration) *HTTPInvoker {
	return &HTTPInvoker{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Status  int
	Message string
	Type    string
}

func (e *StatusError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("LLM API error [%d]: %s (type: %s)", e.Status, e.Message, e.Type)
	}
	return fmt.Sprintf("LLM API error [%d]: %s", e.Status, e.Message)
}

// ErrorResponse represents an API error response. OpenAI, DeepSeek and
// Anthropic all nest the details under "error".
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError represents the error details.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Invoke sends req and returns the response body.
func (c *HTTPInvoker) Invoke(ctx context.Context, req *WireRequest) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, xerrors.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, xerrors.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, &StatusError{Status: resp.StatusCode, Message: errResp.Error.Message, Type: errResp.Error.Type}
		}
		return nil, &StatusError{Status: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}
