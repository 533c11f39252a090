package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPInvokerPostsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-0123456789" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"ping":true}` {
			t.Fatalf("unexpected body: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"pong":true}`)
	}))
	defer server.Close()

	req := &WireRequest{URL: server.URL, Header: http.Header{}, Body: []byte(`{"ping":true}`)}
	req.Header.Set("Authorization", "Bearer key-0123456789")

	body, err := NewHTTPInvoker(time.Second).Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pong":true}`, string(body))
}

func TestHTTPInvokerDecodesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid x-api-key","type":"authentication_error"}}`)
	}))
	defer server.Close()

	_, err := NewHTTPInvoker(time.Second).Invoke(context.Background(), &WireRequest{URL: server.URL, Header: http.Header{}})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
	assert.Equal(t, "invalid x-api-key", statusErr.Message)
	assert.Equal(t, "authentication_error", statusErr.Type)
}

func TestHTTPInvokerRawErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream down")
	}))
	defer server.Close()

	_, err := NewHTTPInvoker(time.Second).Invoke(context.Background(), &WireRequest{URL: server.URL, Header: http.Header{}})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "LLM API error [502]: upstream down", statusErr.Error())
}
