package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingResponse struct {
	Echo string `json:"echo"`
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprintf(w, `{"echo": %q}`, r.URL.Query().Get("q"))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)
	var resp pingResponse
	err := client.GetJSON(context.Background(), server.URL, url.Values{"q": {"a b"}}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "a b", resp.Echo)
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `{"echo": "posted"}`)
	}))
	defer server.Close()

	var resp pingResponse
	err := NewClient(time.Second).PostJSON(context.Background(), server.URL, map[string]string{"a": "b"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "posted", resp.Echo)
}

func TestStatusErrors(t *testing.T) {
	codes := map[int]bool{
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusBadRequest:          false,
		http.StatusNotFound:            false,
	}
	for code, retryable := range codes {
		code := code
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			fmt.Fprint(w, "nope")
		}))

		var resp pingResponse
		err := NewClient(time.Second).GetJSON(context.Background(), server.URL, nil, &resp)
		server.Close()

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr), "status %d should produce a StatusError", code)
		assert.Equal(t, code, statusErr.StatusCode)
		assert.Equal(t, "nope", statusErr.Body)
		assert.Equal(t, retryable, IsRetryable(err), "status %d retryable", code)
	}
}

func TestIsRetryableNetworkAndDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	var resp pingResponse
	err := NewClient(time.Second).GetJSON(context.Background(), server.URL, nil, &resp)
	assert.Error(t, err)
	assert.False(t, IsRetryable(err), "malformed bodies are not retried")

	addr := server.URL
	server.Close()
	err = NewClient(time.Second).GetJSON(context.Background(), addr, nil, &resp)
	assert.Error(t, err)
	assert.True(t, IsRetryable(err), "connection failures are retried")

	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(nil))
}
