package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhle/campus-inbox/internal/credential"
	"github.com/nhle/campus-inbox/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *credential.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := credential.NewMemoryStore("tok-123")
	opts = append([]Option{WithRetryDelay(time.Millisecond)}, opts...)
	return NewClient(srv.URL+"/", tokens, opts...), tokens
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClientAttachesCurrentToken(t *testing.T) {
	var seen []string
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		writeJSON(t, w, []model.Delivery{})
	})

	_, err := client.FetchInbox(context.Background())
	require.NoError(t, err)

	require.NoError(t, tokens.SetToken("tok-456"))
	_, err = client.FetchInbox(context.Background())
	require.NoError(t, err)

	require.NoError(t, tokens.ClearToken())
	_, err = client.FetchInbox(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"Bearer tok-123", "Bearer tok-456", ""}, seen)
}

func TestClientUnauthorizedClearsTokenAndNotifies(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var notified atomic.Int32
		client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			writeJSON(t, w, map[string]string{"error": "expired"})
		}, WithAuthFailureHandler(func() { notified.Add(1) }))

		_, err := client.FetchInbox(context.Background())

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, status, authErr.StatusCode)
		require.Equal(t, "expired", authErr.Message)
		require.True(t, IsAuth(err))
		require.Equal(t, int32(1), notified.Load())

		token, _ := tokens.Token()
		require.Empty(t, token)
	}
}

func TestClientStatusErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(t, w, map[string]string{"error": "Delivery not found"})
	})

	err := client.MarkDeliveryRead(context.Background(), 9)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	require.Equal(t, "/api/notifications/deliveries/9/mark-read", statusErr.Path)
	require.Contains(t, statusErr.Error(), "Delivery not found")
	require.Equal(t, int32(1), calls.Load())

	token, _ := tokens.Token()
	require.Equal(t, "tok-123", token)
}

// flakyTransport fails the first n round trips without a response.
type flakyTransport struct {
	failures atomic.Int32
	err      error
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if f.failures.Add(-1) >= 0 {
		return nil, f.err
	}
	return f.next.RoundTrip(r)
}

func TestClientRetriesTransportErrorOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"mute":true}`, string(body))
		writeJSON(t, w, map[string]string{"status": "ok"})
	}))
	t.Cleanup(srv.Close)

	transport := &flakyTransport{err: errors.New("http2: server sent GOAWAY and closed the connection"), next: http.DefaultTransport}
	transport.failures.Store(1)

	client := NewClient(srv.URL, credential.NewMemoryStore(""),
		WithHTTPClient(&http.Client{Transport: transport}),
		WithRetryDelay(time.Millisecond),
	)

	require.NoError(t, client.MuteDelivery(context.Background(), 5, true))
	require.Equal(t, int32(1), calls.Load())
}

func TestClientGivesUpAfterSecondTransportError(t *testing.T) {
	transport := &flakyTransport{err: errors.New("connection refused"), next: http.DefaultTransport}
	transport.failures.Store(5)

	client := NewClient("http://campus.invalid", nil,
		WithHTTPClient(&http.Client{Transport: transport}),
		WithRetryDelay(time.Millisecond),
	)

	_, err := client.FetchInbox(context.Background())
	require.Error(t, err)
	require.Equal(t, int32(3), transport.failures.Load(), "exactly two attempts")
}

func TestClientDoesNotRetryCancelledContext(t *testing.T) {
	transport := &flakyTransport{err: context.Canceled, next: http.DefaultTransport}
	transport.failures.Store(5)

	client := NewClient("http://campus.invalid", nil,
		WithHTTPClient(&http.Client{Transport: transport}),
		WithRetryDelay(time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchInbox(ctx)
	require.Error(t, err)
	require.GreaterOrEqual(t, transport.failures.Load(), int32(4))
}
