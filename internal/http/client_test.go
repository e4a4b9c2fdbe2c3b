package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kosarica/offer-service/internal/http/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: 0,
		Burst:             1,
		MaxRetries:        retries,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
	}
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["value"]})
	}))
	defer srv.Close()

	client := NewClient(fastConfig(0))
	var out map[string]string
	err := client.PostJSON(context.Background(), srv.URL, http.Header{"X-Api-Key": {"secret"}}, map[string]string{"value": "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out["echo"])
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(fastConfig(3))
	var out map[string]bool
	require.NoError(t, client.GetJSON(context.Background(), srv.URL, nil, &out))
	assert.True(t, out["ok"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(fastConfig(3))
	_, err := client.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.Error(t, err)

	var retryErr *ratelimit.FetchRetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, http.StatusForbidden, retryErr.LastStatus)
	assert.Equal(t, 1, retryErr.Attempts)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(fastConfig(2))
	_, err := client.Do(ctx, http.MethodGet, srv.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
