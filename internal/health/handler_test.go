package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	pingFn     func(ctx context.Context) error
	pingCalled bool
	lastCtx    context.Context
}

func (store *fakeStore) Ping(ctx context.Context) error {
	store.pingCalled = true
	store.lastCtx = ctx
	if store.pingFn != nil {
		return store.pingFn(ctx)
	}
	return nil
}

func TestHandler_Health(t *testing.T) {
	handler := New(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["time"].(string))
	require.NoError(t, err)
}

func TestHandler_Ready(t *testing.T) {
	t.Run("store not configured", func(t *testing.T) {
		handler := New(nil)

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		handler.Ready(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "database pool not configured", decodeBody(t, rec)["error"])
	})

	t.Run("ping error", func(t *testing.T) {
		store := &fakeStore{pingFn: func(ctx context.Context) error { return errors.New("db down") }}
		handler := New(store)

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		handler.Ready(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "database is not reachable", decodeBody(t, rec)["error"])
		require.True(t, store.pingCalled)
		deadline, ok := store.lastCtx.Deadline()
		require.True(t, ok)
		require.True(t, time.Until(deadline) <= readyTimeout+100*time.Millisecond)
	})

	t.Run("ready", func(t *testing.T) {
		store := &fakeStore{}
		handler := New(store)

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		handler.Ready(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ready", decodeBody(t, rec)["status"])
		require.True(t, store.pingCalled)
	})
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewRouter()
	RegisterRoutes(router, New(&fakeStore{}))

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(bytes.NewReader(recorder.Body.Bytes())).Decode(&body))
	return body
}
