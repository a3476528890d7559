package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
)

func TestRequestIDFrom(t *testing.T) {
	t.Run("nil request", func(t *testing.T) {
		require.Equal(t, "", RequestIDFrom(nil))
	})

	t.Run("set by chi middleware", func(t *testing.T) {
		var got string
		handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = RequestIDFrom(r)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, got)
	})

	t.Run("header fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "header-id")

		require.Equal(t, "header-id", RequestIDFrom(req))
	})

	t.Run("empty when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		require.Equal(t, "", RequestIDFrom(req))
	})
}
