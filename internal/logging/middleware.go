package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Lelo88/computacion-api-golang/internal/httpx"
)

// RequestLogger deja en el contexto un logger con el request id
// y registra una línea por request al terminar.
// Debe montarse después de middleware.RequestID.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()

			requestLogger := logger.With().
				Str("request_id", httpx.RequestIDFrom(request)).
				Logger()
			request = request.WithContext(WithLogger(request.Context(), requestLogger))

			wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)
			defer func() {
				status := wrapped.Status()
				if status == 0 {
					status = http.StatusOK
				}

				event := requestLogger.Info()
				if status >= http.StatusInternalServerError {
					event = requestLogger.Error()
				}
				event.
					Str("method", request.Method).
					Str("path", request.URL.Path).
					Str("remote_addr", request.RemoteAddr).
					Int("status", status).
					Int("bytes", wrapped.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(wrapped, request)
		})
	}
}
