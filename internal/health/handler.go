package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Lelo88/computacion-api-golang/internal/httpx"
	"github.com/Lelo88/computacion-api-golang/internal/logging"
)

const readyTimeout = 2 * time.Second

// Pinger es lo mínimo que /ready necesita del store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler encapsula endpoints de health.
type Handler struct {
	store Pinger
}

// New crea un handler de health. store puede ser nil: /ready responde 503.
func New(store Pinger) *Handler {
	return &Handler{store: store}
}

// Health indica si el proceso está vivo. No toca la base.
func (handler *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready verifica que la base responda.
func (handler *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if handler.store == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "database pool not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := handler.store.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("ready check failed")
		httpx.Error(w, http.StatusServiceUnavailable, "database is not reachable")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// RegisterRoutes monta /health y /ready.
func RegisterRoutes(route chi.Router, handler *Handler) {
	route.Get("/health", handler.Health)
	route.Get("/ready", handler.Ready)
}
