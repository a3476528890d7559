package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Lelo88/computacion-api-golang/internal/computacion"
	"github.com/Lelo88/computacion-api-golang/internal/config"
	"github.com/Lelo88/computacion-api-golang/internal/docs"
	"github.com/Lelo88/computacion-api-golang/internal/health"
	"github.com/Lelo88/computacion-api-golang/internal/httpx"
	"github.com/Lelo88/computacion-api-golang/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// appStore es el store más su cierre; lo devuelve openStore según el driver.
type appStore interface {
	computacion.Store
	Close(ctx context.Context)
}

type appDeps struct {
	loadConfig     func() (config.Config, error)
	openStore      func(ctx context.Context, cfg config.Config) (appStore, error)
	listenAndServe func(ctx context.Context, addr string, handler http.Handler) error
	logOutput      io.Writer
}

// Hooks para tests.
var (
	loadConfigFn               = config.Load
	openStoreFn                = openStore
	listenAndServeFn           = listenAndServe
	logOutput        io.Writer = os.Stderr
	fatalf                     = func(err error) {
		log.Fatal().Err(err).Msg("api stopped")
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := appDeps{
		loadConfig:     loadConfigFn,
		openStore:      openStoreFn,
		listenAndServe: listenAndServeFn,
		logOutput:      logOutput,
	}

	if err := run(ctx, deps); err != nil {
		fatalf(err)
	}
}

func run(ctx context.Context, deps appDeps) error {
	cfg, err := deps.loadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: deps.logOutput,
	})
	ctx = logging.WithLogger(ctx, logger)

	store, err := deps.openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	defer store.Close(ctx)

	router := buildRouter(store, logger, cfg.RequestTimeout)

	addr := ":" + cfg.Port
	logger.Info().Str("driver", cfg.Driver).Msgf("listening on %s", addr)
	return deps.listenAndServe(ctx, addr, router)
}

// buildRouter arma el router con su stack de middlewares y todas las rutas.
func buildRouter(store computacion.Store, logger zerolog.Logger, timeout time.Duration) http.Handler {
	router := chi.NewRouter()

	// Middlewares base para trazabilidad y estabilidad.
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logging.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))
	router.Use(httpx.JSONContentType)

	// Errores de routing se manejan a nivel router.
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusNotFound, "resource not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	health.RegisterRoutes(router, health.New(store))
	docs.RegisterRoutes(router)

	service := computacion.NewService(store)
	computacion.RegisterRoutes(router, computacion.NewHandler(service))

	return router
}

// listenAndServe sirve hasta que ctx se cancela y luego drena los requests en curso.
func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.FromContext(ctx).Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
