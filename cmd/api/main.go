package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/auth"
	"github.com/crucial707/educompanion/internal/config"
	"github.com/crucial707/educompanion/internal/db"
	"github.com/crucial707/educompanion/internal/logging"
	"github.com/crucial707/educompanion/internal/relay"
	"github.com/crucial707/educompanion/internal/scheduler"
	"github.com/crucial707/educompanion/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores FIRST; an unreachable database is logged, not fatal
	stores, closeStore, err := db.Open(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}()

	hasher, err := auth.NewHasher(cfg.PasswordHash)
	if err != nil {
		logger.Fatal().Err(err).Msg("password hasher")
	}

	a, err := newApp(cfg, &logger, stores, hasher, newAsker(ctx, cfg, &logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("build app")
	}

	if err := scheduler.Run(ctx, cfg.SessionPurgeSchedule, a.sessions, &logger); err != nil {
		logger.Fatal().Err(err).Msg("scheduler")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// Start server LAST
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Bool("tls", cfg.TLSEnabled()).Str("store", cfg.StoreDriver).Msg("starting server")
		if cfg.TLSEnabled() {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("shutdown")
	}
}

// newAsker returns the Gemini relay, or a stand-in that fails every question
// when the client cannot be built.
func newAsker(ctx context.Context, cfg config.Config, logger *zerolog.Logger) service.Asker {
	g, err := relay.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error().Err(err).Msg("gemini unavailable, /api/ask will fail")
		return relay.Unavailable{Err: err}
	}
	logger.Info().Str("model", cfg.GeminiModel).Msg("gemini client ready")
	return g
}
