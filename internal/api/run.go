package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/chatmd/internal/archive"
	"github.com/dgallion1/chatmd/internal/config"
	"github.com/dgallion1/chatmd/internal/pipeline"
	"github.com/dgallion1/chatmd/internal/render"
)

// Run serves the API on cfg.Port until ctx is cancelled, then drains the
// worker pool and shuts the listener down.
func Run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	fetcher := archive.NewHTTPFetcher(cfg.FetchUserAgent, cfg.FetchMaxRetries, log.With("component", "fetch"))
	defer fetcher.Close()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, pipeline.NewExporter(fetcher, log), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := NewServer(orch, render.New(), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting chatmd", "port", cfg.Port, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
