package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docuglot/docuglot/internal/batches"
	"github.com/docuglot/docuglot/internal/config"
	"github.com/docuglot/docuglot/internal/documents"
	"github.com/docuglot/docuglot/internal/extraction"
	"github.com/docuglot/docuglot/internal/inference"
	"github.com/docuglot/docuglot/internal/infrastructure"
	"github.com/docuglot/docuglot/internal/ledger"
	"github.com/docuglot/docuglot/internal/prompts"
	"github.com/docuglot/docuglot/internal/storage"
)

// Application wires the domain systems behind the HTTP surface.
type Application struct {
	config       *config.Config
	logger       *slog.Logger
	storage      storage.System
	documents    *documents.Handler
	batches      *batches.Handler
	ledger       *ledger.Handler
	orchestrator *batches.Orchestrator
}

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize infrastructure: %v\n", err)
		os.Exit(1)
	}
	defer infra.Close()

	logger := infra.Logger

	if err := infra.Migrate(); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	client := inference.New(&cfg.Inference, logger)
	registry := prompts.NewRegistry(&cfg.Prompts)
	resolver := prompts.NewResolver(registry, logger)
	extractor := extraction.New(&cfg.Extraction, infra.Storage, client, logger)

	store := batches.NewStore(infra.DB, logger, cfg.Pagination)
	runner := batches.NewRunner(cfg.Server.QueueCapacity, logger)
	orchestrator := batches.NewOrchestrator(store, extractor, resolver, client, runner, logger)

	documentSys := documents.New(infra.DB, infra.Storage, &cfg.Storage, logger, cfg.Pagination)
	ledgerSys := ledger.New(infra.DB, logger, cfg.Pagination)

	app := &Application{
		config:       cfg,
		logger:       logger,
		storage:      infra.Storage,
		documents:    documents.NewHandler(documentSys, logger, cfg.Pagination),
		batches:      batches.NewHandler(orchestrator, store, logger, cfg.Pagination),
		ledger:       ledger.NewHandler(ledgerSys, logger, cfg.Pagination),
		orchestrator: orchestrator,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Anything left mid-flight by a previous process is failed before new
	// work is accepted.
	if err := orchestrator.Recover(ctx); err != nil {
		logger.Error("recovery failed", "error", err)
		os.Exit(1)
	}

	runner.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.routes(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	shutdownError := make(chan error)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()

		shutdownError <- srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", "addr", srv.Addr)

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	if err := <-shutdownError; err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
