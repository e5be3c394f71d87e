// Package main is the entry point for the placepix HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/collector"
	"github.com/rmedina/placepix/internal/config"
	"github.com/rmedina/placepix/internal/provider"
	"github.com/rmedina/placepix/internal/server"
	"github.com/rmedina/placepix/internal/service"
	"github.com/rmedina/placepix/internal/storage"
)

func main() {
	// run() keeps deferred cleanup working; deferred functions don't run
	// when os.Exit is called directly.
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env is convenient for provider keys during development;
	// missing file is fine.
	_ = godotenv.Load()

	configPath := os.Getenv("PLACEPIX_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr; that's not a real problem.
	defer func() { _ = logger.Sync() }()

	deps, closeDeps, err := wire(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDeps()

	srv := server.New(cfg, deps, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Give in-flight requests 10 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

// wire builds the full dependency graph: stores, providers, collector, and
// the workflow. The returned closer releases the audit database.
func wire(cfg *config.Config, logger *zap.Logger) (server.Deps, func(), error) {
	noop := func() {}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.HistoryPath), 0755); err != nil {
		return server.Deps{}, noop, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := storage.NewDatabase(cfg.Storage.HistoryPath)
	if err != nil {
		return server.Deps{}, noop, fmt.Errorf("opening database: %w", err)
	}

	images, err := storage.NewImageStore(cfg.Storage.ImageDir)
	if err != nil {
		db.Close()
		return server.Deps{}, noop, fmt.Errorf("creating image store: %w", err)
	}

	records := storage.NewRecordStore(cfg.Storage.RecordsPath, logger)
	history := storage.NewHistoryRepository(db)
	registry := provider.NewRegistry(cfg.Providers, logger)
	coll := collector.New(logger)
	downloader := service.NewDownloader(logger)
	assigner := service.NewAssignmentService(downloader, images, records, history, logger)
	workflow := service.NewWorkflow(records, registry, coll, assigner, logger)

	deps := server.Deps{
		Registry: registry,
		Records:  records,
		History:  history,
		Workflow: workflow,
	}
	return deps, func() { db.Close() }, nil
}
