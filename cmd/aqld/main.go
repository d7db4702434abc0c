package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/texqa/aql-extractor/internal/archive"
	"github.com/texqa/aql-extractor/internal/batch"
	"github.com/texqa/aql-extractor/internal/common"
	"github.com/texqa/aql-extractor/internal/export"
	"github.com/texqa/aql-extractor/internal/fields"
	"github.com/texqa/aql-extractor/internal/pdftext"
	"github.com/texqa/aql-extractor/internal/pipeline"
	"github.com/texqa/aql-extractor/internal/profile"
	"github.com/texqa/aql-extractor/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment")
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := profile.Resolve(cfg.Extract.ProfilePath, logger)
	if err != nil {
		logger.Error("failed to load profile", "error", err)
		os.Exit(1)
	}
	extractor, err := fields.NewExtractor(opts, logger)
	if err != nil {
		logger.Error("failed to build extractor", "error", err)
		os.Exit(1)
	}

	var store *archive.Store
	if cfg.Archive.DSN != "" {
		store, err = archive.Open(ctx, cfg.Archive, logger)
		if err != nil {
			logger.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	reader := pdftext.NewReader(logger)
	agg := batch.NewAggregator(extractor, logger, batch.WithWorkers(cfg.Extract.Workers))
	proc := pipeline.NewProcessor(logger, reader, agg, store)
	writer := export.NewWriter(logger)

	srv := server.New(cfg.Server, proc, writer, store, extractor.Schema(), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
