package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"docstore/internal/config"
	"docstore/internal/database"
	"docstore/internal/database/migration"
	"docstore/internal/extract"
	"docstore/internal/otel"
	"docstore/internal/queue"
	"docstore/internal/repository/postgres"
	"docstore/internal/storage"
	"docstore/internal/worker"
)

func main() {
	cfg := config.Load()
	loc := time.UTC

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	fileRepo := postgres.NewFilePostgres(db)
	pipeline := extract.NewPipeline(fileRepo, objStore, logger)

	pool := worker.NewPool(cfg.Worker.Concurrency, logger)
	pool.Start()

	consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.QueueName, cfg.Worker.Concurrency, pool, logger)

	logger.Info("extraction worker started",
		"queue", cfg.Queue.QueueName, "concurrency", cfg.Worker.Concurrency)

	err = consumer.Run(ctx, pipeline.Process)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
	}

	// Let in-flight jobs finish before exiting.
	pool.Shutdown()
	logger.Info("extraction worker stopped")
}
