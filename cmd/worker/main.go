package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/EvgeniyGal/hr-agency/internal/config"
	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/metrics"
	"github.com/EvgeniyGal/hr-agency/internal/storage"
	"github.com/EvgeniyGal/hr-agency/internal/tasks"
	"github.com/EvgeniyGal/hr-agency/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Println("database connection ready for worker")

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr()}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
	})

	activityHandler := worker.NewActivityTaskHandler(db, logger)
	cleanupHandler := worker.NewCVCleanupTaskHandler(storageClient, logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeActivityRecord, activityHandler)
	mux.Handle(tasks.TypeCVCleanup, cleanupHandler)

	logger.Info("worker service started", slog.String("redis_addr", cfg.Redis.Addr()))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
