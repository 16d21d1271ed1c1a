package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/voxhub/whisperd/internal/audio"
	"github.com/voxhub/whisperd/internal/config"
	"github.com/voxhub/whisperd/internal/database"
	"github.com/voxhub/whisperd/internal/diarize"
	"github.com/voxhub/whisperd/internal/job"
	"github.com/voxhub/whisperd/internal/queue"
	"github.com/voxhub/whisperd/internal/queue/workers"
	"github.com/voxhub/whisperd/internal/store"
	"github.com/voxhub/whisperd/internal/transcribe"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Job history is optional; the worker runs fine without a database.
	var history *store.HistoryStore
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, running without job history", "error", err)
	} else {
		defer db.Close()

		if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
			slog.Warn("migrations failed", "error", err)
		}
		history = store.NewHistoryStore(db)
	}

	// Engines are constructed once and shared by every job this process
	// handles.
	engine := newEngine(cfg.Engine)
	normalizer := audio.NewNormalizer(cfg.Audio.FFmpegBin)
	diarizer := diarize.NewInvoker(diarize.NewPyannoteEngine(diarize.PyannoteEngineConfig{
		BaseURL: cfg.Diarize.BaseURL,
		Device:  cfg.Diarize.Device,
	}), normalizer)

	orchestrator := job.NewOrchestrator(
		audio.NewAcquirer(),
		normalizer,
		engine,
		diarizer,
		cfg.Audio.TempDir,
	)

	results := store.NewResultStore(rdb, cfg.Results.TTL)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	worker := workers.NewTranscriptionWorker(orchestrator, results, history)
	registry.Register(queue.TypeTranscriptionRun, asynq.HandlerFunc(worker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "engine", engine.Name())
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}

func newEngine(cfg config.EngineConfig) transcribe.Engine {
	switch cfg.Backend {
	case "openai":
		return transcribe.NewOpenAIEngine(transcribe.OpenAIEngineConfig{
			APIKey: cfg.OpenAIKey,
			Model:  cfg.OpenAIModel,
		})
	default:
		return transcribe.NewLocalEngine(transcribe.LocalEngineConfig{
			BaseURL: cfg.LocalBaseURL,
		})
	}
}
