package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ballbuild/pos/internal/app"
	jobmetrics "github.com/ballbuild/pos/internal/jobs"
	"github.com/ballbuild/pos/internal/persist"
	"github.com/ballbuild/pos/internal/platform/kv"
	"github.com/ballbuild/pos/internal/syncer"
	"github.com/ballbuild/pos/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	store, err := openSharedStore(ctx, cfg, redisClient)
	if err != nil {
		logger.Error("open durable store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close", slog.Any("error", err))
		}
	}()

	runner := jobs.NewSyncRunner(logger, persist.New(store, logger), syncer.Config{
		EndpointURL: cfg.SyncEndpointURL,
		Sequential:  cfg.SyncSequential,
		Timeout:     cfg.SyncTimeout,
	}, jobmetrics.NewMetrics(nil))

	var cron []jobs.CronRegistration
	if cfg.SyncCron != "" && cfg.SyncEndpointURL != "" {
		task, err := jobs.NewSyncPushTask(jobs.SyncPayload{Reason: "cron"})
		if err != nil {
			logger.Error("build push task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.SyncCron, Task: task})
	}
	if cfg.SyncPullCron != "" && cfg.SyncEndpointURL != "" {
		task, err := jobs.NewSyncPullTask(jobs.SyncPayload{Reason: "cron"})
		if err != nil {
			logger.Error("build pull task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.SyncPullCron, Task: task})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSyncPush, Handler: runner.HandleSyncPush},
			{Type: jobs.TaskSyncPull, Handler: runner.HandleSyncPull},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("bootstrap worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("queue", jobs.QueueDefault))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// openSharedStore rejects the drivers a second process cannot share.
func openSharedStore(ctx context.Context, cfg *app.Config, redisClient *redis.Client) (kv.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return kv.NewPostgresStore(ctx, cfg.PGDSN)
	default:
		// bolt files are single-process and memory is per-process, so the
		// worker always falls back to redis.
		return kv.NewRedisStoreWithClient(redisClient, "pos"), nil
	}
}
