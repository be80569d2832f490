package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ballbuild/pos/internal/app"
	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	"github.com/ballbuild/pos/internal/observability"
	"github.com/ballbuild/pos/internal/persist"
	"github.com/ballbuild/pos/internal/platform/kv"
	"github.com/ballbuild/pos/internal/sales"
	"github.com/ballbuild/pos/internal/shared"
	"github.com/ballbuild/pos/internal/snapshot"
	"github.com/ballbuild/pos/internal/syncer"
	"github.com/ballbuild/pos/internal/users"
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
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store, err := openStore(ctx, cfg, redisClient)
	if err != nil {
		logger.Error("open durable store", slog.Any("error", err), slog.String("driver", cfg.StoreDriver))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close", slog.Any("error", err))
		}
	}()

	adapter := persist.New(store, logger)

	var (
		productList  []catalog.Product
		customerList []customers.Customer
		saleList     []sales.Sale
		userList     []users.User
		lastSync     time.Time
	)
	adapter.Load(ctx, persist.KeyProducts, &productList)
	adapter.Load(ctx, persist.KeyCustomers, &customerList)
	adapter.Load(ctx, persist.KeySales, &saleList)
	if !adapter.Load(ctx, persist.KeyUsers, &userList) || len(userList) == 0 {
		userList = users.SeedUsers()
	}
	adapter.Load(ctx, persist.KeyLastSync, &lastSync)

	catalogRepo := catalog.NewRepository(productList, adapter)
	customerRepo := customers.NewRepository(customerList, adapter)
	saleRepo := sales.NewRepository(saleList, adapter)
	userRepo := users.NewRepository(userList, adapter)

	sessionManager := shared.NewSessionManager(redisClient, "pos_session", cfg.SessionTTL, cfg.IsProduction())

	syncClient := syncer.New(logger, syncer.Config{
		EndpointURL:  cfg.SyncEndpointURL,
		Enabled:      cfg.SyncEnabled,
		ManualBypass: cfg.SyncManualBypass,
		Sequential:   cfg.SyncSequential,
		Debounce:     cfg.SyncDebounce,
		Timeout:      cfg.SyncTimeout,
	}, catalogRepo, customerRepo, saleRepo, userRepo, adapter, func() bool {
		return sessionManager.ActiveSessions(context.Background()) > 0
	})
	syncClient.RestoreLastSync(lastSync)
	adapter.SetOnChange(syncClient.AutoSync)

	catalogService := catalog.NewService(catalogRepo)
	customerService := customers.NewService(customerRepo)
	userService := users.NewService(userRepo)
	saleService := sales.NewService(saleRepo, catalogRepo, customerRepo, userRepo)
	snapshotService := snapshot.NewService(logger, catalogRepo, customerRepo, saleRepo, userRepo, saleService)

	metrics := observability.NewMetrics()
	metrics.RegisterCollectionSize("products", func() int { return len(catalogRepo.List()) })
	metrics.RegisterCollectionSize("customers", func() int { return len(customerRepo.List()) })
	metrics.RegisterCollectionSize("sales", saleRepo.Len)
	metrics.RegisterCollectionSize("users", func() int { return len(userRepo.List()) })
	metrics.RegisterLastSync(func() time.Time { return syncClient.Snapshot().LastSyncTime })

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		UsersHandler:    users.NewHandler(logger, userService, sessionManager),
		CatalogHandler:  catalog.NewHandler(logger, catalogService),
		CustomerHandler: customers.NewHandler(logger, customerService),
		SalesHandler:    sales.NewHandler(logger, saleService, cfg.ShopName),
		SyncHandler:     syncer.NewHandler(syncClient),
		SnapshotHandler: snapshot.NewHandler(snapshotService),
		JobHandler:      jobs.NewHandler(inspector, logger),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("shop", cfg.ShopName))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func openStore(ctx context.Context, cfg *app.Config, redisClient *redis.Client) (kv.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return kv.NewMemoryStore(), nil
	case "redis":
		return kv.NewRedisStoreWithClient(redisClient, "pos"), nil
	case "postgres":
		return kv.NewPostgresStore(ctx, cfg.PGDSN)
	default:
		return kv.NewBoltStore(cfg.StorePath)
	}
}
