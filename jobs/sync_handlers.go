package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	jobmetrics "github.com/ballbuild/pos/internal/jobs"
	"github.com/ballbuild/pos/internal/persist"
	"github.com/ballbuild/pos/internal/sales"
	"github.com/ballbuild/pos/internal/syncer"
	"github.com/ballbuild/pos/internal/users"
)

// SyncRunner executes scheduled sync tasks. The worker process does not
// share the terminal's memory, so every run reloads the collections from
// the durable store first. This requires a store both processes can
// reach (redis or postgres).
type SyncRunner struct {
	logger  *slog.Logger
	adapter *persist.Adapter
	cfg     syncer.Config
	metrics *jobmetrics.Metrics
}

// NewSyncRunner constructs a SyncRunner.
func NewSyncRunner(logger *slog.Logger, adapter *persist.Adapter, cfg syncer.Config, metrics *jobmetrics.Metrics) *SyncRunner {
	// Scheduled runs are deliberate, so the enabled flag does not gate them.
	cfg.Enabled = true
	cfg.ManualBypass = true
	return &SyncRunner{logger: logger, adapter: adapter, cfg: cfg, metrics: metrics}
}

// HandleSyncPush processes TaskSyncPush tasks.
func (r *SyncRunner) HandleSyncPush(ctx context.Context, t *asynq.Task) error {
	var payload SyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := r.metrics.Track("sync_push")
	client := r.buildClient(ctx)
	err := client.Push(ctx)
	r.logger.Info("scheduled push finished",
		slog.String("reason", payload.Reason), slog.Any("error", err))
	return tracker.End(err)
}

// HandleSyncPull processes TaskSyncPull tasks. Replaced collections are
// written back to the durable store through the repositories.
func (r *SyncRunner) HandleSyncPull(ctx context.Context, t *asynq.Task) error {
	var payload SyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := r.metrics.Track("sync_pull")
	client := r.buildClient(ctx)
	err := client.Pull(ctx)
	r.logger.Info("scheduled pull finished",
		slog.String("reason", payload.Reason), slog.Any("error", err))
	return tracker.End(err)
}

func (r *SyncRunner) buildClient(ctx context.Context) *syncer.Client {
	var (
		productList  []catalog.Product
		customerList []customers.Customer
		saleList     []sales.Sale
		userList     []users.User
	)
	r.adapter.Load(ctx, persist.KeyProducts, &productList)
	r.adapter.Load(ctx, persist.KeyCustomers, &customerList)
	r.adapter.Load(ctx, persist.KeySales, &saleList)
	if !r.adapter.Load(ctx, persist.KeyUsers, &userList) {
		userList = users.SeedUsers()
	}

	return syncer.New(
		r.logger,
		r.cfg,
		catalog.NewRepository(productList, r.adapter),
		customers.NewRepository(customerList, r.adapter),
		sales.NewRepository(saleList, r.adapter),
		users.NewRepository(userList, r.adapter),
		r.adapter,
		nil,
	)
}
