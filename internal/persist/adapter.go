// Package persist mirrors the in-memory collections to the local durable
// store. Store failures are absorbed here: the terminal keeps working in
// memory and the failure is only logged.
package persist

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ballbuild/pos/internal/platform/kv"
)

// Store keys. Values are JSON-encoded.
const (
	KeyProducts  = "products"
	KeyCustomers = "customers"
	KeySales     = "sales"
	KeyUsers     = "users"
	KeyLastSync  = "lastSyncTime"
)

// Saver is the write-through hook repositories call after every mutation.
type Saver interface {
	SaveCollection(key string, value any)
}

// Adapter serializes collections to the durable store and schedules the
// debounced auto-sync after each collection write.
type Adapter struct {
	store   kv.Store
	logger  *slog.Logger
	timeout time.Duration

	// onChange is invoked after a collection write so the sync client can
	// coalesce bursts of mutations into one push. Set during wiring.
	onChange func()
}

// New constructs an Adapter over the given store.
func New(store kv.Store, logger *slog.Logger) *Adapter {
	return &Adapter{store: store, logger: logger, timeout: 5 * time.Second}
}

// SetOnChange installs the auto-sync trigger. Pass nil to disable.
func (a *Adapter) SetOnChange(fn func()) {
	a.onChange = fn
}

// SaveCollection writes one collection under its key. It never returns an
// error: persistence problems must not break the sale in progress.
func (a *Adapter) SaveCollection(key string, value any) {
	if !a.save(key, value) {
		return
	}
	if a.onChange != nil {
		a.onChange()
	}
}

// SaveMeta writes a non-collection value (such as the last sync time)
// without scheduling an auto-sync.
func (a *Adapter) SaveMeta(key string, value any) {
	a.save(key, value)
}

// Load deserializes the value under key into target. Missing keys and
// malformed content leave target untouched so callers keep their default.
// The boolean reports whether target was populated.
func (a *Adapter) Load(ctx context.Context, key string, target any) bool {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if err != kv.ErrKeyNotFound {
			a.logger.Warn("load from store failed, using default",
				slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		a.logger.Warn("malformed store content, using default",
			slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (a *Adapter) save(key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn("serialize collection failed",
			slog.String("key", key), slog.Any("error", err))
		return false
	}
	// Durability must not depend on the lifetime of the request that
	// caused the mutation, so the write gets its own context.
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.store.Put(ctx, key, data); err != nil {
		a.logger.Warn("cannot write to durable store, continuing in memory",
			slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}
