// Package syncer pushes and pulls full snapshots of the four collections
// to the remote spreadsheet-backed endpoint. Sync is best effort: there
// is no atomicity across the four resources and no rollback.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	"github.com/ballbuild/pos/internal/persist"
	"github.com/ballbuild/pos/internal/sales"
	"github.com/ballbuild/pos/internal/shared"
	"github.com/ballbuild/pos/internal/users"
)

// Status values observable by the UI, transient per operation.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// statusDismiss is how long a terminal Success/Failed status stays
// visible before reverting to Idle.
const statusDismiss = 3 * time.Second

// Sync actions understood by the remote endpoint.
const (
	actionProducts  = "sync_products"
	actionCustomers = "sync_customers"
	actionSales     = "sync_sales"
	actionUsers     = "sync_users"
)

// MetaStore persists the last sync time without triggering auto-sync.
type MetaStore interface {
	SaveMeta(key string, value any)
}

// Config carries the sync client's tunables.
type Config struct {
	EndpointURL string
	Enabled     bool
	// ManualBypass keeps manual Push/Pull callable while auto-sync is
	// disabled, which is what the original terminal did.
	ManualBypass bool
	// Sequential switches the push from a concurrent batch to an ordered
	// sequence that stops at the first failure.
	Sequential bool
	Debounce   time.Duration
	Timeout    time.Duration
}

// Client implements the snapshot sync protocol.
type Client struct {
	logger *slog.Logger
	http   *http.Client

	catalogRepo  *catalog.Repository
	customerRepo *customers.Repository
	saleRepo     *sales.Repository
	userRepo     *users.Repository
	meta         MetaStore

	// sessionGate reports whether anyone is logged in; auto-sync stays
	// dormant otherwise.
	sessionGate func() bool

	mu           sync.Mutex
	endpointURL  string
	enabled      bool
	manualBypass bool
	sequential   bool
	debounce     time.Duration
	lastSync     time.Time
	status       Status
	timer        *time.Timer
	dismiss      *time.Timer
}

// New constructs a Client.
func New(
	logger *slog.Logger,
	cfg Config,
	catalogRepo *catalog.Repository,
	customerRepo *customers.Repository,
	saleRepo *sales.Repository,
	userRepo *users.Repository,
	meta MetaStore,
	sessionGate func() bool,
) *Client {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 5 * time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		logger:       logger,
		http:         &http.Client{Timeout: timeout},
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		userRepo:     userRepo,
		meta:         meta,
		sessionGate:  sessionGate,
		endpointURL:  cfg.EndpointURL,
		enabled:      cfg.Enabled,
		manualBypass: cfg.ManualBypass,
		sequential:   cfg.Sequential,
		debounce:     debounce,
		status:       StatusIdle,
	}
}

type remoteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type pullResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		Products  []catalog.Product    `json:"products"`
		Customers []customers.Customer `json:"customers"`
	} `json:"data"`
}

// Push uploads all four collections. The default strategy issues the
// four POSTs concurrently and reports the first failure; requests that
// already succeeded are not rolled back.
func (c *Client) Push(ctx context.Context) error {
	if err := c.begin(true); err != nil {
		return err
	}

	posts := []struct {
		action  string
		payload map[string]any
	}{
		{actionProducts, map[string]any{"action": actionProducts, "products": c.catalogRepo.List()}},
		{actionCustomers, map[string]any{"action": actionCustomers, "customers": c.customerRepo.List()}},
		{actionSales, map[string]any{"action": actionSales, "sales": c.saleRepo.List()}},
		{actionUsers, map[string]any{"action": actionUsers, "users": c.userRepo.List()}},
	}

	var err error
	if c.isSequential() {
		for _, p := range posts {
			if err = c.post(ctx, p.action, p.payload); err != nil {
				break
			}
		}
	} else {
		// Deliberately not errgroup.WithContext: a failing request must
		// not cancel its three siblings mid-flight.
		var g errgroup.Group
		for _, p := range posts {
			g.Go(func() error { return c.post(ctx, p.action, p.payload) })
		}
		err = g.Wait()
	}

	if err != nil {
		c.finish(StatusFailed)
		c.logger.Warn("push failed", slog.Any("error", err))
		return err
	}

	now := time.Now()
	c.mu.Lock()
	c.lastSync = now
	c.mu.Unlock()
	if c.meta != nil {
		c.meta.SaveMeta(persist.KeyLastSync, now)
	}
	c.finish(StatusSuccess)
	c.logger.Info("push completed", slog.Time("lastSync", now))
	return nil
}

// Pull downloads the remote snapshot and replaces the local products and
// customers wholesale. Sales and users are never overwritten by a pull.
func (c *Client) Pull(ctx context.Context) error {
	if err := c.begin(true); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint()+"?action=get_all_data", nil)
	if err != nil {
		c.finish(StatusFailed)
		return fmt.Errorf("%w: %v", shared.ErrSync, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.finish(StatusFailed)
		return fmt.Errorf("%w: %v", shared.ErrSync, err)
	}
	defer resp.Body.Close()

	var result pullResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.finish(StatusFailed)
		return fmt.Errorf("%w: malformed response: %v", shared.ErrSync, err)
	}
	if !result.Success || result.Data == nil {
		c.finish(StatusFailed)
		message := result.Message
		if message == "" {
			message = "failed to load data"
		}
		return fmt.Errorf("%w: %s", shared.ErrSync, message)
	}

	if result.Data.Products != nil {
		c.catalogRepo.Replace(result.Data.Products)
	}
	if result.Data.Customers != nil {
		c.customerRepo.Replace(result.Data.Customers)
	}

	c.finish(StatusSuccess)
	c.logger.Info("pull completed",
		slog.Int("products", len(result.Data.Products)),
		slog.Int("customers", len(result.Data.Customers)))
	return nil
}

// Probe checks reachability without mutating any state.
func (c *Client) Probe(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint()+"?action=test", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrSync, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrSync, err)
	}
	defer resp.Body.Close()

	var result remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", shared.ErrSync, err)
	}
	if !result.Success {
		return result.Message, fmt.Errorf("%w: %s", shared.ErrSync, result.Message)
	}
	return result.Message, nil
}

// AutoSync restarts the debounce timer, coalescing a burst of local
// mutations into a single push after quiescence. Armed only while sync
// is enabled and somebody is logged in.
func (c *Client) AutoSync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	if c.sessionGate != nil && !c.sessionGate() {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		// The debounced push runs detached from any request context; an
		// in-flight push is not cancellable once started.
		if err := c.push(context.Background()); err != nil {
			c.logger.Warn("auto-sync push failed", slog.Any("error", err))
		}
	})
}

// push is the auto-sync entry point: it respects the enabled flag with
// no manual bypass.
func (c *Client) push(ctx context.Context) error {
	c.mu.Lock()
	enabled := c.enabled
	c.mu.Unlock()
	if !enabled {
		return nil
	}
	return c.Push(ctx)
}

// SetEnabled toggles auto-sync. Disabling cancels any pending debounce.
func (c *Client) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
	if !enabled && c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// SetEndpoint updates the remote endpoint URL.
func (c *Client) SetEndpoint(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if url != "" {
		c.endpointURL = url
	}
}

// Endpoint returns the current endpoint URL.
func (c *Client) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpointURL
}

// Settings is the UI-facing sync state.
type Settings struct {
	Enabled      bool      `json:"enabled"`
	EndpointURL  string    `json:"endpointUrl"`
	LastSyncTime time.Time `json:"lastSyncTime"`
	Status       Status    `json:"status"`
}

// Snapshot returns the current settings and status.
func (c *Client) Snapshot() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Settings{
		Enabled:      c.enabled,
		EndpointURL:  c.endpointURL,
		LastSyncTime: c.lastSync,
		Status:       c.status,
	}
}

// RestoreLastSync seeds the last sync time from the durable store.
func (c *Client) RestoreLastSync(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSync = t
}

func (c *Client) begin(manual bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled && manual && !c.manualBypass {
		return fmt.Errorf("%w: sync is disabled", shared.ErrSync)
	}
	c.status = StatusSyncing
	return nil
}

func (c *Client) finish(status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	if c.dismiss != nil {
		c.dismiss.Stop()
	}
	c.dismiss = time.AfterFunc(statusDismiss, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.status == status {
			c.status = StatusIdle
		}
	})
}

func (c *Client) isSequential() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sequential
}

func (c *Client) post(ctx context.Context, action string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrSync, action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrSync, action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrSync, action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrSync, action, err)
	}
	var result remoteResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("%w: %s: malformed response: %v", shared.ErrSync, action, err)
	}
	if !result.Success {
		return fmt.Errorf("%w: %s: %s", shared.ErrSync, action, result.Message)
	}
	return nil
}
