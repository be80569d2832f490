package syncer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	"github.com/ballbuild/pos/internal/persist"
	"github.com/ballbuild/pos/internal/sales"
	"github.com/ballbuild/pos/internal/shared"
	"github.com/ballbuild/pos/internal/users"
)

type remoteRecorder struct {
	mu      sync.Mutex
	actions []string
	fail    map[string]bool
	pull    string
}

func (rec *remoteRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			switch r.URL.Query().Get("action") {
			case "test":
				io.WriteString(w, `{"success":true,"message":"connection ok"}`)
			case "get_all_data":
				io.WriteString(w, rec.pull)
			default:
				io.WriteString(w, `{"success":false,"message":"unknown action"}`)
			}
			return
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			io.WriteString(w, `{"success":false,"message":"bad payload"}`)
			return
		}
		action, _ := body["action"].(string)
		rec.mu.Lock()
		rec.actions = append(rec.actions, action)
		failed := rec.fail[action]
		rec.mu.Unlock()
		if failed {
			io.WriteString(w, `{"success":false,"message":"sheet rejected the batch"}`)
			return
		}
		io.WriteString(w, `{"success":true,"message":"saved"}`)
	}
}

func (rec *remoteRecorder) received() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]string, len(rec.actions))
	copy(out, rec.actions)
	return out
}

type recordingMeta struct {
	mu   sync.Mutex
	keys []string
}

func (m *recordingMeta) SaveMeta(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
}

type fixture struct {
	client    *Client
	recorder  *remoteRecorder
	meta      *recordingMeta
	catalog   *catalog.Repository
	customers *customers.Repository
	sales     *sales.Repository
	users     *users.Repository
}

func newFixture(t *testing.T, cfg Config, gate func() bool) *fixture {
	t.Helper()
	rec := &remoteRecorder{
		fail: map[string]bool{},
		pull: `{"success":true,"data":{"products":[],"customers":[]}}`,
	}
	srv := httptest.NewServer(rec.handler())
	t.Cleanup(srv.Close)

	cfg.EndpointURL = srv.URL
	meta := &recordingMeta{}
	f := &fixture{
		recorder: rec,
		meta:     meta,
		catalog: catalog.NewRepository([]catalog.Product{
			{ID: 1, Code: "CEM-50", Name: "Cement 50kg", Category: "Cement", UnitQty: 1, BoxQty: 1, RetailPrice: 120, WholesalePrice: 100},
		}, nil),
		customers: customers.NewRepository([]customers.Customer{
			{ID: 1, Name: "Walk-in"},
		}, nil),
		sales: sales.NewRepository(nil, nil),
		users: users.NewRepository(users.SeedUsers(), nil),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.client = New(logger, cfg, f.catalog, f.customers, f.sales, f.users, meta, gate)
	return f
}

func TestPushSendsAllFourCollections(t *testing.T) {
	f := newFixture(t, Config{Enabled: true, ManualBypass: true}, nil)

	require.NoError(t, f.client.Push(context.Background()))

	got := f.recorder.received()
	assert.ElementsMatch(t, []string{"sync_products", "sync_customers", "sync_sales", "sync_users"}, got)
	assert.False(t, f.client.Snapshot().LastSyncTime.IsZero())

	f.meta.mu.Lock()
	defer f.meta.mu.Unlock()
	assert.Equal(t, []string{persist.KeyLastSync}, f.meta.keys)
}

func TestPushPartialFailureLeavesSiblingsApplied(t *testing.T) {
	f := newFixture(t, Config{Enabled: true, ManualBypass: true}, nil)
	f.recorder.fail["sync_sales"] = true

	err := f.client.Push(context.Background())
	require.ErrorIs(t, err, shared.ErrSync)
	assert.Contains(t, err.Error(), "sheet rejected the batch")

	// The other three requests still reached the remote and were not
	// rolled back. Overall the push is a failure.
	got := f.recorder.received()
	assert.ElementsMatch(t, []string{"sync_products", "sync_customers", "sync_sales", "sync_users"}, got)
	assert.True(t, f.client.Snapshot().LastSyncTime.IsZero())
	f.meta.mu.Lock()
	defer f.meta.mu.Unlock()
	assert.Empty(t, f.meta.keys)
}

func TestPushSequentialStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t, Config{Enabled: true, ManualBypass: true, Sequential: true}, nil)
	f.recorder.fail["sync_customers"] = true

	err := f.client.Push(context.Background())
	require.ErrorIs(t, err, shared.ErrSync)

	assert.Equal(t, []string{"sync_products", "sync_customers"}, f.recorder.received())
}

func TestPushRespectsDisabledFlag(t *testing.T) {
	f := newFixture(t, Config{Enabled: false, ManualBypass: false}, nil)

	err := f.client.Push(context.Background())
	require.ErrorIs(t, err, shared.ErrSync)
	assert.Empty(t, f.recorder.received())
}

func TestPushManualBypassWhileDisabled(t *testing.T) {
	f := newFixture(t, Config{Enabled: false, ManualBypass: true}, nil)

	require.NoError(t, f.client.Push(context.Background()))
	assert.Len(t, f.recorder.received(), 4)
}

func TestPullReplacesProductsAndCustomersOnly(t *testing.T) {
	f := newFixture(t, Config{Enabled: true, ManualBypass: true}, nil)
	f.recorder.pull = `{"success":true,"data":{
		"products":[{"id":9,"code":"PVC-20","name":"PVC Pipe 20mm","category":"Plumbing","unitQty":1,"boxQty":10,"retailPrice":35,"wholesalePrice":28,"promoPrice":0}],
		"customers":[{"id":4,"name":"Somchai Builders","phone":"081-000-0000"}]
	}}`

	f.sales.Append(sales.Sale{Date: time.Now(), Total: 120})
	require.NoError(t, f.client.Pull(context.Background()))

	products := f.catalog.List()
	require.Len(t, products, 1)
	assert.Equal(t, "PVC Pipe 20mm", products[0].Name)

	custs := f.customers.List()
	require.Len(t, custs, 1)
	assert.Equal(t, "Somchai Builders", custs[0].Name)

	// Sales and users are never overwritten by a pull.
	assert.Equal(t, 1, f.sales.Len())
	assert.Len(t, f.users.List(), 2)
}

func TestPullRemoteFailure(t *testing.T) {
	f := newFixture(t, Config{Enabled: true, ManualBypass: true}, nil)
	f.recorder.pull = `{"success":false,"message":"sheet unavailable"}`

	err := f.client.Pull(context.Background())
	require.ErrorIs(t, err, shared.ErrSync)
	assert.Contains(t, err.Error(), "sheet unavailable")

	// Local data stays intact on a failed pull.
	assert.Len(t, f.catalog.List(), 1)
	assert.Len(t, f.customers.List(), 1)
}

func TestProbe(t *testing.T) {
	f := newFixture(t, Config{Enabled: true, ManualBypass: true}, nil)

	message, err := f.client.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "connection ok", message)
}

func TestAutoSyncDebouncesBursts(t *testing.T) {
	f := newFixture(t, Config{Enabled: true, ManualBypass: true, Debounce: 30 * time.Millisecond}, func() bool { return true })

	for i := 0; i < 5; i++ {
		f.client.AutoSync()
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(f.recorder.received()) == 4
	}, 2*time.Second, 10*time.Millisecond)

	// Five triggers within the window collapse into one push.
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, f.recorder.received(), 4)
}

func TestAutoSyncDormantWithoutSession(t *testing.T) {
	f := newFixture(t, Config{Enabled: true, ManualBypass: true, Debounce: 10 * time.Millisecond}, func() bool { return false })

	f.client.AutoSync()
	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, f.recorder.received())
}

func TestSetEnabledFalseCancelsPendingDebounce(t *testing.T) {
	f := newFixture(t, Config{Enabled: true, ManualBypass: true, Debounce: 30 * time.Millisecond}, func() bool { return true })

	f.client.AutoSync()
	f.client.SetEnabled(false)
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, f.recorder.received())
}
