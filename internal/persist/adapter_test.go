package persist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballbuild/pos/internal/platform/kv"
)

type failingStore struct {
	kv.Store
	putErr error
}

func (s *failingStore) Put(ctx context.Context, key string, value []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.Store.Put(ctx, key, value)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaveCollectionTriggersOnChange(t *testing.T) {
	adapter := New(kv.NewMemoryStore(), discardLogger())
	triggered := 0
	adapter.SetOnChange(func() { triggered++ })

	adapter.SaveCollection(KeyProducts, []string{"a"})
	assert.Equal(t, 1, triggered)

	var got []string
	require.True(t, adapter.Load(context.Background(), KeyProducts, &got))
	assert.Equal(t, []string{"a"}, got)
}

func TestSaveCollectionAbsorbsStoreFailure(t *testing.T) {
	store := &failingStore{Store: kv.NewMemoryStore(), putErr: errors.New("disk full")}
	adapter := New(store, discardLogger())
	triggered := 0
	adapter.SetOnChange(func() { triggered++ })

	// Never panics, never errors, and a failed write must not schedule a
	// sync of data that was not persisted.
	adapter.SaveCollection(KeySales, []int{1, 2})
	assert.Zero(t, triggered)
}

func TestSaveMetaDoesNotTriggerOnChange(t *testing.T) {
	adapter := New(kv.NewMemoryStore(), discardLogger())
	triggered := 0
	adapter.SetOnChange(func() { triggered++ })

	adapter.SaveMeta(KeyLastSync, "2026-09-01T10:00:00Z")
	assert.Zero(t, triggered)

	var got string
	require.True(t, adapter.Load(context.Background(), KeyLastSync, &got))
	assert.Equal(t, "2026-09-01T10:00:00Z", got)
}

func TestLoadMissingKeyKeepsDefault(t *testing.T) {
	adapter := New(kv.NewMemoryStore(), discardLogger())

	target := []string{"default"}
	assert.False(t, adapter.Load(context.Background(), KeyCustomers, &target))
	assert.Equal(t, []string{"default"}, target)
}

func TestLoadMalformedContentKeepsDefault(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), KeyUsers, []byte("{not json")))
	adapter := New(store, discardLogger())

	target := []string{"default"}
	assert.False(t, adapter.Load(context.Background(), KeyUsers, &target))
	assert.Equal(t, []string{"default"}, target)
}
