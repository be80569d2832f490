package sales

import (
	"sync"
	"time"

	"github.com/ballbuild/pos/internal/persist"
)

// Repository holds the sale history. Sales are create-only: there is no
// update, cancel or void operation.
type Repository struct {
	mu    sync.Mutex
	sales []Sale
	saver persist.Saver
}

// NewRepository constructs a Repository seeded with the loaded history.
func NewRepository(initial []Sale, saver persist.Saver) *Repository {
	return &Repository{sales: initial, saver: saver}
}

// Append assigns the next id and appends the frozen sale.
func (r *Repository) Append(s Sale) Sale {
	r.mu.Lock()
	s.ID = r.nextID()
	r.sales = append(r.sales, s)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return s
}

// List returns a copy of the whole history.
func (r *Repository) List() []Sale {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Between returns sales whose date falls within [from, to]. Zero bounds
// are open-ended.
func (r *Repository) Between(from, to time.Time) []Sale {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sale
	for _, s := range r.sales {
		if !from.IsZero() && s.Date.Before(from) {
			continue
		}
		if !to.IsZero() && s.Date.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Len reports the history length.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sales)
}

// Replace swaps in a whole new history after import.
func (r *Repository) Replace(items []Sale) {
	r.mu.Lock()
	r.sales = make([]Sale, len(items))
	copy(r.sales, items)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
}

// NextID exposes the allocator.
func (r *Repository) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID()
}

func (r *Repository) nextID() int {
	max := 0
	for _, s := range r.sales {
		if s.ID > max {
			max = s.ID
		}
	}
	return max + 1
}

func (r *Repository) snapshotLocked() []Sale {
	snapshot := make([]Sale, len(r.sales))
	copy(snapshot, r.sales)
	return snapshot
}

func (r *Repository) persistSnapshot(snapshot []Sale) {
	if r.saver != nil {
		r.saver.SaveCollection(persist.KeySales, snapshot)
	}
}
