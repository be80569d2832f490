package customers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ballbuild/pos/internal/persist"
	"github.com/ballbuild/pos/internal/shared"
)

// Repository holds the customer collection in memory with the same
// allocator and write-through behavior as the catalog.
type Repository struct {
	mu        sync.Mutex
	customers []Customer
	saver     persist.Saver
}

// NewRepository constructs a Repository seeded with the loaded collection.
func NewRepository(initial []Customer, saver persist.Saver) *Repository {
	return &Repository{customers: initial, saver: saver}
}

// List returns a copy of the collection.
func (r *Repository) List() []Customer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Customer, len(r.customers))
	copy(out, r.customers)
	return out
}

// Search returns customers whose name, phone or tax id contains the query.
func (r *Repository) Search(query string) []Customer {
	if query == "" {
		return r.List()
	}
	q := strings.ToLower(query)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Customer
	for _, c := range r.customers {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Phone), q) ||
			strings.Contains(strings.ToLower(c.TaxID), q) {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the customer with the given id.
func (r *Repository) Find(id int) (Customer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

// Create assigns the next id and appends the customer.
func (r *Repository) Create(c Customer) Customer {
	r.mu.Lock()
	c.ID = r.nextID()
	r.customers = append(r.customers, c)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return c
}

// Update replaces all fields of the customer except its id.
func (r *Repository) Update(id int, c Customer) (Customer, error) {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return Customer{}, fmt.Errorf("customer %d: %w", id, shared.ErrNotFound)
	}
	c.ID = id
	r.customers[idx] = c
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return c, nil
}

// Delete removes the customer. Past sales keep their frozen customer copy.
func (r *Repository) Delete(id int) error {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("customer %d: %w", id, shared.ErrNotFound)
	}
	r.customers = append(r.customers[:idx], r.customers[idx+1:]...)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return nil
}

// Replace swaps in a whole new collection after import or pull.
func (r *Repository) Replace(items []Customer) {
	r.mu.Lock()
	r.customers = make([]Customer, len(items))
	copy(r.customers, items)
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
	for _, c := range r.customers {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

func (r *Repository) indexLocked(id int) int {
	for i := range r.customers {
		if r.customers[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) snapshotLocked() []Customer {
	snapshot := make([]Customer, len(r.customers))
	copy(snapshot, r.customers)
	return snapshot
}

func (r *Repository) persistSnapshot(snapshot []Customer) {
	if r.saver != nil {
		r.saver.SaveCollection(persist.KeyCustomers, snapshot)
	}
}
