package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ballbuild/pos/internal/persist"
	"github.com/ballbuild/pos/internal/shared"
)

// Repository holds the product collection in memory and mirrors every
// mutation to the durable store. Identifiers are assigned from
// max(existing)+1 and recomputed on bulk replace, so snapshots imported
// with foreign ids keep allocating past their maximum.
type Repository struct {
	mu       sync.Mutex
	products []Product
	saver    persist.Saver
}

// NewRepository constructs a Repository seeded with the loaded collection.
func NewRepository(initial []Product, saver persist.Saver) *Repository {
	return &Repository{products: initial, saver: saver}
}

// List returns a copy of the collection.
func (r *Repository) List() []Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Product, len(r.products))
	copy(out, r.products)
	return out
}

// Search returns products whose code, name or category contains the query,
// case-insensitively. An empty query returns everything.
func (r *Repository) Search(query string) []Product {
	if query == "" {
		return r.List()
	}
	q := strings.ToLower(query)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Product
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Code), q) ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the product with the given id.
func (r *Repository) Find(id int) (Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Create assigns the next id and appends the product.
func (r *Repository) Create(p Product) Product {
	r.mu.Lock()
	p.ID = r.nextID()
	r.products = append(r.products, p)
	snapshot := make([]Product, len(r.products))
	copy(snapshot, r.products)
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return p
}

// Update replaces all fields of the product except its id.
func (r *Repository) Update(id int, p Product) (Product, error) {
	r.mu.Lock()
	idx := -1
	for i := range r.products {
		if r.products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return Product{}, fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	p.ID = id
	r.products[idx] = p
	snapshot := make([]Product, len(r.products))
	copy(snapshot, r.products)
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return p, nil
}

// Delete removes the product with the given id. Sales keep their frozen
// line snapshots, so no cascade is needed.
func (r *Repository) Delete(id int) error {
	r.mu.Lock()
	idx := -1
	for i := range r.products {
		if r.products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	r.products = append(r.products[:idx], r.products[idx+1:]...)
	snapshot := make([]Product, len(r.products))
	copy(snapshot, r.products)
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return nil
}

// Replace swaps in a whole new collection, typically after import or pull.
func (r *Repository) Replace(items []Product) {
	r.mu.Lock()
	r.products = make([]Product, len(items))
	copy(r.products, items)
	snapshot := make([]Product, len(r.products))
	copy(snapshot, r.products)
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
}

// NextID exposes the allocator for tests and import bookkeeping.
func (r *Repository) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID()
}

func (r *Repository) nextID() int {
	max := 0
	for _, p := range r.products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

func (r *Repository) persistSnapshot(snapshot []Product) {
	if r.saver != nil {
		r.saver.SaveCollection(persist.KeyProducts, snapshot)
	}
}
