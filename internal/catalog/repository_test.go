package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballbuild/pos/internal/shared"
)

type recordingSaver struct {
	keys  []string
	saves int
}

func (s *recordingSaver) SaveCollection(key string, value any) {
	s.keys = append(s.keys, key)
	s.saves++
}

func TestRepositoryCreateAssignsSequentialIDs(t *testing.T) {
	saver := &recordingSaver{}
	repo := NewRepository(nil, saver)

	a := repo.Create(Product{Code: "A-01", Name: "Cement", Category: "building", UnitQty: 1, BoxQty: 10})
	b := repo.Create(Product{Code: "A-02", Name: "Sand", Category: "building", UnitQty: 1, BoxQty: 1})

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, 2, saver.saves)
	assert.Equal(t, []string{"products", "products"}, saver.keys)
}

func TestRepositoryNextIDRecomputedFromMax(t *testing.T) {
	repo := NewRepository([]Product{{ID: 3}, {ID: 7}, {ID: 5}}, nil)
	assert.Equal(t, 8, repo.NextID())

	// Deleting the max-id record frees its id for reuse; the allocator is
	// recompute-from-max, not a monotonic counter.
	require.NoError(t, repo.Delete(7))
	assert.Equal(t, 6, repo.NextID())

	created := repo.Create(Product{Code: "X"})
	assert.Equal(t, 6, created.ID)
}

func TestRepositoryUpdateMissingID(t *testing.T) {
	repo := NewRepository(nil, nil)
	_, err := repo.Update(42, Product{Code: "X"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(42), shared.ErrNotFound)
}

func TestRepositoryUpdateKeepsID(t *testing.T) {
	repo := NewRepository(nil, nil)
	p := repo.Create(Product{Code: "A-01", Name: "Cement"})

	updated, err := repo.Update(p.ID, Product{ID: 999, Code: "A-01", Name: "Cement 50kg"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Cement 50kg", updated.Name)
}

func TestRepositoryReplaceRederivesNextID(t *testing.T) {
	saver := &recordingSaver{}
	repo := NewRepository(nil, saver)
	repo.Create(Product{Code: "A"})

	repo.Replace([]Product{{ID: 11}, {ID: 40}})
	assert.Equal(t, 41, repo.NextID())
	assert.Len(t, repo.List(), 2)
}

func TestRepositorySearch(t *testing.T) {
	repo := NewRepository([]Product{
		{ID: 1, Code: "CEM-01", Name: "Portland Cement", Category: "building"},
		{ID: 2, Code: "PVC-20", Name: "PVC Pipe 20mm", Category: "plumbing"},
	}, nil)

	assert.Len(t, repo.Search(""), 2)
	assert.Len(t, repo.Search("cem"), 1)
	assert.Len(t, repo.Search("plumb"), 1)
	assert.Empty(t, repo.Search("paint"))
}

func TestServiceValidation(t *testing.T) {
	service := NewService(NewRepository(nil, nil))

	_, err := service.Create(ProductForm{Name: "No code", Category: "x", UnitQty: 1, BoxQty: 1})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = service.Create(ProductForm{Code: "A", Name: "B", Category: "c", UnitQty: 0, BoxQty: 1})
	assert.ErrorIs(t, err, shared.ErrValidation)

	p, err := service.Create(ProductForm{Code: "A", Name: "B", Category: "c", UnitQty: 1, BoxQty: 12, RetailPrice: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, p.ID)
	assert.False(t, p.HasPromo())
}
