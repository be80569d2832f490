package customers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballbuild/pos/internal/shared"
)

func TestRepositoryCRUD(t *testing.T) {
	repo := NewRepository(nil, nil)

	c := repo.Create(Customer{Name: "Somchai Builders", Phone: "081-555-1234"})
	assert.Equal(t, 1, c.ID)

	updated, err := repo.Update(c.ID, Customer{Name: "Somchai Builders Co.", Phone: "081-555-1234"})
	require.NoError(t, err)
	assert.Equal(t, "Somchai Builders Co.", updated.Name)
	assert.Equal(t, 1, updated.ID)

	_, err = repo.Update(99, Customer{Name: "nobody"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.Delete(c.ID))
	assert.Empty(t, repo.List())
	assert.Equal(t, 1, repo.NextID())
}

func TestRepositorySearchByPhoneAndTaxID(t *testing.T) {
	repo := NewRepository([]Customer{
		{ID: 1, Name: "Alpha", Phone: "081-111"},
		{ID: 2, Name: "Beta", TaxID: "0105544"},
	}, nil)

	assert.Len(t, repo.Search("081"), 1)
	assert.Len(t, repo.Search("0105"), 1)
	assert.Len(t, repo.Search("alp"), 1)
}

func TestServiceRequiresName(t *testing.T) {
	service := NewService(NewRepository(nil, nil))
	_, err := service.Create(CustomerForm{Phone: "081"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
