package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	"github.com/ballbuild/pos/internal/shared"
	"github.com/ballbuild/pos/internal/users"
)

func fixtureService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	catalogRepo := catalog.NewRepository([]catalog.Product{
		{ID: 1, Code: "C-01", Name: "Cement", UnitQty: 1, BoxQty: 10, RetailPrice: 50, WholesalePrice: 40, PromoPrice: 0},
		{ID: 2, Code: "P-02", Name: "Paint", UnitQty: 1, BoxQty: 6, RetailPrice: 80, WholesalePrice: 60, PromoPrice: 70},
	}, nil)
	customerRepo := customers.NewRepository([]customers.Customer{{ID: 1, Name: "Walk-in Plus"}}, nil)
	userRepo := users.NewRepository(users.SeedUsers(), nil)
	saleRepo := NewRepository(nil, nil)
	return NewService(saleRepo, catalogRepo, customerRepo, userRepo), saleRepo
}

func TestAddProductMergesByProductID(t *testing.T) {
	service, _ := fixtureService(t)

	view, err := service.AddProduct(2)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)

	// Second add of the same product increments quantity and keeps the
	// line's chosen unit, tier and discount.
	_, err = service.SetDiscount(0, 5)
	require.NoError(t, err)
	view, err = service.AddProduct(2)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.Equal(t, 5.0, view.Lines[0].Discount)

	view, err = service.AddProduct(1)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)

	_, err = service.AddProduct(99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLineIndexOutOfRange(t *testing.T) {
	service, _ := fixtureService(t)
	_, err := service.SetQuantity(0, 2)
	assert.ErrorIs(t, err, shared.ErrLineIndex)

	_, err = service.RemoveLine(3)
	assert.ErrorIs(t, err, shared.ErrLineIndex)
}

func TestSetFieldValidation(t *testing.T) {
	service, _ := fixtureService(t)
	_, err := service.AddProduct(1)
	require.NoError(t, err)

	_, err = service.SetQuantity(0, 0)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = service.SetUnit(0, "pallet")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = service.SetDiscount(0, 101)
	assert.ErrorIs(t, err, shared.ErrValidation)

	// Product 1 has promoPrice 0: the promo tier must not be selectable.
	_, err = service.SetPriceType(0, TierPromo)
	assert.ErrorIs(t, err, shared.ErrValidation)

	view, err := service.SetPriceType(0, TierWholesale)
	require.NoError(t, err)
	assert.Equal(t, 40.0, view.Lines[0].UnitPrice)
}

func TestRemoveShiftsIndices(t *testing.T) {
	service, _ := fixtureService(t)
	_, _ = service.AddProduct(1)
	_, _ = service.AddProduct(2)

	view, err := service.RemoveLine(0)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Product.ID)
}

func TestClearDetachesCustomer(t *testing.T) {
	service, _ := fixtureService(t)
	_, _ = service.AddProduct(1)
	id := 1
	view, err := service.SelectCustomer(&id)
	require.NoError(t, err)
	require.NotNil(t, view.Customer)

	view = service.ClearCart()
	assert.Empty(t, view.Lines)
	assert.Nil(t, view.Customer)
}

func TestCheckoutEmptyCart(t *testing.T) {
	service, saleRepo := fixtureService(t)

	_, err := service.Checkout(1)
	assert.ErrorIs(t, err, shared.ErrEmptyCart)
	assert.Zero(t, saleRepo.Len())
}

func TestCheckoutFreezesSale(t *testing.T) {
	service, saleRepo := fixtureService(t)

	// Add product 2 twice: one line, quantity 2.
	_, err := service.AddProduct(2)
	require.NoError(t, err)
	view, err := service.AddProduct(2)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, 2, view.Lines[0].Quantity)

	sale, err := service.Checkout(2)
	require.NoError(t, err)

	assert.Equal(t, 1, sale.ID)
	require.Len(t, sale.Items, 1)
	assert.InDelta(t, LineTotal(sale.Items[0]), sale.Total, 1e-9)
	assert.InDelta(t, 160.0, sale.Total, 1e-9)
	assert.Equal(t, "user", sale.Seller.Username)
	assert.Nil(t, sale.Customer)
	assert.Equal(t, 1, saleRepo.Len())

	// Checkout clears the cart as a side effect.
	assert.Empty(t, service.Cart().Lines)

	// The frozen sale is immune to later catalog edits.
	assert.Equal(t, 80.0, sale.Items[0].RetailPrice)
}

func TestCheckoutUnknownSeller(t *testing.T) {
	service, _ := fixtureService(t)
	_, _ = service.AddProduct(1)
	_, err := service.Checkout(99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
