package sales

import (
	"fmt"
	"sync"
	"time"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	"github.com/ballbuild/pos/internal/shared"
	"github.com/ballbuild/pos/internal/users"
)

// Service owns the single terminal cart and the checkout flow. Cart
// mutations run to completion under one lock, mirroring the original's
// single thread of control.
type Service struct {
	mu        sync.Mutex
	cart      *Cart
	repo      *Repository
	catalog   *catalog.Repository
	customers *customers.Repository
	users     *users.Repository
}

// NewService constructs a Service over the repositories.
func NewService(repo *Repository, catalogRepo *catalog.Repository, customerRepo *customers.Repository, userRepo *users.Repository) *Service {
	return &Service{
		cart:      NewCart(),
		repo:      repo,
		catalog:   catalogRepo,
		customers: customerRepo,
		users:     userRepo,
	}
}

// CartView is the UI-facing cart snapshot with computed amounts.
type CartView struct {
	Lines    []LineView          `json:"lines"`
	Total    float64             `json:"total"`
	Customer *customers.Customer `json:"customer"`
}

// LineView decorates a line with its computed amounts.
type LineView struct {
	Line
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// AddProduct adds the catalog product to the cart, merging with an
// existing line for the same product.
func (s *Service) AddProduct(productID int) (CartView, error) {
	p, ok := s.catalog.Find(productID)
	if !ok {
		return CartView{}, fmt.Errorf("product %d: %w", productID, shared.ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.AddProduct(p)
	return s.viewLocked(), nil
}

// SetQuantity validates and sets a line's quantity.
func (s *Service) SetQuantity(index, quantity int) (CartView, error) {
	if quantity < 1 {
		return CartView{}, fmt.Errorf("%w: quantity must be at least 1", shared.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.SetQuantity(index, quantity); err != nil {
		return CartView{}, err
	}
	return s.viewLocked(), nil
}

// SetUnit validates and sets a line's unit.
func (s *Service) SetUnit(index int, unit string) (CartView, error) {
	if unit != UnitPiece && unit != UnitBox {
		return CartView{}, fmt.Errorf("%w: unknown unit %q", shared.ErrValidation, unit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.SetUnit(index, unit); err != nil {
		return CartView{}, err
	}
	return s.viewLocked(), nil
}

// SetPriceType validates and sets a line's price tier. The promo tier is
// only selectable when the product carries a promo price.
func (s *Service) SetPriceType(index int, tier string) (CartView, error) {
	if tier != TierRetail && tier != TierWholesale && tier != TierPromo {
		return CartView{}, fmt.Errorf("%w: unknown price type %q", shared.ErrValidation, tier)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tier == TierPromo {
		line, err := s.cart.Line(index)
		if err != nil {
			return CartView{}, err
		}
		if !line.HasPromo() {
			return CartView{}, fmt.Errorf("%w: product has no promotion", shared.ErrValidation)
		}
	}
	if err := s.cart.SetPriceType(index, tier); err != nil {
		return CartView{}, err
	}
	return s.viewLocked(), nil
}

// SetDiscount validates and sets a line's discount percentage.
func (s *Service) SetDiscount(index int, discount float64) (CartView, error) {
	if discount < 0 || discount > 100 {
		return CartView{}, fmt.Errorf("%w: discount must be between 0 and 100", shared.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.SetDiscount(index, discount); err != nil {
		return CartView{}, err
	}
	return s.viewLocked(), nil
}

// RemoveLine deletes a cart line by position.
func (s *Service) RemoveLine(index int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Remove(index); err != nil {
		return CartView{}, err
	}
	return s.viewLocked(), nil
}

// ClearCart empties the cart and detaches the customer.
func (s *Service) ClearCart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	return s.viewLocked()
}

// SelectCustomer attaches the customer to the draft; nil detaches.
func (s *Service) SelectCustomer(customerID *int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if customerID == nil {
		s.cart.SelectCustomer(nil)
		return s.viewLocked(), nil
	}
	c, ok := s.customers.Find(*customerID)
	if !ok {
		return CartView{}, fmt.Errorf("customer %d: %w", *customerID, shared.ErrNotFound)
	}
	s.cart.SelectCustomer(&c)
	return s.viewLocked(), nil
}

// Cart returns the current draft.
func (s *Service) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Checkout freezes the draft into a Sale: deep-copies the lines, computes
// the total once, assigns the next sale id, appends to the history and
// clears the cart. Fails with ErrEmptyCart when there is nothing to sell.
func (s *Service) Checkout(sellerID int) (Sale, error) {
	seller, ok := s.users.Find(sellerID)
	if !ok {
		return Sale{}, fmt.Errorf("seller %d: %w", sellerID, shared.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart.Len() == 0 {
		return Sale{}, shared.ErrEmptyCart
	}

	sale := Sale{
		Date:     time.Now(),
		Items:    s.cart.Lines(),
		Total:    s.cart.Total(),
		Customer: s.cart.Customer(),
		Seller:   seller.View(),
	}
	sale = s.repo.Append(sale)
	s.cart.Clear()
	return sale, nil
}

// History returns the whole sale history.
func (s *Service) History() []Sale {
	return s.repo.List()
}

func (s *Service) viewLocked() CartView {
	lines := s.cart.Lines()
	views := make([]LineView, len(lines))
	for i, l := range lines {
		views[i] = LineView{Line: l, UnitPrice: UnitPrice(l), LineTotal: Round2(LineTotal(l))}
	}
	return CartView{Lines: views, Total: Round2(s.cart.Total()), Customer: s.cart.Customer()}
}
