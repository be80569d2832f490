package catalog

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ballbuild/pos/internal/shared"
)

// ProductForm carries product fields from the UI collaborator.
type ProductForm struct {
	Code           string  `json:"code" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	Category       string  `json:"category" validate:"required"`
	UnitQty        int     `json:"unitQty" validate:"min=1"`
	BoxQty         int     `json:"boxQty" validate:"min=1"`
	RetailPrice    float64 `json:"retailPrice" validate:"min=0"`
	WholesalePrice float64 `json:"wholesalePrice" validate:"min=0"`
	PromoPrice     float64 `json:"promoPrice" validate:"min=0"`
}

// Service wraps catalog business rules over the repository.
type Service struct {
	repo     *Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns products matching the optional search query.
func (s *Service) List(query string) []Product {
	return s.repo.Search(query)
}

// Get returns one product.
func (s *Service) Get(id int) (Product, error) {
	p, ok := s.repo.Find(id)
	if !ok {
		return Product{}, fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	return p, nil
}

// Create validates the form and appends a new product.
func (s *Service) Create(form ProductForm) (Product, error) {
	if err := s.validate.Struct(form); err != nil {
		return Product{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return s.repo.Create(form.toProduct()), nil
}

// Update validates the form and replaces the product's fields.
func (s *Service) Update(id int, form ProductForm) (Product, error) {
	if err := s.validate.Struct(form); err != nil {
		return Product{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return s.repo.Update(id, form.toProduct())
}

// Delete removes the product.
func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

func (f ProductForm) toProduct() Product {
	return Product{
		Code:           f.Code,
		Name:           f.Name,
		Category:       f.Category,
		UnitQty:        f.UnitQty,
		BoxQty:         f.BoxQty,
		RetailPrice:    f.RetailPrice,
		WholesalePrice: f.WholesalePrice,
		PromoPrice:     f.PromoPrice,
	}
}
