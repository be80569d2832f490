package customers

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ballbuild/pos/internal/shared"
)

// CustomerForm carries customer fields from the UI collaborator.
type CustomerForm struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	TaxID   string `json:"taxId"`
}

// Service wraps customer business rules over the repository.
type Service struct {
	repo     *Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns customers matching the optional search query.
func (s *Service) List(query string) []Customer {
	return s.repo.Search(query)
}

// Get returns one customer.
func (s *Service) Get(id int) (Customer, error) {
	c, ok := s.repo.Find(id)
	if !ok {
		return Customer{}, fmt.Errorf("customer %d: %w", id, shared.ErrNotFound)
	}
	return c, nil
}

// Create validates the form and appends a new customer.
func (s *Service) Create(form CustomerForm) (Customer, error) {
	if err := s.validate.Struct(form); err != nil {
		return Customer{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return s.repo.Create(form.toCustomer()), nil
}

// Update validates the form and replaces the customer's fields.
func (s *Service) Update(id int, form CustomerForm) (Customer, error) {
	if err := s.validate.Struct(form); err != nil {
		return Customer{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return s.repo.Update(id, form.toCustomer())
}

// Delete removes the customer.
func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

func (f CustomerForm) toCustomer() Customer {
	return Customer{Name: f.Name, Address: f.Address, Phone: f.Phone, TaxID: f.TaxID}
}
