package users

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ballbuild/pos/internal/shared"
)

// UserForm carries the fields for creating an account.
type UserForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	FullName string `json:"fullName" validate:"required"`
	Role     string `json:"role" validate:"oneof=admin user"`
	Active   bool   `json:"active"`
}

// UpdateUserForm carries the editable fields of an existing account. The
// username is immutable so the edit form does not take one, and a blank
// password keeps the existing one.
type UpdateUserForm struct {
	Password string `json:"password"`
	FullName string `json:"fullName" validate:"required"`
	Role     string `json:"role" validate:"oneof=admin user"`
	Active   bool   `json:"active"`
}

// Service wraps account management and login.
type Service struct {
	repo     *Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Login checks the credentials against the collection. Inactive accounts
// fail the same way as wrong passwords so the response does not reveal
// which part was wrong.
//
// Comparison is plain text, preserved from the system being replaced.
func (s *Service) Login(username, password string) (User, error) {
	u, ok := s.repo.FindByUsername(username)
	if !ok || u.Password != password || !u.Active {
		return User{}, shared.ErrInvalidCredentials
	}
	return u, nil
}

// List returns password-free views of all accounts.
func (s *Service) List() []View {
	all := s.repo.List()
	views := make([]View, len(all))
	for i, u := range all {
		views[i] = u.View()
	}
	return views
}

// Create validates the form and appends a new account. A password is
// required when creating.
func (s *Service) Create(form UserForm) (View, error) {
	if err := s.validate.Struct(form); err != nil {
		return View{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	if form.Password == "" {
		return View{}, fmt.Errorf("%w: password is required", shared.ErrValidation)
	}
	u, err := s.repo.Create(User{
		Username: form.Username,
		Password: form.Password,
		FullName: form.FullName,
		Role:     form.Role,
		Active:   form.Active,
	})
	if err != nil {
		return View{}, err
	}
	return u.View(), nil
}

// Update merges the editable fields into the account.
func (s *Service) Update(id int, form UpdateUserForm) (View, error) {
	if err := s.validate.Struct(form); err != nil {
		return View{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	u, err := s.repo.Update(id, User{
		Password: form.Password,
		FullName: form.FullName,
		Role:     form.Role,
		Active:   form.Active,
	})
	if err != nil {
		return View{}, err
	}
	return u.View(), nil
}

// ToggleActive flips the account's active flag.
func (s *Service) ToggleActive(id int) (View, error) {
	u, ok := s.repo.Find(id)
	if !ok {
		return View{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	updated, err := s.repo.Update(id, User{
		Password: "",
		FullName: u.FullName,
		Role:     u.Role,
		Active:   !u.Active,
	})
	if err != nil {
		return View{}, err
	}
	return updated.View(), nil
}

// Delete removes the account.
func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}
