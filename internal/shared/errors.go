package shared

import "errors"

var (
	// ErrNotFound indicates a record lookup miss on update or delete.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure or an inactive account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUsername indicates a username collision at create time.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrEmptyCart indicates checkout was attempted with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrLineIndex indicates a cart line index out of range.
	ErrLineIndex = errors.New("cart line index out of range")
	// ErrValidation indicates rejected input at the API boundary.
	ErrValidation = errors.New("validation failed")
	// ErrSync indicates a transport failure or malformed remote response.
	ErrSync = errors.New("sync failed")
	// ErrImportFormat indicates a malformed import document.
	ErrImportFormat = errors.New("invalid import document")
	// ErrForbidden indicates the session lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates a missing or expired session.
	ErrUnauthorized = errors.New("unauthorized")
)

// UserSafeMessage returns a message suitable for displaying to end users.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrDuplicateUsername),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrSync),
		errors.Is(err, ErrImportFormat):
		return err.Error()
	default:
		return "something went wrong, please try again"
	}
}
