package users

// Roles recognised by the terminal.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account that can log in to the terminal.
//
// Passwords are stored and compared as plain text. This mirrors the system
// being replaced and is a documented limitation, not an invitation: the
// snapshot endpoint and the local store both carry the raw value.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

// View is the password-free projection returned by the API.
type View struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

// View strips the password for API responses.
func (u User) View() View {
	return View{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role, Active: u.Active}
}

// SeedUsers returns the two accounts present on first run.
func SeedUsers() []User {
	return []User{
		{ID: 1, Username: "admin", Password: "admin123", FullName: "Administrator", Role: RoleAdmin, Active: true},
		{ID: 2, Username: "user", Password: "user123", FullName: "Sales Staff", Role: RoleUser, Active: true},
	}
}
