package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballbuild/pos/internal/shared"
)

func seededService() *Service {
	return NewService(NewRepository(SeedUsers(), nil))
}

func TestLogin(t *testing.T) {
	service := seededService()

	u, err := service.Login("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)

	_, err = service.Login("admin", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = service.Login("ghost", "admin123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	service := seededService()

	view, err := service.ToggleActive(2)
	require.NoError(t, err)
	assert.False(t, view.Active)

	_, err = service.Login("user", "user123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	service := seededService()

	// Collision against an active account.
	_, err := service.Create(UserForm{Username: "admin", Password: "x", FullName: "Other", Role: RoleUser, Active: true})
	assert.ErrorIs(t, err, shared.ErrDuplicateUsername)

	// Collision against an inactive account is still a collision.
	_, err = service.ToggleActive(2)
	require.NoError(t, err)
	_, err = service.Create(UserForm{Username: "user", Password: "x", FullName: "Other", Role: RoleUser, Active: true})
	assert.ErrorIs(t, err, shared.ErrDuplicateUsername)

	// Editing the existing holder is fine; the edit form carries no
	// username at all.
	view, err := service.Update(1, UpdateUserForm{FullName: "Head Admin", Role: RoleAdmin, Active: true})
	require.NoError(t, err)
	assert.Equal(t, "Head Admin", view.FullName)
}

func TestUpdateBlankPasswordRetainsExisting(t *testing.T) {
	repo := NewRepository(SeedUsers(), nil)
	service := NewService(repo)

	_, err := service.Update(1, UpdateUserForm{FullName: "Administrator", Role: RoleAdmin, Active: true})
	require.NoError(t, err)

	u, ok := repo.Find(1)
	require.True(t, ok)
	assert.Equal(t, "admin123", u.Password)

	_, err = service.Update(1, UpdateUserForm{Password: "newpass", FullName: "Administrator", Role: RoleAdmin, Active: true})
	require.NoError(t, err)
	u, _ = repo.Find(1)
	assert.Equal(t, "newpass", u.Password)
}

func TestReplaceRematchesPasswordsByUsername(t *testing.T) {
	repo := NewRepository(SeedUsers(), nil)

	// Imported snapshot carries no passwords (export strips them).
	repo.Replace([]User{
		{ID: 1, Username: "admin", FullName: "Administrator", Role: RoleAdmin, Active: true},
		{ID: 5, Username: "casher", FullName: "New Casher", Role: RoleUser, Active: true},
	})

	admin, _ := repo.FindByUsername("admin")
	assert.Equal(t, "admin123", admin.Password)

	// Unknown usernames come through with no password at all.
	casher, _ := repo.FindByUsername("casher")
	assert.Empty(t, casher.Password)

	assert.Equal(t, 6, repo.NextID())
}

func TestViewStripsPassword(t *testing.T) {
	service := seededService()
	for _, v := range service.List() {
		assert.NotContains(t, []string{"admin123", "user123"}, v.FullName)
	}
	view, err := service.Create(UserForm{Username: "till2", Password: "s3cret", FullName: "Till Two", Role: RoleUser, Active: true})
	require.NoError(t, err)
	assert.Equal(t, 3, view.ID)
}
