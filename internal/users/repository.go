package users

import (
	"fmt"
	"sync"

	"github.com/ballbuild/pos/internal/persist"
	"github.com/ballbuild/pos/internal/shared"
)

// Repository holds the user collection in memory. Username uniqueness is
// enforced on create only; edits keep the username immutable.
type Repository struct {
	mu    sync.Mutex
	users []User
	saver persist.Saver
}

// NewRepository constructs a Repository seeded with the loaded collection.
func NewRepository(initial []User, saver persist.Saver) *Repository {
	return &Repository{users: initial, saver: saver}
}

// List returns a copy of the collection.
func (r *Repository) List() []User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, len(r.users))
	copy(out, r.users)
	return out
}

// Find returns the user with the given id.
func (r *Repository) Find(id int) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// FindByUsername returns the user with the given username.
func (r *Repository) FindByUsername(username string) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// Create appends a new user, rejecting duplicate usernames whether the
// existing holder is active or not.
func (r *Repository) Create(u User) (User, error) {
	r.mu.Lock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			r.mu.Unlock()
			return User{}, fmt.Errorf("%q: %w", u.Username, shared.ErrDuplicateUsername)
		}
	}
	u.ID = r.nextID()
	r.users = append(r.users, u)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return u, nil
}

// Update merges fields into the user. The username never changes, and a
// blank password means "retain the existing password".
func (r *Repository) Update(id int, u User) (User, error) {
	r.mu.Lock()
	idx := -1
	for i := range r.users {
		if r.users[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	current := r.users[idx]
	current.FullName = u.FullName
	current.Role = u.Role
	current.Active = u.Active
	if u.Password != "" {
		current.Password = u.Password
	}
	r.users[idx] = current
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return current, nil
}

// Delete removes the user with the given id.
func (r *Repository) Delete(id int) error {
	r.mu.Lock()
	idx := -1
	for i := range r.users {
		if r.users[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	r.users = append(r.users[:idx], r.users[idx+1:]...)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
	return nil
}

// Replace swaps in a whole new collection after import, re-matching
// passwordless imports against existing records by username.
func (r *Repository) Replace(items []User) {
	r.mu.Lock()
	merged := make([]User, len(items))
	copy(merged, items)
	for i := range merged {
		if merged[i].Password != "" {
			continue
		}
		for _, existing := range r.users {
			if existing.Username == merged[i].Username {
				merged[i].Password = existing.Password
				break
			}
		}
	}
	r.users = merged
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persistSnapshot(snapshot)
}

// NextID exposes the allocator.
func (r *Repository) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID()
}

func (r *Repository) nextID() int {
	max := 0
	for _, u := range r.users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func (r *Repository) snapshotLocked() []User {
	snapshot := make([]User, len(r.users))
	copy(snapshot, r.users)
	return snapshot
}

func (r *Repository) persistSnapshot(snapshot []User) {
	if r.saver != nil {
		r.saver.SaveCollection(persist.KeyUsers, snapshot)
	}
}
