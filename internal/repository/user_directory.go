package repository

import (
	"sync"

	"github.com/noah-isme/edu-workflow-api/internal/models"
)

// UserDirectory is the in-memory list of users that may be selected as the
// session user.
type UserDirectory struct {
	mu    sync.RWMutex
	users []models.User
}

// NewUserDirectory builds a directory preserving the given order.
func NewUserDirectory(users ...models.User) *UserDirectory {
	return &UserDirectory{users: append([]models.User{}, users...)}
}

// List returns all users.
func (d *UserDirectory) List() []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.User{}, d.users...)
}

// FindByID returns the user with the given id.
func (d *UserDirectory) FindByID(id string) (*models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			user := u
			return &user, true
		}
	}
	return nil, false
}
