package store

import (
	"context"
	"log"
	"sync"

	"github.com/watchroom/client-go/internal/gateway"
	"github.com/watchroom/client-go/internal/types"
)

// UserDirectory caches the selectable users that populate participant
// pickers. It is read-only apart from wholesale refreshes.
type UserDirectory struct {
	mu    sync.Mutex
	users []types.User

	gw  gateway.API
	log *log.Logger
}

func newUserDirectory(logger *log.Logger, gw gateway.API) *UserDirectory {
	return &UserDirectory{gw: gw, log: logger}
}

// Refresh replaces the entire cache with the server's user list. A failed
// fetch is logged and leaves the prior cache intact.
func (d *UserDirectory) Refresh(ctx context.Context) error {
	users, err := d.gw.ListUsers(ctx)
	if err != nil {
		d.log.Printf("refresh users: %v", err)
		return err
	}

	d.mu.Lock()
	d.users = users
	d.mu.Unlock()
	return nil
}

// List returns a copy of the cached users.
func (d *UserDirectory) List() []types.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	users := make([]types.User, len(d.users))
	copy(users, d.users)
	return users
}
