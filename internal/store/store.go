// Package store holds the client's in-memory state: the authenticated
// session, the room collection, and the cached user directory. The three
// managers are siblings; they never call each other, and anything that
// needs more than one slice goes through the Store facade.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/watchroom/client-go/internal/credentials"
	"github.com/watchroom/client-go/internal/gateway"
	"github.com/watchroom/client-go/internal/types"
)

var (
	// ErrOperationInFlight rejects a duplicate trigger while a network
	// operation on the same slice has not resolved yet.
	ErrOperationInFlight = errors.New("operation already in flight")

	// ErrNotAuthenticated guards operations that need a signed-in session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrCreateRoom is the generic failure surfaced to the UI when room
	// creation fails server-side. Details go to the log only.
	ErrCreateRoom = errors.New("failed to create room")
)

// ValidationError is a synchronous, field-level input error. It never
// reaches the network.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

type Options struct {
	// TokenTTL bounds how long a freshly issued token is persisted.
	TokenTTL time.Duration

	// ValidateVideoURLs and EnforceTimeOrder toggle the configurable
	// draft validation rules.
	ValidateVideoURLs bool
	EnforceTimeOrder  bool
}

type Store struct {
	Session *SessionManager
	Rooms   *RoomDirectory
	Users   *UserDirectory
}

func New(logger *log.Logger, gw gateway.API, creds credentials.Store, opts Options) *Store {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}

	return &Store{
		Session: newSessionManager(logger, gw, creds, opts.TokenTTL),
		Rooms:   newRoomDirectory(logger, gw, opts.ValidateVideoURLs, opts.EnforceTimeOrder),
		Users:   newUserDirectory(logger, gw),
	}
}

// NewDraft builds a room draft owned by the current session.
func (s *Store) NewDraft() (*types.RoomDraft, error) {
	ident, ok := s.Session.Identity()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return NewDraft(ident.UserID), nil
}

// CreateRoom sequences the session read and the room creation. The owner
// always comes from the session, never from the draft.
func (s *Store) CreateRoom(ctx context.Context, draft *types.RoomDraft) (types.Room, error) {
	ident, ok := s.Session.Identity()
	if !ok {
		return types.Room{}, ErrNotAuthenticated
	}
	return s.Rooms.Create(ctx, draft, ident.UserID)
}
