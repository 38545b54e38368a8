package session

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound indicates that no session is stored under the id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionLocked indicates that a concurrent turn already holds the session lock.
	ErrSessionLocked = errors.New("session is locked, try again later")
)

// Storage defines the persistence contract for sessions.
type Storage interface {
	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Save stores the session, refreshing its expiry.
	Save(ctx context.Context, s *Session) error
	// Delete removes the session; deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// List returns every stored session.
	List(ctx context.Context) ([]*Session, error)
}
