// Package store defines the session persistence abstraction for meli-lister.
// The session layer depends on the SessionStore interface, never on concrete
// implementations, so handlers can be tested without a running database.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// SessionStore persists browser session values keyed by session id.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	// Load returns the stored values, or ErrNotFound.
	Load(ctx context.Context, id string) (map[string]string, error)
	// Save replaces all values of the session in a single write and extends
	// its expiry to now+ttl.
	Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// PurgeExpired removes expired sessions and returns how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
