package store

import (
	"context"
	"errors"
	"time"

	"github.com/chommo/shopfront/internal/shopfront/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. Only sessions are persisted locally; everything else the
// storefront shows comes from the platform.
type Store interface {
	Sessions() Sessions

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Sessions interface {
	// CreateSession inserts a new session (id is provided by app via ULID).
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns a session by id.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// SaveSession overwrites the mutable fields of an existing session and
	// bumps updated_at. Sessions are small; writes are wholesale.
	SaveSession(ctx context.Context, s domain.Session) error

	// DeleteSession removes a session.
	DeleteSession(ctx context.Context, id string) error

	// DeleteIdleSessions removes sessions not touched since the cutoff.
	// Housekeeping; returns the number of rows removed.
	DeleteIdleSessions(ctx context.Context, cutoff time.Time) (int64, error)
}
