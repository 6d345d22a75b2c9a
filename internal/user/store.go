package user

import (
	"context"
	"time"
)

// Store persists user profiles keyed by id.
type Store interface {
	// Get returns the user's profile, or [ErrNotFound].
	Get(ctx context.Context, id string) (Config, error)

	// Upsert creates or replaces a user profile.
	Upsert(ctx context.Context, c Config) error

	// Touch records activity for the user. Touching an unknown user is not
	// an error.
	Touch(ctx context.Context, id string, at time.Time) error

	// List returns all known users.
	List(ctx context.Context) ([]Config, error)
}
