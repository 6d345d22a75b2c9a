package followup

import "context"

// Store persists pending follow-up records keyed by user id.
//
// Implementations must treat records older than their configured TTL as
// absent. Callers own the read-modify-write cycle: the turn processor
// serialises access per user, so Store implementations only need to be safe
// for concurrent use across different users.
type Store interface {
	// Get returns the user's pending follow-up. The boolean reports whether
	// an unexpired record exists.
	Get(ctx context.Context, userID string) (Pending, bool, error)

	// Set creates or replaces the user's pending follow-up.
	Set(ctx context.Context, userID string, p Pending) error

	// Delete removes the user's pending follow-up. Deleting a missing
	// record is not an error.
	Delete(ctx context.Context, userID string) error

	// Purge removes all expired records and reports how many were removed.
	Purge(ctx context.Context) (int, error)
}
