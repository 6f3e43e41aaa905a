package lock

import "context"

// Manager serializes note edits across processes. Acquire is atomic
// create-if-absent: at most one holder per (owner, note) at a time.
// Expired locks are reclaimed lazily on the next Acquire.
//
// Acquire by the current holder refreshes the lock instead of failing.
// Release is idempotent and succeeds when no lock exists.
type Manager interface {
	Acquire(ctx context.Context, ownerID, noteID, holder string) (Info, error)
	Release(ctx context.Context, ownerID, noteID string) error
	Status(ctx context.Context, ownerID, noteID string) (*Info, error)
}
