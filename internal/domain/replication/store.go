package replication

import "context"

// Store exports and imports full node state. Merge applies last-write-wins
// per collection: users by CreatedAt, notes by (owner, note id) on
// UpdatedAt with metadata and ciphertext replaced together, shares by id
// on UpdatedAt. Entries absent locally are inserted; a strictly newer peer
// timestamp overwrites, an older or equal one is ignored.
type Store interface {
	Export(ctx context.Context) (*State, error)
	Merge(ctx context.Context, peer *State) error
}
