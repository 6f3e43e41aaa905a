package share

import "context"

type Repository interface {
	// Upsert inserts the share or, when one already exists for
	// (NoteID, SharedWith), updates its permission and UpdatedAt in place.
	// The returned share carries the surviving ID and timestamps.
	Upsert(ctx context.Context, sh *Share) (*Share, error)

	GetByID(ctx context.Context, id string) (*Share, error)
	GetByNoteAndUser(ctx context.Context, noteID, userID string) (*Share, error)
	ListBySharedWith(ctx context.Context, userID string) ([]Share, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Share, error)
	Delete(ctx context.Context, id string) error
}
