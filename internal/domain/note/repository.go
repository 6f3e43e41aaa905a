package note

import (
	"context"

	"notevault/internal/crypto"
)

// Repository persists note metadata and encrypted content. The two are
// separate records sharing the note id; Create, Update and Delete must
// commit both sides in one transaction.
type Repository interface {
	Create(ctx context.Context, meta *Metadata, env *crypto.Envelope) error
	GetMeta(ctx context.Context, ownerID, noteID string) (*Metadata, error)
	ListMeta(ctx context.Context, ownerID string) ([]Metadata, error)
	GetContent(ctx context.Context, ownerID, noteID string) (*crypto.Envelope, error)

	// Update replaces the metadata row and, when env is non-nil, the
	// content row in the same transaction.
	Update(ctx context.Context, meta *Metadata, env *crypto.Envelope) error

	// Delete removes metadata, content and any lock record for the note.
	Delete(ctx context.Context, ownerID, noteID string) error
}
