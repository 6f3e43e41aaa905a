package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notevault/internal/domain/share"
)

func newShare(id, noteID, sharedWith string, perm share.Permission) *share.Share {
	now := time.Now().UTC()
	return &share.Share{
		ID:         id,
		NoteID:     noteID,
		OwnerID:    "u1",
		SharedWith: sharedWith,
		Permission: perm,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestShareRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepository(newTestStorage(t), testLogger())

	first, err := repo.Upsert(ctx, newShare("s1", "n1", "u2", share.PermissionRead))
	require.NoError(t, err)
	assert.Equal(t, "s1", first.ID)

	// Second grant for the same pair keeps one row; the new permission wins.
	second, err := repo.Upsert(ctx, newShare("s2", "n1", "u2", share.PermissionWrite))
	require.NoError(t, err)
	assert.Equal(t, "s1", second.ID, "existing row identity survives the upsert")
	assert.Equal(t, share.PermissionWrite, second.Permission)

	list, err := repo.ListBySharedWith(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, share.PermissionWrite, list[0].Permission)
}

func TestShareRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepository(newTestStorage(t), testLogger())

	_, err := repo.Upsert(ctx, newShare("s1", "n1", "u2", share.PermissionRead))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, newShare("s2", "n2", "u3", share.PermissionWrite))
	require.NoError(t, err)

	sh, err := repo.GetByNoteAndUser(ctx, "n1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "s1", sh.ID)

	_, err = repo.GetByNoteAndUser(ctx, "n1", "u3")
	assert.ErrorIs(t, err, share.ErrNotFound)

	byOwner, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	byGrantee, err := repo.ListBySharedWith(ctx, "u3")
	require.NoError(t, err)
	require.Len(t, byGrantee, 1)
	assert.Equal(t, "s2", byGrantee[0].ID)
}

func TestShareRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepository(newTestStorage(t), testLogger())

	_, err := repo.Upsert(ctx, newShare("s1", "n1", "u2", share.PermissionRead))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.ErrorIs(t, repo.Delete(ctx, "s1"), share.ErrNotFound)

	_, err = repo.GetByID(ctx, "s1")
	assert.ErrorIs(t, err, share.ErrNotFound)
}
