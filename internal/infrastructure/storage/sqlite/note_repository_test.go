package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notevault/internal/crypto"
	"notevault/internal/domain/note"
)

func newNote(ownerID, noteID, title string) (*note.Metadata, *crypto.Envelope) {
	now := time.Now().UTC()
	meta := &note.Metadata{
		ID:        noteID,
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	env := &crypto.Envelope{Ciphertext: "aa", IV: "bb", Tag: "cc", Salt: "dd"}
	return meta, env
}

func TestNoteRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestStorage(t), testLogger())

	meta, env := newNote("u1", "n1", "First")
	require.NoError(t, repo.Create(ctx, meta, env))

	got, err := repo.GetMeta(ctx, "u1", "n1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "First", got.Title)

	content, err := repo.GetContent(ctx, "u1", "n1")
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, env.Ciphertext, content.Ciphertext)

	// Another owner never sees the note.
	other, err := repo.GetMeta(ctx, "u2", "n1")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestNoteRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestStorage(t), testLogger())

	meta, env := newNote("u1", "n1", "First")
	require.NoError(t, repo.Create(ctx, meta, env))

	meta.Title = "Renamed"
	meta.UpdatedAt = meta.UpdatedAt.Add(time.Second)
	newEnv := &crypto.Envelope{Ciphertext: "ee", IV: "ff", Tag: "11", Salt: "22"}
	require.NoError(t, repo.Update(ctx, meta, newEnv))

	got, err := repo.GetMeta(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	content, err := repo.GetContent(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, "ee", content.Ciphertext)

	t.Run("nil envelope keeps content", func(t *testing.T) {
		meta.Title = "Renamed Again"
		require.NoError(t, repo.Update(ctx, meta, nil))

		content, err := repo.GetContent(ctx, "u1", "n1")
		require.NoError(t, err)
		assert.Equal(t, "ee", content.Ciphertext)
	})

	t.Run("missing note", func(t *testing.T) {
		ghost, _ := newNote("u1", "ghost", "Ghost")
		assert.ErrorIs(t, repo.Update(ctx, ghost, nil), note.ErrNotFound)
	})
}

func TestNoteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)
	repo := NewNoteRepository(st, testLogger())
	locks := NewLockRepository(st, testLogger())

	meta, env := newNote("u1", "n1", "First")
	require.NoError(t, repo.Create(ctx, meta, env))
	_, err := locks.Acquire(ctx, "u1", "n1", "u1")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "u1", "n1"))

	got, err := repo.GetMeta(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Nil(t, got)

	content, err := repo.GetContent(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Nil(t, content)

	// The lock record went with the note.
	info, err := locks.Status(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Nil(t, info)

	assert.ErrorIs(t, repo.Delete(ctx, "u1", "n1"), note.ErrNotFound)
}

func TestNoteRepository_ListMeta(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestStorage(t), testLogger())

	for i, title := range []string{"Oldest", "Middle", "Newest"} {
		meta, env := newNote("u1", title, title)
		meta.UpdatedAt = meta.UpdatedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, meta, env))
	}

	metas, err := repo.ListMeta(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, metas, 3)
	assert.Equal(t, "Newest", metas[0].Title)
	assert.Equal(t, "Oldest", metas[2].Title)
}
