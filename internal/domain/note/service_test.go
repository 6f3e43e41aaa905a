package note

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"notevault/internal/crypto"
	"notevault/internal/domain/lock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, meta *Metadata, env *crypto.Envelope) error {
	args := m.Called(ctx, meta, env)
	return args.Error(0)
}

func (m *mockRepo) GetMeta(ctx context.Context, ownerID, noteID string) (*Metadata, error) {
	args := m.Called(ctx, ownerID, noteID)
	if meta := args.Get(0); meta != nil {
		return meta.(*Metadata), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) ListMeta(ctx context.Context, ownerID string) ([]Metadata, error) {
	args := m.Called(ctx, ownerID)
	if metas := args.Get(0); metas != nil {
		return metas.([]Metadata), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetContent(ctx context.Context, ownerID, noteID string) (*crypto.Envelope, error) {
	args := m.Called(ctx, ownerID, noteID)
	if env := args.Get(0); env != nil {
		return env.(*crypto.Envelope), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, meta *Metadata, env *crypto.Envelope) error {
	args := m.Called(ctx, meta, env)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, ownerID, noteID string) error {
	args := m.Called(ctx, ownerID, noteID)
	return args.Error(0)
}

type mockLocks struct {
	mock.Mock
}

func (m *mockLocks) Acquire(ctx context.Context, ownerID, noteID, holder string) (lock.Info, error) {
	args := m.Called(ctx, ownerID, noteID, holder)
	return args.Get(0).(lock.Info), args.Error(1)
}

func (m *mockLocks) Release(ctx context.Context, ownerID, noteID string) error {
	args := m.Called(ctx, ownerID, noteID)
	return args.Error(0)
}

func (m *mockLocks) Status(ctx context.Context, ownerID, noteID string) (*lock.Info, error) {
	args := m.Called(ctx, ownerID, noteID)
	if info := args.Get(0); info != nil {
		return info.(*lock.Info), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(repo *mockRepo, locks *mockLocks) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, locks, crypto.NewCipher(), log)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("encrypts and persists", func(t *testing.T) {
		repo := new(mockRepo)
		var stored crypto.Envelope
		repo.On("Create", ctx, mock.AnythingOfType("*note.Metadata"), mock.AnythingOfType("*crypto.Envelope")).
			Run(func(args mock.Arguments) {
				stored = *args.Get(2).(*crypto.Envelope)
			}).Return(nil)

		svc := newTestService(repo, new(mockLocks))
		meta, err := svc.Create(ctx, "owner1", "  My Title  ", "hello", "alice")
		require.NoError(t, err)
		assert.NotEmpty(t, meta.ID)
		assert.Equal(t, "My Title", meta.Title)

		// Content must be recoverable only with the owner key.
		plain, err := crypto.NewCipher().Decrypt(stored, "alice")
		require.NoError(t, err)
		assert.Equal(t, "hello", plain)
		_, err = crypto.NewCipher().Decrypt(stored, "mallory")
		assert.ErrorIs(t, err, crypto.ErrDecrypt)
	})

	t.Run("rejects bad title", func(t *testing.T) {
		svc := newTestService(new(mockRepo), new(mockLocks))
		_, err := svc.Create(ctx, "owner1", "   ", "hello", "alice")
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.Create(ctx, "owner1", strings.Repeat("x", 201), "hello", "alice")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects oversize content", func(t *testing.T) {
		svc := newTestService(new(mockRepo), new(mockLocks))
		_, err := svc.Create(ctx, "owner1", "Title", strings.Repeat("a", maxContentLen+1), "alice")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_Read(t *testing.T) {
	ctx := context.Background()
	meta := &Metadata{ID: "n1", OwnerID: "owner1", Title: "Test"}

	t.Run("round trip", func(t *testing.T) {
		env, err := crypto.NewCipher().Encrypt("hello", "alice")
		require.NoError(t, err)

		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(meta, nil)
		repo.On("GetContent", ctx, "owner1", "n1").Return(&env, nil)
		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(nil, nil)

		svc := newTestService(repo, locks)
		n, err := svc.Read(ctx, "owner1", "n1", "alice")
		require.NoError(t, err)
		assert.Equal(t, "hello", n.Content)
		assert.Equal(t, "Test", n.Title)
	})

	t.Run("wrong key", func(t *testing.T) {
		env, err := crypto.NewCipher().Encrypt("hello", "alice")
		require.NoError(t, err)

		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(meta, nil)
		repo.On("GetContent", ctx, "owner1", "n1").Return(&env, nil)
		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(nil, nil)

		svc := newTestService(repo, locks)
		_, err = svc.Read(ctx, "owner1", "n1", "mallory")
		assert.ErrorIs(t, err, crypto.ErrDecrypt)
	})

	t.Run("missing note", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "missing").Return(nil, nil)

		svc := newTestService(repo, new(mockLocks))
		_, err := svc.Read(ctx, "owner1", "missing", "alice")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	newTitle := "Renamed"
	newContent := "brand new"

	t.Run("locked by another holder", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(&Metadata{ID: "n1", OwnerID: "owner1", Title: "Test"}, nil)
		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(&lock.Info{LockedBy: "alice", LockedAt: time.Now()}, nil)
		locks.On("Acquire", ctx, "owner1", "n1", "bob").
			Return(lock.Info{}, &lock.ConflictError{Holder: "alice", LockedAt: time.Now()})

		svc := newTestService(repo, locks)
		_, err := svc.Update(ctx, "owner1", "n1", &newTitle, nil, "alice-key", "bob")

		var conflict *lock.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "alice", conflict.Holder)
	})

	t.Run("acquires and keeps lock", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(&Metadata{ID: "n1", OwnerID: "owner1", Title: "Test"}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*note.Metadata"), mock.AnythingOfType("*crypto.Envelope")).Return(nil)

		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(nil, nil).Once()
		locks.On("Acquire", ctx, "owner1", "n1", "alice").Return(lock.Info{LockedBy: "alice", LockedAt: time.Now()}, nil)
		// Lock survives the save and shows up in the returned metadata.
		locks.On("Status", ctx, "owner1", "n1").Return(&lock.Info{LockedBy: "alice", LockedAt: time.Now()}, nil)

		svc := newTestService(repo, locks)
		meta, err := svc.Update(ctx, "owner1", "n1", &newTitle, &newContent, "alice-key", "alice")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", meta.Title)
		assert.True(t, meta.Locked)
		assert.Equal(t, "alice", meta.LockedBy)
		locks.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("releases freshly taken lock on save failure", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(&Metadata{ID: "n1", OwnerID: "owner1", Title: "Test"}, nil)
		repo.On("Update", ctx, mock.Anything, mock.Anything).Return(errors.New("disk full"))

		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(nil, nil)
		locks.On("Acquire", ctx, "owner1", "n1", "alice").Return(lock.Info{LockedBy: "alice", LockedAt: time.Now()}, nil)
		locks.On("Release", ctx, "owner1", "n1").Return(nil)

		svc := newTestService(repo, locks)
		_, err := svc.Update(ctx, "owner1", "n1", &newTitle, nil, "alice-key", "alice")
		assert.Error(t, err)
		locks.AssertCalled(t, "Release", ctx, "owner1", "n1")
	})

	t.Run("keeps pre-existing lock on save failure", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(&Metadata{ID: "n1", OwnerID: "owner1", Title: "Test"}, nil)
		repo.On("Update", ctx, mock.Anything, mock.Anything).Return(errors.New("disk full"))

		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(&lock.Info{LockedBy: "alice", LockedAt: time.Now()}, nil)
		locks.On("Acquire", ctx, "owner1", "n1", "alice").Return(lock.Info{LockedBy: "alice", LockedAt: time.Now()}, nil)

		svc := newTestService(repo, locks)
		_, err := svc.Update(ctx, "owner1", "n1", &newTitle, nil, "alice-key", "alice")
		assert.Error(t, err)
		locks.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid title releases taken lock", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(&Metadata{ID: "n1", OwnerID: "owner1", Title: "Test"}, nil)

		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(nil, nil)
		locks.On("Acquire", ctx, "owner1", "n1", "alice").Return(lock.Info{LockedBy: "alice", LockedAt: time.Now()}, nil)
		locks.On("Release", ctx, "owner1", "n1").Return(nil)

		bad := "   "
		svc := newTestService(repo, locks)
		_, err := svc.Update(ctx, "owner1", "n1", &bad, nil, "alice-key", "alice")
		assert.ErrorIs(t, err, ErrInvalidInput)
		locks.AssertCalled(t, "Release", ctx, "owner1", "n1")
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("locked by another user", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(&Metadata{ID: "n1", OwnerID: "owner1"}, nil)
		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(&lock.Info{LockedBy: "bob", LockedAt: time.Now()}, nil)

		svc := newTestService(repo, locks)
		err := svc.Delete(ctx, "owner1", "n1")

		var conflict *lock.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "bob", conflict.Holder)
	})

	t.Run("owner deletes own locked note", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(&Metadata{ID: "n1", OwnerID: "owner1"}, nil)
		repo.On("Delete", ctx, "owner1", "n1").Return(nil)
		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(&lock.Info{LockedBy: "owner1", LockedAt: time.Now()}, nil)

		svc := newTestService(repo, locks)
		assert.NoError(t, svc.Delete(ctx, "owner1", "n1"))
		repo.AssertExpectations(t)
	})
}

func TestService_LockUnlock(t *testing.T) {
	ctx := context.Background()
	meta := &Metadata{ID: "n1", OwnerID: "owner1", Title: "Test"}

	t.Run("lock sets derived fields", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(meta, nil)
		locks := new(mockLocks)
		lockedAt := time.Now()
		locks.On("Acquire", ctx, "owner1", "n1", "alice").Return(lock.Info{LockedBy: "alice", LockedAt: lockedAt}, nil)
		locks.On("Status", ctx, "owner1", "n1").Return(&lock.Info{LockedBy: "alice", LockedAt: lockedAt}, nil)

		svc := newTestService(repo, locks)
		got, err := svc.Lock(ctx, "owner1", "n1", "alice")
		require.NoError(t, err)
		assert.True(t, got.Locked)
		assert.Equal(t, "alice", got.LockedBy)
	})

	t.Run("unlock is idempotent", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(meta, nil)
		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(nil, nil)
		locks.On("Release", ctx, "owner1", "n1").Return(nil)

		svc := newTestService(repo, locks)
		got, err := svc.Unlock(ctx, "owner1", "n1", "alice")
		require.NoError(t, err)
		assert.False(t, got.Locked)
	})

	t.Run("unlock by holder releases", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(meta, nil)
		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(&lock.Info{LockedBy: "alice", LockedAt: time.Now()}, nil)
		locks.On("Release", ctx, "owner1", "n1").Return(nil)

		svc := newTestService(repo, locks)
		got, err := svc.Unlock(ctx, "owner1", "n1", "alice")
		require.NoError(t, err)
		assert.False(t, got.Locked)
	})

	t.Run("unlock by another user refused", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetMeta", ctx, "owner1", "n1").Return(meta, nil)
		locks := new(mockLocks)
		locks.On("Status", ctx, "owner1", "n1").Return(&lock.Info{LockedBy: "alice", LockedAt: time.Now()}, nil)

		svc := newTestService(repo, locks)
		_, err := svc.Unlock(ctx, "owner1", "n1", "bob")
		var conflict *lock.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "alice", conflict.Holder)
		locks.AssertNotCalled(t, "Release", ctx, "owner1", "n1")
	})
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"strips control chars", "he\x00llo\x1b", "hello"},
		{"keeps unicode", "заметка 📝", "заметка 📝"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.in))
		})
	}
}
