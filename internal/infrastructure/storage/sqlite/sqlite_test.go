package sqlite

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"notevault/internal/domain/user"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := New(dbPath, "../../../../migrations")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, st *Storage, id, username string) {
	t.Helper()
	repo := NewUserRepository(st, testLogger())
	err := repo.Create(context.Background(), &user.User{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		Role:      user.RoleUser,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}
