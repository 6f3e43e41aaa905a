package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

type SessionRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSessionRepository(st *Storage, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  st.DB(),
		log: log.With("component", "session_repository"),
	}
}

func (r *SessionRepository) Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at) VALUES (?, ?, ?)`,
		tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM sessions WHERE token_hash = ? AND expires_at > ?`,
		tokenHash, time.Now()).Scan(&userID)
	if err != nil {
		return "", fmt.Errorf("invalid session")
	}
	return userID, nil
}
