package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"notevault/internal/domain/share"
)

type ShareRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewShareRepository(st *Storage, log *slog.Logger) *ShareRepository {
	return &ShareRepository{
		db:  st.DB(),
		log: log.With("component", "share_repository"),
	}
}

const shareColumns = `id, note_id, owner_id, shared_with, permission, created_at, updated_at`

// Upsert enforces the single-share-per-(note, grantee) rule at the
// storage layer: a conflicting insert updates the existing row's
// permission in place and returns the surviving row.
func (r *ShareRepository) Upsert(ctx context.Context, sh *share.Share) (*share.Share, error) {
	var out share.Share
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO shares (id, note_id, owner_id, shared_with, permission, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (note_id, shared_with) DO UPDATE
            SET permission = excluded.permission,
                updated_at = excluded.updated_at
         RETURNING `+shareColumns,
		sh.ID, sh.NoteID, sh.OwnerID, sh.SharedWith, sh.Permission, sh.CreatedAt, sh.UpdatedAt).
		Scan(&out.ID, &out.NoteID, &out.OwnerID, &out.SharedWith, &out.Permission, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert share: %w", err)
	}
	return &out, nil
}

func (r *ShareRepository) GetByID(ctx context.Context, id string) (*share.Share, error) {
	return r.findOne(ctx, `SELECT `+shareColumns+` FROM shares WHERE id = ?`, id)
}

func (r *ShareRepository) GetByNoteAndUser(ctx context.Context, noteID, userID string) (*share.Share, error) {
	return r.findOne(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE note_id = ? AND shared_with = ?`, noteID, userID)
}

func (r *ShareRepository) findOne(ctx context.Context, query string, args ...any) (*share.Share, error) {
	var sh share.Share
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&sh.ID, &sh.NoteID, &sh.OwnerID, &sh.SharedWith, &sh.Permission, &sh.CreatedAt, &sh.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, share.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find share: %w", err)
	}
	return &sh, nil
}

func (r *ShareRepository) ListBySharedWith(ctx context.Context, userID string) ([]share.Share, error) {
	return r.list(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE shared_with = ? ORDER BY updated_at DESC`, userID)
}

func (r *ShareRepository) ListByOwner(ctx context.Context, ownerID string) ([]share.Share, error) {
	return r.list(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID)
}

func (r *ShareRepository) list(ctx context.Context, query string, arg any) ([]share.Share, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var shares []share.Share
	for rows.Next() {
		var sh share.Share
		if err := rows.Scan(&sh.ID, &sh.NoteID, &sh.OwnerID, &sh.SharedWith, &sh.Permission, &sh.CreatedAt, &sh.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, sh)
	}
	return shares, rows.Err()
}

func (r *ShareRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return share.ErrNotFound
	}
	return nil
}
