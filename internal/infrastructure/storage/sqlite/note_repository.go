package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"notevault/internal/crypto"
	"notevault/internal/domain/note"
)

type NoteRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewNoteRepository(st *Storage, log *slog.Logger) *NoteRepository {
	return &NoteRepository{
		db:  st.DB(),
		log: log.With("component", "note_repository"),
	}
}

// Create persists metadata and ciphertext in one transaction: a note is
// never visible without its content.
func (r *NoteRepository) Create(ctx context.Context, meta *note.Metadata, env *crypto.Envelope) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO note_meta (owner_id, id, title, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		meta.OwnerID, meta.ID, meta.Title, meta.CreatedAt, meta.UpdatedAt); err != nil {
		return fmt.Errorf("insert metadata: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO note_content (owner_id, note_id, ciphertext, iv, tag, salt)
         VALUES (?, ?, ?, ?, ?, ?)`,
		meta.OwnerID, meta.ID, env.Ciphertext, env.IV, env.Tag, env.Salt); err != nil {
		return fmt.Errorf("insert content: %w", err)
	}

	return tx.Commit()
}

func (r *NoteRepository) GetMeta(ctx context.Context, ownerID, noteID string) (*note.Metadata, error) {
	var m note.Metadata
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id, id, title, created_at, updated_at
         FROM note_meta WHERE owner_id = ? AND id = ?`,
		ownerID, noteID).Scan(&m.OwnerID, &m.ID, &m.Title, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	return &m, nil
}

func (r *NoteRepository) ListMeta(ctx context.Context, ownerID string) ([]note.Metadata, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT owner_id, id, title, created_at, updated_at
         FROM note_meta WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list metadata: %w", err)
	}
	defer rows.Close()

	var metas []note.Metadata
	for rows.Next() {
		var m note.Metadata
		if err := rows.Scan(&m.OwnerID, &m.ID, &m.Title, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func (r *NoteRepository) GetContent(ctx context.Context, ownerID, noteID string) (*crypto.Envelope, error) {
	var env crypto.Envelope
	err := r.db.QueryRowContext(ctx,
		`SELECT ciphertext, iv, tag, salt
         FROM note_content WHERE owner_id = ? AND note_id = ?`,
		ownerID, noteID).Scan(&env.Ciphertext, &env.IV, &env.Tag, &env.Salt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &env, nil
}

func (r *NoteRepository) Update(ctx context.Context, meta *note.Metadata, env *crypto.Envelope) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE note_meta SET title = ?, updated_at = ? WHERE owner_id = ? AND id = ?`,
		meta.Title, meta.UpdatedAt, meta.OwnerID, meta.ID)
	if err != nil {
		return fmt.Errorf("update metadata: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return note.ErrNotFound
	}

	if env != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE note_content SET ciphertext = ?, iv = ?, tag = ?, salt = ?
             WHERE owner_id = ? AND note_id = ?`,
			env.Ciphertext, env.IV, env.Tag, env.Salt, meta.OwnerID, meta.ID); err != nil {
			return fmt.Errorf("update content: %w", err)
		}
	}

	return tx.Commit()
}

func (r *NoteRepository) Delete(ctx context.Context, ownerID, noteID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM locks WHERE owner_id = ? AND note_id = ?`, ownerID, noteID); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM note_content WHERE owner_id = ? AND note_id = ?`, ownerID, noteID); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM note_meta WHERE owner_id = ? AND id = ?`, ownerID, noteID)
	if err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return note.ErrNotFound
	}

	return tx.Commit()
}
