package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"notevault/internal/crypto"
	"notevault/internal/domain/note"
	"notevault/internal/domain/replication"
	"notevault/internal/domain/share"
	"notevault/internal/domain/user"
)

// SyncRepository implements replication.Store: full-state export for the
// outbound half of a sync cycle, and a last-write-wins merge for the
// inbound half.
type SyncRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSyncRepository(st *Storage, log *slog.Logger) *SyncRepository {
	return &SyncRepository{
		db:  st.DB(),
		log: log.With("component", "sync_repository"),
	}
}

func (r *SyncRepository) Export(ctx context.Context) (*replication.State, error) {
	state := &replication.State{Notes: make(map[string]replication.OwnerState)}

	users, err := r.exportUsers(ctx)
	if err != nil {
		return nil, err
	}
	state.Users = users

	if err := r.exportNotes(ctx, state); err != nil {
		return nil, err
	}

	shares, err := r.exportShares(ctx)
	if err != nil {
		return nil, err
	}
	state.Shares = shares

	return state, nil
}

func (r *SyncRepository) exportUsers(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, email, role, password_hash, created_at FROM users`)
	if err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SyncRepository) exportNotes(ctx context.Context, state *replication.State) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.owner_id, m.id, m.title, m.created_at, m.updated_at,
                c.ciphertext, c.iv, c.tag, c.salt
         FROM note_meta m
         JOIN note_content c ON c.owner_id = m.owner_id AND c.note_id = m.id`)
	if err != nil {
		return fmt.Errorf("export notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m note.Metadata
		var env crypto.Envelope
		if err := rows.Scan(&m.OwnerID, &m.ID, &m.Title, &m.CreatedAt, &m.UpdatedAt,
			&env.Ciphertext, &env.IV, &env.Tag, &env.Salt); err != nil {
			return fmt.Errorf("scan note: %w", err)
		}

		owner := state.Notes[m.OwnerID]
		if owner.Content == nil {
			owner.Content = make(map[string]crypto.Envelope)
		}
		owner.Metadata = append(owner.Metadata, m)
		owner.Content[m.ID] = env
		state.Notes[m.OwnerID] = owner
	}
	return rows.Err()
}

func (r *SyncRepository) exportShares(ctx context.Context) ([]share.Share, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+shareColumns+` FROM shares`)
	if err != nil {
		return nil, fmt.Errorf("export shares: %w", err)
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

// Merge applies the peer state in one transaction. Timestamps are
// compared in Go; a row is replaced only when the peer's timestamp is
// strictly newer.
func (r *SyncRepository) Merge(ctx context.Context, peer *replication.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge tx: %w", err)
	}
	defer tx.Rollback()

	merged := 0

	for _, u := range peer.Users {
		n, err := r.mergeUser(ctx, tx, u)
		if err != nil {
			return err
		}
		merged += n
	}

	for ownerID, owner := range peer.Notes {
		for _, m := range owner.Metadata {
			env, ok := owner.Content[m.ID]
			if !ok {
				// Metadata without matching ciphertext is never applied.
				r.log.Warn("peer note has no content blob, skipping",
					"owner_id", ownerID, "note_id", m.ID)
				continue
			}
			n, err := r.mergeNote(ctx, tx, m, env)
			if err != nil {
				return err
			}
			merged += n
		}
	}

	for _, sh := range peer.Shares {
		n, err := r.mergeShare(ctx, tx, sh)
		if err != nil {
			return err
		}
		merged += n
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge: %w", err)
	}

	if merged > 0 {
		r.log.Info("merged peer state", "applied", merged)
	}
	return nil
}

// mergeUser keys on id. CreatedAt stands in for a mutation timestamp;
// users are effectively immutable after registration, so insert-if-absent
// dominates in practice.
func (r *SyncRepository) mergeUser(ctx context.Context, tx *sql.Tx, u user.User) (int, error) {
	var localCreated time.Time
	err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM users WHERE id = ?`, u.ID).Scan(&localCreated)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, role, password_hash, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.Email, u.Role, u.PasswordHash, u.CreatedAt); err != nil {
			return 0, fmt.Errorf("merge insert user: %w", err)
		}
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("merge read user: %w", err)
	}

	if !u.CreatedAt.After(localCreated) {
		return 0, nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, role = ?, password_hash = ?, created_at = ?
         WHERE id = ?`,
		u.Username, u.Email, u.Role, u.PasswordHash, u.CreatedAt, u.ID); err != nil {
		return 0, fmt.Errorf("merge update user: %w", err)
	}
	return 1, nil
}

// mergeNote keys on (owner, note id) and replaces metadata and ciphertext
// together or not at all.
func (r *SyncRepository) mergeNote(ctx context.Context, tx *sql.Tx, m note.Metadata, env crypto.Envelope) (int, error) {
	var localUpdated time.Time
	err := tx.QueryRowContext(ctx,
		`SELECT updated_at FROM note_meta WHERE owner_id = ? AND id = ?`,
		m.OwnerID, m.ID).Scan(&localUpdated)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO note_meta (owner_id, id, title, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?)`,
			m.OwnerID, m.ID, m.Title, m.CreatedAt, m.UpdatedAt); err != nil {
			return 0, fmt.Errorf("merge insert metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO note_content (owner_id, note_id, ciphertext, iv, tag, salt)
             VALUES (?, ?, ?, ?, ?, ?)`,
			m.OwnerID, m.ID, env.Ciphertext, env.IV, env.Tag, env.Salt); err != nil {
			return 0, fmt.Errorf("merge insert content: %w", err)
		}
		return 1, nil

	case err != nil:
		return 0, fmt.Errorf("merge read note: %w", err)

	case !m.UpdatedAt.After(localUpdated):
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE note_meta SET title = ?, created_at = ?, updated_at = ?
         WHERE owner_id = ? AND id = ?`,
		m.Title, m.CreatedAt, m.UpdatedAt, m.OwnerID, m.ID); err != nil {
		return 0, fmt.Errorf("merge update metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO note_content (owner_id, note_id, ciphertext, iv, tag, salt)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (owner_id, note_id) DO UPDATE
            SET ciphertext = excluded.ciphertext, iv = excluded.iv,
                tag = excluded.tag, salt = excluded.salt`,
		m.OwnerID, m.ID, env.Ciphertext, env.IV, env.Tag, env.Salt); err != nil {
		return 0, fmt.Errorf("merge update content: %w", err)
	}
	return 1, nil
}

// mergeShare keys on id. When the peer assigned a different id to a grant
// for the same (note, grantee) pair, the older row loses so the unique
// constraint stays intact.
func (r *SyncRepository) mergeShare(ctx context.Context, tx *sql.Tx, sh share.Share) (int, error) {
	var localUpdated time.Time
	err := tx.QueryRowContext(ctx,
		`SELECT updated_at FROM shares WHERE id = ?`, sh.ID).Scan(&localUpdated)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM shares WHERE note_id = ? AND shared_with = ? AND updated_at < ?`,
			sh.NoteID, sh.SharedWith, sh.UpdatedAt); err != nil {
			return 0, fmt.Errorf("merge clear share pair: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO shares (id, note_id, owner_id, shared_with, permission, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sh.ID, sh.NoteID, sh.OwnerID, sh.SharedWith, sh.Permission, sh.CreatedAt, sh.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("merge insert share: %w", err)
		}
		n, _ := res.RowsAffected()
		return int(n), nil

	case err != nil:
		return 0, fmt.Errorf("merge read share: %w", err)

	case !sh.UpdatedAt.After(localUpdated):
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE shares SET note_id = ?, owner_id = ?, shared_with = ?, permission = ?, created_at = ?, updated_at = ?
         WHERE id = ?`,
		sh.NoteID, sh.OwnerID, sh.SharedWith, sh.Permission, sh.CreatedAt, sh.UpdatedAt, sh.ID); err != nil {
		return 0, fmt.Errorf("merge update share: %w", err)
	}
	return 1, nil
}
