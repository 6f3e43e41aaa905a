package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/slog"

	"notevault/internal/domain/lock"
)

// LockRepository implements lock.Manager on a sqlite table. The single
// upsert in Acquire is the atomic create-if-absent: concurrent acquirers
// race on the primary key, and exactly one statement takes effect.
type LockRepository struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

func NewLockRepository(st *Storage, log *slog.Logger) *LockRepository {
	return &LockRepository{
		db:  st.DB(),
		log: log.With("component", "lock_repository"),
		now: time.Now,
	}
}

func (r *LockRepository) Acquire(ctx context.Context, ownerID, noteID, holder string) (lock.Info, error) {
	now := r.now().UTC()
	cutoff := now.Add(-lock.TTL)

	// Stale takeover is logged before the atomic step; the read is
	// advisory only.
	if prev, err := r.read(ctx, ownerID, noteID); err == nil && prev != nil &&
		prev.LockedBy != holder && prev.Expired(now) {
		r.log.Warn("taking over stale lock",
			"owner_id", ownerID, "note_id", noteID,
			"stale_holder", prev.LockedBy, "locked_at", prev.LockedAt, "new_holder", holder)
	}

	// Insert wins an empty slot; the conflict branch only fires for the
	// current holder (refresh) or an expired lock (takeover).
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO locks (owner_id, note_id, locked_by, locked_at, pid)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (owner_id, note_id) DO UPDATE
            SET locked_by = excluded.locked_by,
                locked_at = excluded.locked_at,
                pid       = excluded.pid
          WHERE locks.locked_by = excluded.locked_by
             OR locks.locked_at <= ?`,
		ownerID, noteID, holder, now, os.Getpid(), cutoff)
	if err != nil {
		return lock.Info{}, fmt.Errorf("acquire lock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return lock.Info{}, fmt.Errorf("acquire lock: %w", err)
	}
	if affected == 0 {
		held, err := r.read(ctx, ownerID, noteID)
		if err != nil {
			return lock.Info{}, err
		}
		if held == nil {
			// Holder released between the upsert and this read; the
			// caller simply retries via its own flow.
			return lock.Info{}, &lock.ConflictError{Holder: "unknown"}
		}
		return lock.Info{}, &lock.ConflictError{Holder: held.LockedBy, LockedAt: held.LockedAt}
	}

	return lock.Info{LockedBy: holder, LockedAt: now, PID: os.Getpid()}, nil
}

func (r *LockRepository) Release(ctx context.Context, ownerID, noteID string) error {
	// Removing a nonexistent lock is not an error.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM locks WHERE owner_id = ? AND note_id = ?`, ownerID, noteID); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// Status returns the current lock or nil. Reading an expired lock
// removes it.
func (r *LockRepository) Status(ctx context.Context, ownerID, noteID string) (*lock.Info, error) {
	info, err := r.read(ctx, ownerID, noteID)
	if err != nil || info == nil {
		return nil, err
	}

	if info.Expired(r.now().UTC()) {
		// Guard on locked_at so a fresher lock taken meanwhile survives.
		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM locks WHERE owner_id = ? AND note_id = ? AND locked_at = ?`,
			ownerID, noteID, info.LockedAt); err != nil {
			return nil, fmt.Errorf("expire lock: %w", err)
		}
		r.log.Info("expired lock released",
			"owner_id", ownerID, "note_id", noteID, "holder", info.LockedBy)
		return nil, nil
	}

	return info, nil
}

func (r *LockRepository) read(ctx context.Context, ownerID, noteID string) (*lock.Info, error) {
	var info lock.Info
	err := r.db.QueryRowContext(ctx,
		`SELECT locked_by, locked_at, pid FROM locks WHERE owner_id = ? AND note_id = ?`,
		ownerID, noteID).Scan(&info.LockedBy, &info.LockedAt, &info.PID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lock: %w", err)
	}
	return &info, nil
}
