package note

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"notevault/internal/crypto"
	"notevault/internal/domain/lock"
)

// Encrypter seals and opens note content under owner key material.
type Encrypter interface {
	Encrypt(plaintext, keyMaterial string) (crypto.Envelope, error)
	Decrypt(env crypto.Envelope, keyMaterial string) (string, error)
}

type Servicer interface {
	Create(ctx context.Context, ownerID, title, content, ownerKey string) (*Metadata, error)
	Read(ctx context.Context, ownerID, noteID, ownerKey string) (*Note, error)
	Update(ctx context.Context, ownerID, noteID string, title, content *string, ownerKey, actingUserID string) (*Metadata, error)
	Delete(ctx context.Context, ownerID, noteID string) error
	List(ctx context.Context, ownerID string) ([]Metadata, error)
	Exists(ctx context.Context, ownerID, noteID string) (bool, error)
	GetMetadata(ctx context.Context, ownerID, noteID string) (*Metadata, error)
	Lock(ctx context.Context, ownerID, noteID, holderID string) (*Metadata, error)
	Unlock(ctx context.Context, ownerID, noteID, actingUserID string) (*Metadata, error)
}

type Service struct {
	repo  Repository
	locks lock.Manager
	enc   Encrypter
	log   *slog.Logger
}

func NewService(repo Repository, locks lock.Manager, enc Encrypter, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		locks: locks,
		enc:   enc,
		log:   log.With("component", "note_service"),
	}
}

func (s *Service) Create(ctx context.Context, ownerID, title, content, ownerKey string) (*Metadata, error) {
	title = SanitizeTitle(title)
	if err := ValidateTitle(title); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := ValidateContent(content); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	env, err := s.enc.Encrypt(content, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt content: %w", err)
	}

	now := time.Now().UTC()
	meta := &Metadata{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, meta, &env); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.log.Info("note created", "owner_id", ownerID, "note_id", meta.ID)
	return meta, nil
}

func (s *Service) Read(ctx context.Context, ownerID, noteID, ownerKey string) (*Note, error) {
	meta, err := s.GetMetadata(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrNotFound
	}

	env, err := s.repo.GetContent(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, ErrNotFound
	}

	plaintext, err := s.enc.Decrypt(*env, ownerKey)
	if err != nil {
		return nil, err
	}

	return &Note{Metadata: *meta, Content: plaintext}, nil
}

// Update saves changes under the edit lock. A lock held by someone other
// than actingUserID fails the call; when actingUserID holds no lock yet,
// one is taken and kept until an explicit unlock. A lock taken here is
// released again if the save itself fails.
func (s *Service) Update(ctx context.Context, ownerID, noteID string, title, content *string, ownerKey, actingUserID string) (*Metadata, error) {
	meta, err := s.repo.GetMeta(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrNotFound
	}

	held, err := s.locks.Status(ctx, ownerID, noteID)
	if err != nil {
		return nil, fmt.Errorf("lock status: %w", err)
	}
	if _, err := s.locks.Acquire(ctx, ownerID, noteID, actingUserID); err != nil {
		return nil, err
	}
	acquiredHere := held == nil || held.LockedBy != actingUserID

	fail := func(err error) (*Metadata, error) {
		if acquiredHere {
			if relErr := s.locks.Release(ctx, ownerID, noteID); relErr != nil {
				s.log.Error("compensating lock release failed", "owner_id", ownerID, "note_id", noteID, "error", relErr)
			}
		}
		return nil, err
	}

	if title != nil {
		cleaned := SanitizeTitle(*title)
		if err := ValidateTitle(cleaned); err != nil {
			return fail(fmt.Errorf("%w: %s", ErrInvalidInput, err))
		}
		meta.Title = cleaned
	}

	var env *crypto.Envelope
	if content != nil {
		if err := ValidateContent(*content); err != nil {
			return fail(fmt.Errorf("%w: %s", ErrInvalidInput, err))
		}
		sealed, err := s.enc.Encrypt(*content, ownerKey)
		if err != nil {
			return fail(fmt.Errorf("encrypt content: %w", err))
		}
		env = &sealed
	}

	meta.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, meta, env); err != nil {
		return fail(fmt.Errorf("update note: %w", err))
	}

	s.log.Info("note updated", "owner_id", ownerID, "note_id", noteID, "acting_user", actingUserID)
	return s.withLockState(ctx, meta)
}

func (s *Service) Delete(ctx context.Context, ownerID, noteID string) error {
	meta, err := s.repo.GetMeta(ctx, ownerID, noteID)
	if err != nil {
		return err
	}
	if meta == nil {
		return ErrNotFound
	}

	held, err := s.locks.Status(ctx, ownerID, noteID)
	if err != nil {
		return fmt.Errorf("lock status: %w", err)
	}
	if held != nil && held.LockedBy != ownerID {
		return &lock.ConflictError{Holder: held.LockedBy, LockedAt: held.LockedAt}
	}

	if err := s.repo.Delete(ctx, ownerID, noteID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	s.log.Info("note deleted", "owner_id", ownerID, "note_id", noteID)
	return nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Metadata, error) {
	metas, err := s.repo.ListMeta(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range metas {
		if _, err := s.withLockState(ctx, &metas[i]); err != nil {
			return nil, err
		}
	}
	return metas, nil
}

func (s *Service) Exists(ctx context.Context, ownerID, noteID string) (bool, error) {
	meta, err := s.repo.GetMeta(ctx, ownerID, noteID)
	if err != nil {
		return false, err
	}
	return meta != nil, nil
}

func (s *Service) GetMetadata(ctx context.Context, ownerID, noteID string) (*Metadata, error) {
	meta, err := s.repo.GetMeta(ctx, ownerID, noteID)
	if err != nil || meta == nil {
		return nil, err
	}
	return s.withLockState(ctx, meta)
}

func (s *Service) Lock(ctx context.Context, ownerID, noteID, holderID string) (*Metadata, error) {
	meta, err := s.repo.GetMeta(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrNotFound
	}

	if _, err := s.locks.Acquire(ctx, ownerID, noteID, holderID); err != nil {
		var conflict *lock.ConflictError
		if errors.As(err, &conflict) {
			s.log.Warn("lock conflict", "owner_id", ownerID, "note_id", noteID, "requested_by", holderID, "held_by", conflict.Holder)
		}
		return nil, err
	}

	return s.withLockState(ctx, meta)
}

// Unlock releases the lock on a note. Only the current holder may release
// a live lock; an expired or absent lock unlocks for anyone.
func (s *Service) Unlock(ctx context.Context, ownerID, noteID, actingUserID string) (*Metadata, error) {
	meta, err := s.repo.GetMeta(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrNotFound
	}

	held, err := s.locks.Status(ctx, ownerID, noteID)
	if err != nil {
		return nil, fmt.Errorf("lock status: %w", err)
	}
	if held != nil && held.LockedBy != actingUserID {
		s.log.Warn("unlock refused", "owner_id", ownerID, "note_id", noteID, "requested_by", actingUserID, "held_by", held.LockedBy)
		return nil, &lock.ConflictError{Holder: held.LockedBy, LockedAt: held.LockedAt}
	}

	if err := s.locks.Release(ctx, ownerID, noteID); err != nil {
		return nil, fmt.Errorf("release lock: %w", err)
	}

	meta.Locked = false
	meta.LockedBy = ""
	meta.LockedAt = nil
	return meta, nil
}

// withLockState fills the derived lock fields from the lock store.
func (s *Service) withLockState(ctx context.Context, meta *Metadata) (*Metadata, error) {
	info, err := s.locks.Status(ctx, meta.OwnerID, meta.ID)
	if err != nil {
		return nil, fmt.Errorf("lock status: %w", err)
	}
	if info == nil {
		meta.Locked = false
		meta.LockedBy = ""
		meta.LockedAt = nil
		return meta, nil
	}
	meta.Locked = true
	meta.LockedBy = info.LockedBy
	lockedAt := info.LockedAt
	meta.LockedAt = &lockedAt
	return meta, nil
}
