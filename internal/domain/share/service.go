package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"notevault/internal/domain/note"
	"notevault/internal/domain/user"
)

// ReceivedShare is a grant as seen by the grantee, joined with the live
// note metadata at read time.
type ReceivedShare struct {
	Share
	OwnerUsername string     `json:"owner_username"`
	Title         string     `json:"title"`
	UpdatedAtNote time.Time  `json:"note_updated_at"`
	Locked        bool       `json:"locked"`
	LockedBy      string     `json:"locked_by,omitempty"`
	LockedAt      *time.Time `json:"locked_at,omitempty"`
}

type Servicer interface {
	Grant(ctx context.Context, ownerID, noteID, targetUsername string, permission Permission) (*Share, error)
	ResolveAccess(ctx context.Context, userID, noteID string, required Permission) (*Access, error)
	Revoke(ctx context.Context, requestingUserID, shareID string) error
	ListReceivedBy(ctx context.Context, userID string) ([]ReceivedShare, error)
	ListSentBy(ctx context.Context, ownerID string) ([]Share, error)

	ReadShared(ctx context.Context, userID, noteID string) (*note.Note, error)
	UpdateShared(ctx context.Context, userID, noteID string, title, content *string) (*note.Metadata, error)
	LockShared(ctx context.Context, userID, noteID string) (*note.Metadata, error)
	UnlockShared(ctx context.Context, userID, noteID string) (*note.Metadata, error)
}

type Service struct {
	repo  Repository
	notes note.Servicer
	users user.Servicer
	log   *slog.Logger
}

func NewService(repo Repository, notes note.Servicer, users user.Servicer, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		notes: notes,
		users: users,
		log:   log.With("component", "share_service"),
	}
}

func (s *Service) Grant(ctx context.Context, ownerID, noteID, targetUsername string, permission Permission) (*Share, error) {
	if !permission.Valid() {
		return nil, ErrInvalidPermission
	}

	exists, err := s.notes.Exists(ctx, ownerID, noteID)
	if err != nil {
		return nil, fmt.Errorf("check note: %w", err)
	}
	if !exists {
		return nil, note.ErrNotFound
	}

	target, err := s.users.FindByUsername(ctx, targetUsername)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("find target user: %w", err)
	}
	if target.ID == ownerID {
		return nil, ErrSelfShare
	}

	now := time.Now().UTC()
	sh, err := s.repo.Upsert(ctx, &Share{
		ID:         uuid.NewString(),
		NoteID:     noteID,
		OwnerID:    ownerID,
		SharedWith: target.ID,
		Permission: permission,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("save share: %w", err)
	}
	sh.SharedWithUsername = target.Username

	s.log.Info("note shared",
		"owner_id", ownerID, "note_id", noteID,
		"shared_with", target.ID, "permission", string(permission))
	return sh, nil
}

// ResolveAccess decides whether userID may act on noteID at the required
// level. Ownership always wins, regardless of any share records.
func (s *Service) ResolveAccess(ctx context.Context, userID, noteID string, required Permission) (*Access, error) {
	owned, err := s.notes.Exists(ctx, userID, noteID)
	if err != nil {
		return nil, fmt.Errorf("check ownership: %w", err)
	}
	if owned {
		return &Access{IsOwner: true, OwnerID: userID, Permission: PermissionWrite}, nil
	}

	sh, err := s.repo.GetByNoteAndUser(ctx, noteID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoAccess
		}
		return nil, fmt.Errorf("look up share: %w", err)
	}
	if !sh.Permission.Allows(required) {
		return nil, ErrInsufficientPermission
	}
	return &Access{IsOwner: false, OwnerID: sh.OwnerID, Permission: sh.Permission}, nil
}

func (s *Service) Revoke(ctx context.Context, requestingUserID, shareID string) error {
	sh, err := s.repo.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if sh.OwnerID != requestingUserID {
		return ErrNotOwner
	}
	if err := s.repo.Delete(ctx, shareID); err != nil {
		return fmt.Errorf("delete share: %w", err)
	}

	s.log.Info("share revoked", "share_id", shareID, "owner_id", requestingUserID, "note_id", sh.NoteID)
	return nil
}

func (s *Service) ListReceivedBy(ctx context.Context, userID string) ([]ReceivedShare, error) {
	shares, err := s.repo.ListBySharedWith(ctx, userID)
	if err != nil {
		return nil, err
	}

	received := make([]ReceivedShare, 0, len(shares))
	for _, sh := range shares {
		meta, err := s.notes.GetMetadata(ctx, sh.OwnerID, sh.NoteID)
		if err != nil {
			return nil, fmt.Errorf("note metadata: %w", err)
		}
		if meta == nil {
			// Note deleted after sharing; skip the dangling grant.
			continue
		}
		rs := ReceivedShare{
			Share:         sh,
			Title:         meta.Title,
			UpdatedAtNote: meta.UpdatedAt,
			Locked:        meta.Locked,
			LockedBy:      meta.LockedBy,
			LockedAt:      meta.LockedAt,
		}
		if owner, err := s.users.FindByID(ctx, sh.OwnerID); err == nil {
			rs.OwnerUsername = owner.Username
		}
		received = append(received, rs)
	}
	return received, nil
}

func (s *Service) ListSentBy(ctx context.Context, ownerID string) ([]Share, error) {
	shares, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range shares {
		if u, err := s.users.FindByID(ctx, shares[i].SharedWith); err == nil {
			shares[i].SharedWithUsername = u.Username
		}
	}
	return shares, nil
}

// ReadShared reads a note the caller does not own, under the owner's key
// material. The caller needs at least read permission.
func (s *Service) ReadShared(ctx context.Context, userID, noteID string) (*note.Note, error) {
	access, ownerKey, err := s.resolve(ctx, userID, noteID, PermissionRead)
	if err != nil {
		return nil, err
	}
	return s.notes.Read(ctx, access.OwnerID, noteID, ownerKey)
}

// UpdateShared saves changes to a shared note. The content stays encrypted
// under the owner's key; the acting user appears only as the lock holder.
func (s *Service) UpdateShared(ctx context.Context, userID, noteID string, title, content *string) (*note.Metadata, error) {
	access, ownerKey, err := s.resolve(ctx, userID, noteID, PermissionWrite)
	if err != nil {
		return nil, err
	}
	return s.notes.Update(ctx, access.OwnerID, noteID, title, content, ownerKey, userID)
}

func (s *Service) LockShared(ctx context.Context, userID, noteID string) (*note.Metadata, error) {
	access, _, err := s.resolve(ctx, userID, noteID, PermissionWrite)
	if err != nil {
		return nil, err
	}
	return s.notes.Lock(ctx, access.OwnerID, noteID, userID)
}

func (s *Service) UnlockShared(ctx context.Context, userID, noteID string) (*note.Metadata, error) {
	access, _, err := s.resolve(ctx, userID, noteID, PermissionWrite)
	if err != nil {
		return nil, err
	}
	return s.notes.Unlock(ctx, access.OwnerID, noteID, userID)
}

// resolve combines access resolution with the owner key-material lookup.
func (s *Service) resolve(ctx context.Context, userID, noteID string, required Permission) (*Access, string, error) {
	access, err := s.ResolveAccess(ctx, userID, noteID, required)
	if err != nil {
		return nil, "", err
	}
	owner, err := s.users.FindByID(ctx, access.OwnerID)
	if err != nil {
		return nil, "", fmt.Errorf("find owner: %w", err)
	}
	return access, owner.Username, nil
}
