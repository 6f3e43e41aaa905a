package share

import "time"

// Permission is the grant level on a shared note.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

func (p Permission) Valid() bool {
	return p == PermissionRead || p == PermissionWrite
}

// Allows reports whether this permission covers the required one.
// Write implies read.
func (p Permission) Allows(required Permission) bool {
	if p == PermissionWrite {
		return true
	}
	return p == required
}

// Share is a grant of access to one note for one user. At most one Share
// exists per (NoteID, SharedWith); re-granting updates the permission in
// place.
type Share struct {
	ID                 string     `json:"id"`
	NoteID             string     `json:"note_id"`
	OwnerID            string     `json:"owner_id"`
	SharedWith         string     `json:"shared_with"`
	SharedWithUsername string     `json:"shared_with_username,omitempty"`
	Permission         Permission `json:"permission"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Access is the result of resolving a caller against a note: either the
// caller owns it, or holds a grant at some permission level.
type Access struct {
	IsOwner    bool
	OwnerID    string
	Permission Permission
}
