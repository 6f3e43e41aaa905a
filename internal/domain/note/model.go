package note

import "time"

// Metadata describes a note without its content. Lock fields are not
// persisted with the metadata row; they are derived from the lock store
// on every read.
type Metadata struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Locked    bool       `json:"locked"`
	LockedBy  string     `json:"locked_by,omitempty"`
	LockedAt  *time.Time `json:"locked_at,omitempty"`
}

// Note pairs metadata with decrypted content.
type Note struct {
	Metadata
	Content string `json:"content"`
}
