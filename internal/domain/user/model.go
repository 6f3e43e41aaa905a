package user

import "time"

// User is a registered account. Username doubles as the key-material
// surrogate the note store encrypts under, so it is immutable once created.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Public strips fields that must never leave the internal replication
// channel.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
