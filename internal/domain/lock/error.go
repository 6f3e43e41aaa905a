package lock

import (
	"fmt"
	"time"
)

// ConflictError is returned when a note is already locked by someone else.
type ConflictError struct {
	Holder   string
	LockedAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("note is locked by %s", e.Holder)
}
