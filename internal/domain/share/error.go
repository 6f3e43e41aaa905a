package share

import "errors"

var (
	ErrNotFound               = errors.New("share not found")
	ErrNoAccess               = errors.New("no access to this note")
	ErrInsufficientPermission = errors.New("insufficient permission for this operation")
	ErrNotOwner               = errors.New("only the note owner may manage shares")
	ErrSelfShare              = errors.New("cannot share a note with yourself")
	ErrInvalidPermission      = errors.New("permission must be read or write")
)
