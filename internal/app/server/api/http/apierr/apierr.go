package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"notevault/internal/crypto"
	"notevault/internal/domain/lock"
	"notevault/internal/domain/note"
	"notevault/internal/domain/share"
	"notevault/internal/domain/user"
)

// Map translates domain errors into HTTP status errors. Everything the
// taxonomy does not name stays an opaque 500 so internals never leak to
// clients.
func Map(err error) error {
	var conflict *lock.ConflictError
	switch {
	case err == nil:
		return nil

	case errors.As(err, &conflict):
		return huma.NewError(http.StatusLocked,
			fmt.Sprintf("note is locked by %s", conflict.Holder),
		)

	case errors.Is(err, note.ErrNotFound),
		errors.Is(err, share.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return huma.Error404NotFound(err.Error())

	case errors.Is(err, note.ErrInvalidInput),
		errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, share.ErrInvalidPermission),
		errors.Is(err, share.ErrSelfShare):
		return huma.Error400BadRequest(err.Error())

	case errors.Is(err, share.ErrNoAccess),
		errors.Is(err, share.ErrInsufficientPermission),
		errors.Is(err, share.ErrNotOwner):
		return huma.Error403Forbidden(err.Error())

	case errors.Is(err, user.ErrExists):
		return huma.Error409Conflict(err.Error())

	case errors.Is(err, user.ErrInvalidAuth):
		return huma.Error401Unauthorized("invalid username or password")

	case errors.Is(err, crypto.ErrDecrypt):
		// Never reveals whether the key or the data was at fault.
		return huma.Error500InternalServerError(crypto.ErrDecrypt.Error())

	default:
		return huma.Error500InternalServerError("internal error")
	}
}

// Wrap logs the full error server-side and returns the sanitized mapped
// error for the client.
func Wrap(log *slog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	log.Error("operation failed", slog.String("op", op), slog.String("error", err.Error()))
	return Map(err)
}
