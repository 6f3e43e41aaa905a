package note

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"notevault/internal/app/server/api/http/apierr"
	"notevault/internal/app/server/api/http/middleware/auth"
	"notevault/internal/domain/note"
	"notevault/internal/domain/user"
)

type Handler struct {
	service    note.Servicer
	users      user.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service note.Servicer, users user.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		users:      users,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.readOp(), h.read)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.lockOp(), h.lock)
	huma.Register(api, h.unlockOp(), h.unlock)
}

// caller resolves the authenticated user and their key material.
func (h *Handler) caller(ctx context.Context) (userID, ownerKey string, err error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return "", "", huma.Error401Unauthorized("Unauthorized")
	}
	u, err := h.users.FindByID(ctx, userID)
	if err != nil {
		return "", "", apierr.Wrap(h.log, "resolve caller", fmt.Errorf("find caller: %w", err))
	}
	return userID, u.Username, nil
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	notes, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "notes list", err)
	}
	if notes == nil {
		notes = []note.Metadata{}
	}

	return &listOutput{Body: listResponse{Notes: notes}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*metaOutput, error) {
	userID, ownerKey, err := h.caller(ctx)
	if err != nil {
		return nil, err
	}

	meta, err := h.service.Create(ctx, userID, input.Body.Title, input.Body.Content, ownerKey)
	if err != nil {
		return nil, apierr.Wrap(h.log, "notes create", err)
	}

	return &metaOutput{Body: *meta}, nil
}

func (h *Handler) read(ctx context.Context, input *idInput) (*readOutput, error) {
	userID, ownerKey, err := h.caller(ctx)
	if err != nil {
		return nil, err
	}

	n, err := h.service.Read(ctx, userID, input.ID, ownerKey)
	if err != nil {
		return nil, apierr.Wrap(h.log, "notes read", err)
	}

	return &readOutput{Body: *n}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*metaOutput, error) {
	userID, ownerKey, err := h.caller(ctx)
	if err != nil {
		return nil, err
	}

	meta, err := h.service.Update(ctx, userID, input.ID, input.Body.Title, input.Body.Content, ownerKey, userID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "notes update", err)
	}

	return &metaOutput{Body: *meta}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*deleteOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Delete(ctx, userID, input.ID); err != nil {
		return nil, apierr.Wrap(h.log, "notes delete", err)
	}

	return &deleteOutput{Body: deleteResponse{Status: "Ok"}}, nil
}

func (h *Handler) lock(ctx context.Context, input *idInput) (*metaOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	meta, err := h.service.Lock(ctx, userID, input.ID, userID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "notes lock", err)
	}

	return &metaOutput{Body: *meta}, nil
}

func (h *Handler) unlock(ctx context.Context, input *idInput) (*metaOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	meta, err := h.service.Unlock(ctx, userID, input.ID, userID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "notes unlock", err)
	}

	return &metaOutput{Body: *meta}, nil
}
