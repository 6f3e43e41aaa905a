package share

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"notevault/internal/app/server/api/http/apierr"
	"notevault/internal/app/server/api/http/middleware/auth"
	"notevault/internal/domain/share"
)

type Handler struct {
	service    share.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service share.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.grantOp(), h.grant)
	huma.Register(api, h.listReceivedOp(), h.listReceived)
	huma.Register(api, h.listSentOp(), h.listSent)
	huma.Register(api, h.revokeOp(), h.revoke)

	huma.Register(api, h.readSharedOp(), h.readShared)
	huma.Register(api, h.updateSharedOp(), h.updateShared)
	huma.Register(api, h.lockSharedOp(), h.lockShared)
	huma.Register(api, h.unlockSharedOp(), h.unlockShared)
}

func (h *Handler) grant(ctx context.Context, input *grantInput) (*shareOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	sh, err := h.service.Grant(ctx, userID, input.Body.NoteID, input.Body.Username, share.Permission(input.Body.Permission))
	if err != nil {
		return nil, apierr.Wrap(h.log, "shares grant", err)
	}

	return &shareOutput{Body: *sh}, nil
}

func (h *Handler) listReceived(ctx context.Context, _ *struct{}) (*receivedOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	shares, err := h.service.ListReceivedBy(ctx, userID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "shares list received", err)
	}
	if shares == nil {
		shares = []share.ReceivedShare{}
	}

	return &receivedOutput{Body: receivedResponse{Shares: shares}}, nil
}

func (h *Handler) listSent(ctx context.Context, _ *struct{}) (*sentOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	shares, err := h.service.ListSentBy(ctx, userID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "shares list sent", err)
	}
	if shares == nil {
		shares = []share.Share{}
	}

	return &sentOutput{Body: sentResponse{Shares: shares}}, nil
}

func (h *Handler) revoke(ctx context.Context, input *shareIDInput) (*revokeOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Revoke(ctx, userID, input.ID); err != nil {
		return nil, apierr.Wrap(h.log, "shares revoke", err)
	}

	return &revokeOutput{Body: revokeResponse{Status: "Ok"}}, nil
}

func (h *Handler) readShared(ctx context.Context, input *noteIDInput) (*readOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	n, err := h.service.ReadShared(ctx, userID, input.NoteID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "shared read", err)
	}

	return &readOutput{Body: *n}, nil
}

func (h *Handler) updateShared(ctx context.Context, input *updateInput) (*metaOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	meta, err := h.service.UpdateShared(ctx, userID, input.NoteID, input.Body.Title, input.Body.Content)
	if err != nil {
		return nil, apierr.Wrap(h.log, "shared update", err)
	}

	return &metaOutput{Body: *meta}, nil
}

func (h *Handler) lockShared(ctx context.Context, input *noteIDInput) (*metaOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	meta, err := h.service.LockShared(ctx, userID, input.NoteID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "shared lock", err)
	}

	return &metaOutput{Body: *meta}, nil
}

func (h *Handler) unlockShared(ctx context.Context, input *noteIDInput) (*metaOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	meta, err := h.service.UnlockShared(ctx, userID, input.NoteID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "shared unlock", err)
	}

	return &metaOutput{Body: *meta}, nil
}
