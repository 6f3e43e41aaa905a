package sync

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"notevault/internal/domain/replication"
)

type Handler struct {
	engine     *replication.Engine
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(engine *replication.Engine, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		engine:     engine,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.syncOp(), h.sync)
	huma.Register(api, h.healthOp(), h.health)
	huma.Register(api, h.peerStatusOp(), h.peerStatus)
}

func (h *Handler) sync(ctx context.Context, input *syncInput) (*syncOutput, error) {
	if !h.engine.Authorized(input.Secret) {
		h.log.Warn("sync request with bad secret", "peer", input.Body.ServerName)
		return nil, huma.Error403Forbidden("Forbidden")
	}

	resp, err := h.engine.HandleSync(ctx, input.Body.ServerName, &input.Body.State)
	if err != nil {
		h.log.Error("inbound sync failed", "peer", input.Body.ServerName, "error", err)
		return nil, huma.Error500InternalServerError("sync failed")
	}

	return &syncOutput{Body: *resp}, nil
}

func (h *Handler) health(_ context.Context, input *healthInput) (*healthOutput, error) {
	if !h.engine.Authorized(input.Secret) {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	status := h.engine.Status()
	return &healthOutput{
		Body: healthResponse{
			Status:     "OK",
			ServerName: status.ServerName,
			Engine:     status,
		},
	}, nil
}

func (h *Handler) peerStatus(ctx context.Context, input *peerStatusInput) (*peerStatusOutput, error) {
	if !h.engine.Authorized(input.Secret) {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	return &peerStatusOutput{Body: h.engine.CheckPeer(ctx)}, nil
}
