package health

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

func NewHandler(engine *replication.Engine, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		engine:     engine,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	return &Output{
		Body: Response{
			Status:      "OK",
			Replication: h.engine.Status(),
		},
	}, nil
}
