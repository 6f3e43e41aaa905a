package user

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"notevault/internal/app/server/api/http/apierr"
	"notevault/internal/domain/session"
	"notevault/internal/domain/user"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	u, err := h.service.Register(ctx, input.Body.Username, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, apierr.Wrap(h.log, "register", err)
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "register", fmt.Errorf("create session: %w", err))
	}

	return &registerOutput{
		Body: registerResponse{
			UserID:   u.ID,
			Username: u.Username,
			Token:    token,
		},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Username, input.Body.Password)
	if err != nil {
		return nil, apierr.Wrap(h.log, "login", err)
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		return nil, apierr.Wrap(h.log, "login", fmt.Errorf("create session: %w", err))
	}

	return &loginOutput{
		Body: loginResponse{
			UserID:   u.ID,
			Username: u.Username,
			Token:    token,
		},
	}, nil
}
