package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) syncOp() huma.Operation {
	return huma.Operation{
		OperationID: "internal-sync",
		Method:      http.MethodPost,
		Path:        "/api/internal/sync",
		Summary:     "Exchange full state with a peer node",
		Description: "Merges the pushed state and answers with this node's own state. Authenticated by the shared internal secret, not by a user session.",
		Tags:        []string{"internal"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) healthOp() huma.Operation {
	return huma.Operation{
		OperationID: "internal-health",
		Method:      http.MethodGet,
		Path:        "/api/internal/health",
		Summary:     "Peer-facing health probe",
		Tags:        []string{"internal"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) peerStatusOp() huma.Operation {
	return huma.Operation{
		OperationID: "internal-peer-status",
		Method:      http.MethodGet,
		Path:        "/api/internal/peer-status",
		Summary:     "Probe the configured peer's health endpoint",
		Tags:        []string{"internal"},
		Middlewares: h.middleware,
	}
}
