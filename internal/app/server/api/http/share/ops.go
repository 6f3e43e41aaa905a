package share

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) grantOp() huma.Operation {
	return huma.Operation{
		OperationID: "shares-grant",
		Method:      http.MethodPost,
		Path:        "/api/shares",
		Summary:     "Share a note with another user",
		Description: "Re-sharing the same note with the same user updates the permission in place.",
		Tags:        []string{"shares"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listReceivedOp() huma.Operation {
	return huma.Operation{
		OperationID: "shares-list-received",
		Method:      http.MethodGet,
		Path:        "/api/shares/received",
		Summary:     "List notes shared with the caller",
		Tags:        []string{"shares"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listSentOp() huma.Operation {
	return huma.Operation{
		OperationID: "shares-list-sent",
		Method:      http.MethodGet,
		Path:        "/api/shares/sent",
		Summary:     "List shares the caller has granted",
		Tags:        []string{"shares"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) revokeOp() huma.Operation {
	return huma.Operation{
		OperationID: "shares-revoke",
		Method:      http.MethodDelete,
		Path:        "/api/shares/{id}",
		Summary:     "Revoke a share",
		Tags:        []string{"shares"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) readSharedOp() huma.Operation {
	return huma.Operation{
		OperationID: "shared-read",
		Method:      http.MethodGet,
		Path:        "/api/shared/{noteId}",
		Summary:     "Read a note shared with the caller",
		Tags:        []string{"shared"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateSharedOp() huma.Operation {
	return huma.Operation{
		OperationID: "shared-update",
		Method:      http.MethodPut,
		Path:        "/api/shared/{noteId}",
		Summary:     "Update a note shared with the caller",
		Description: "Requires write permission. Content stays encrypted under the owner's key.",
		Tags:        []string{"shared"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) lockSharedOp() huma.Operation {
	return huma.Operation{
		OperationID: "shared-lock",
		Method:      http.MethodPost,
		Path:        "/api/shared/{noteId}/lock",
		Summary:     "Take the edit lock on a shared note",
		Tags:        []string{"shared"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) unlockSharedOp() huma.Operation {
	return huma.Operation{
		OperationID: "shared-unlock",
		Method:      http.MethodPost,
		Path:        "/api/shared/{noteId}/unlock",
		Summary:     "Release the edit lock on a shared note",
		Tags:        []string{"shared"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
