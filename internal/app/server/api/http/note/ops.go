package note

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-list",
		Method:      http.MethodGet,
		Path:        "/api/notes",
		Summary:     "List the caller's notes",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-create",
		Method:      http.MethodPost,
		Path:        "/api/notes",
		Summary:     "Create a note",
		Description: "Content is encrypted at rest under the caller's key material.",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) readOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-read",
		Method:      http.MethodGet,
		Path:        "/api/notes/{id}",
		Summary:     "Read a note with decrypted content",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-update",
		Method:      http.MethodPut,
		Path:        "/api/notes/{id}",
		Summary:     "Update title and/or content",
		Description: "Saving takes the edit lock for the caller and keeps it until an explicit unlock.",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-delete",
		Method:      http.MethodDelete,
		Path:        "/api/notes/{id}",
		Summary:     "Delete a note",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) lockOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-lock",
		Method:      http.MethodPost,
		Path:        "/api/notes/{id}/lock",
		Summary:     "Take the edit lock",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) unlockOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-unlock",
		Method:      http.MethodPost,
		Path:        "/api/notes/{id}/unlock",
		Summary:     "Release the edit lock",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
