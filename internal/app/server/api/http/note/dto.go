package note

import "notevault/internal/domain/note"

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Notes []note.Metadata `json:"notes"`
}

type createInput struct {
	Body createRequest
}

type createRequest struct {
	Title   string `json:"title" minLength:"1" maxLength:"200" doc:"Note title"`
	Content string `json:"content" doc:"Plaintext content, encrypted before it is stored"`
}

type metaOutput struct {
	Body note.Metadata
}

type idInput struct {
	ID string `path:"id" doc:"Note id"`
}

type readOutput struct {
	Body note.Note
}

type updateInput struct {
	ID   string `path:"id" doc:"Note id"`
	Body updateRequest
}

type updateRequest struct {
	Title   *string `json:"title,omitempty" doc:"New title, omit to keep"`
	Content *string `json:"content,omitempty" doc:"New plaintext content, omit to keep"`
}

type deleteOutput struct {
	Body deleteResponse
}

type deleteResponse struct {
	Status string `json:"status"`
}
