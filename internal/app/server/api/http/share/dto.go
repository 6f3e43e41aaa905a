package share

import (
	"notevault/internal/domain/note"
	"notevault/internal/domain/share"
)

type grantInput struct {
	Body grantRequest
}

type grantRequest struct {
	NoteID     string `json:"note_id" doc:"Note to share"`
	Username   string `json:"username" doc:"User to share with"`
	Permission string `json:"permission" enum:"read,write" doc:"Grant level"`
}

type shareOutput struct {
	Body share.Share
}

type receivedOutput struct {
	Body receivedResponse
}

type receivedResponse struct {
	Shares []share.ReceivedShare `json:"shares"`
}

type sentOutput struct {
	Body sentResponse
}

type sentResponse struct {
	Shares []share.Share `json:"shares"`
}

type shareIDInput struct {
	ID string `path:"id" doc:"Share id"`
}

type revokeOutput struct {
	Body revokeResponse
}

type revokeResponse struct {
	Status string `json:"status"`
}

type noteIDInput struct {
	NoteID string `path:"noteId" doc:"Note id"`
}

type readOutput struct {
	Body note.Note
}

type updateInput struct {
	NoteID string `path:"noteId" doc:"Note id"`
	Body   updateRequest
}

type updateRequest struct {
	Title   *string `json:"title,omitempty" doc:"New title, omit to keep"`
	Content *string `json:"content,omitempty" doc:"New plaintext content, omit to keep"`
}

type metaOutput struct {
	Body note.Metadata
}
