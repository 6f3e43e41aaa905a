package replication

import (
	"time"

	"notevault/internal/crypto"
	"notevault/internal/domain/note"
	"notevault/internal/domain/share"
	"notevault/internal/domain/user"
)

// OwnerState is one owner's full note set: the metadata list plus the
// encrypted content blob per note id. Ciphertext travels as-is; replicas
// never see plaintext.
type OwnerState struct {
	Metadata []note.Metadata            `json:"metadata"`
	Content  map[string]crypto.Envelope `json:"content"`
}

// State is a full snapshot of one node, exported per sync cycle and
// merged on receipt. It is transient and rebuilt from the authoritative
// stores every time.
type State struct {
	Users  []user.User           `json:"users"`
	Notes  map[string]OwnerState `json:"notes"`
	Shares []share.Share         `json:"shares"`
}

// SyncRequest is the payload pushed to a peer's sync endpoint.
type SyncRequest struct {
	ServerName string `json:"server_name"`
	State      State  `json:"state"`
}

// SyncResponse carries the peer's own state back, so one HTTP exchange
// syncs both directions.
type SyncResponse struct {
	ServerName string `json:"server_name"`
	State      State  `json:"state"`
}

// Status reports the engine's observable state.
type Status struct {
	Running      bool       `json:"running"`
	ServerName   string     `json:"server_name"`
	Peer         string     `json:"peer,omitempty"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
}

// PeerHealth is the result of probing the peer's health endpoint.
type PeerHealth struct {
	Configured bool   `json:"configured"`
	Peer       string `json:"peer,omitempty"`
	Reachable  bool   `json:"reachable"`
	ServerName string `json:"server_name,omitempty"`
	Error      string `json:"error,omitempty"`
}
