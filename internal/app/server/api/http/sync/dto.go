package sync

import "notevault/internal/domain/replication"

type syncInput struct {
	Secret string `header:"X-Internal-Secret" doc:"Shared secret for node-to-node traffic"`
	Body   replication.SyncRequest
}

type syncOutput struct {
	Body replication.SyncResponse
}

type healthInput struct {
	Secret string `header:"X-Internal-Secret" doc:"Shared secret for node-to-node traffic"`
}

type healthOutput struct {
	Body healthResponse
}

type healthResponse struct {
	Status     string             `json:"status"`
	ServerName string             `json:"server_name"`
	Engine     replication.Status `json:"replication"`
}

type peerStatusInput struct {
	Secret string `header:"X-Internal-Secret" doc:"Shared secret for node-to-node traffic"`
}

type peerStatusOutput struct {
	Body replication.PeerHealth
}
