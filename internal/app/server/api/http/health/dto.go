package health

import "notevault/internal/domain/replication"

type Input struct{}

type Output struct {
	Body Response
}

type Response struct {
	Status      string             `json:"status" example:"OK" doc:"Health status of the service"`
	Replication replication.Status `json:"replication" doc:"Replication engine state"`
}
