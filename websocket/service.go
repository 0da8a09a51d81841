package websocket

import (
	"encoding/json"
)

// Service handles the messages addressed to it on a multiplexed connection.
type Service interface {
	Name() string
	// Register is called once before any message is handled.
	Register(conn *Conn)
	HandleTextMessage(id string, action string, data json.RawMessage)
	// Cleanup releases everything the service holds for the connection.
	Cleanup(err error)
}

type ServiceMessage struct {
	Service string          `json:"service"`
	Id      string          `json:"id,omitempty"`
	Action  string          `json:"action,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
