package heartbeat

import (
	"encoding/json"

	ws "xide/websocket"
)

const (
	actionPing = "ping"
	actionPong = "pong"
)

// HeartbeatService answers client pings so idle connections stay open
// through proxies.
type HeartbeatService struct {
	conn *ws.Conn
}

func NewService() ws.Service {
	return &HeartbeatService{}
}

func (s *HeartbeatService) Name() string {
	return "heartbeat"
}

func (s *HeartbeatService) Register(conn *ws.Conn) {
	s.conn = conn
}

func (s *HeartbeatService) HandleTextMessage(id, action string, data json.RawMessage) {
	s.conn.WriteJSON(Reply(s.Name(), id, action))
}

func (s *HeartbeatService) Cleanup(err error) {}

// Reply is the answer to a heartbeat message: ping is answered with pong,
// anything else is echoed.
func Reply(service, id, action string) *ws.ServiceMessage {
	if action == actionPing {
		action = actionPong
	}
	return &ws.ServiceMessage{Service: service, Action: action, Id: id}
}
