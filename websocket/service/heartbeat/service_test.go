package heartbeat

import (
	"testing"

	ws "xide/websocket"

	"github.com/stretchr/testify/assert"
)

func TestHeartbeatService_Name(t *testing.T) {
	assert.Equal(t, "heartbeat", NewService().Name())
}

func TestReply(t *testing.T) {
	testCases := []struct {
		name     string
		id       string
		action   string
		expected ws.ServiceMessage
	}{
		{
			name:     "Ping is answered with pong",
			id:       "test-id-1",
			action:   "ping",
			expected: ws.ServiceMessage{Service: "heartbeat", Action: "pong", Id: "test-id-1"},
		},
		{
			name:     "Other actions are echoed",
			id:       "test-id-2",
			action:   "status",
			expected: ws.ServiceMessage{Service: "heartbeat", Action: "status", Id: "test-id-2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, *Reply("heartbeat", tc.id, tc.action))
		})
	}
}

func TestHeartbeatService_Cleanup(t *testing.T) {
	service := NewService()
	assert.NotPanics(t, func() {
		service.Cleanup(nil)
		service.Cleanup(assert.AnError)
	})
}
