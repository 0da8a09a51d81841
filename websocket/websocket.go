package websocket

import (
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// Conn is a websocket connection safe for concurrent writers.
type Conn struct {
	*ws.Conn
	mu     sync.Mutex
	logger *zap.Logger
}

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewConn upgrades the request to a websocket connection.
func NewConn(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Info("websocket upgrade failed", zap.Error(err))
		return nil, err
	}
	return &Conn{Conn: conn, logger: logger}, nil
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := c.Conn.WriteJSON(v)
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("websocket write failed", zap.Error(err))
	}
	return err
}
