package websocket

import (
	"encoding/json"
	"net/http"

	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server dispatches the text messages of one connection to its services.
type Server struct {
	*Conn
	services map[string]Service
	logger   *zap.Logger
}

func NewServer(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := NewConn(w, r, logger)
	if err != nil {
		return nil, err
	}
	return &Server{
		Conn:     conn,
		services: make(map[string]Service),
		logger:   logger,
	}, nil
}

func (s *Server) Register(service Service) {
	if _, exists := s.services[service.Name()]; exists {
		s.logger.Warn("service already registered", zap.String("service", service.Name()))
		return
	}
	service.Register(s.Conn)
	s.services[service.Name()] = service
}

// Serve reads messages until the connection fails, then cleans up every
// service and closes the connection. Messages for unknown services and
// malformed messages are skipped.
func (s *Server) Serve() error {
	err := s.readLoop()
	for _, service := range s.services {
		service.Cleanup(err)
	}
	s.Conn.Close()

	if ws.IsCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway, ws.CloseNoStatusReceived) {
		return nil
	}
	return err
}

func (s *Server) readLoop() error {
	for {
		msgType, data, err := s.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != ws.TextMessage {
			continue
		}

		var msg ServiceMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("error unmarshalling message", zap.Error(err))
			continue
		}
		service, ok := s.services[msg.Service]
		if !ok {
			s.logger.Debug("message for unknown service", zap.String("service", msg.Service))
			continue
		}
		service.HandleTextMessage(msg.Id, msg.Action, msg.Data)
	}
}
