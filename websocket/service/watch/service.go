package watch

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"xide/metrics"
	"xide/service/watch"
	ws "xide/websocket"
)

const (
	actionWatch   = "watch"
	actionUnwatch = "unwatch"
	actionEvent   = "event"
	actionPing    = "ping"
	actionPong    = "pong"

	transport = "ws"
)

type pathData struct {
	Path string `json:"path"`
}

// WatchService multiplexes change-event subscriptions of one connection.
// Each watched path gets a forwarder that writes its events as "event"
// messages carrying the id of the watch request.
type WatchService struct {
	conn    *ws.Conn
	stream  *watch.Stream
	metrics *metrics.Metrics
	logger  *zap.Logger

	wg sync.WaitGroup
}

func NewService(reg *watch.Registry, logger *zap.Logger, m *metrics.Metrics) ws.Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	stream := watch.NewStream(reg)
	return &WatchService{
		stream:  stream,
		metrics: m,
		logger:  logger.Named("watch").With(zap.String("stream", stream.ID())),
	}
}

func (s *WatchService) Name() string {
	return "watch"
}

func (s *WatchService) Register(conn *ws.Conn) {
	s.conn = conn
	s.metrics.StreamOpened(transport)
}

func (s *WatchService) HandleTextMessage(id string, action string, data json.RawMessage) {
	switch action {
	case actionPing:
		s.reply(id, actionPong, nil, "")
	case actionWatch:
		s.handleWatch(id, data)
	case actionUnwatch:
		s.handleUnwatch(id, data)
	default:
		s.reply(id, action, nil, "unknown action "+action)
	}
}

// Cleanup releases every subscription and waits for the forwarders to stop.
func (s *WatchService) Cleanup(err error) {
	s.stream.Close()
	s.wg.Wait()
	s.metrics.StreamClosed(transport)
	s.logger.Debug("watch stream closed", zap.Error(err))
}

func (s *WatchService) handleWatch(id string, data json.RawMessage) {
	path, ok := s.decodePath(id, actionWatch, data)
	if !ok {
		return
	}

	sub, err := s.stream.Watch(path)
	if err != nil {
		s.reply(id, actionWatch, nil, err.Error())
		return
	}

	s.reply(id, actionWatch, pathData{Path: sub.Path()}, "")

	s.wg.Add(1)
	go s.forward(id, sub)
}

func (s *WatchService) handleUnwatch(id string, data json.RawMessage) {
	path, ok := s.decodePath(id, actionUnwatch, data)
	if !ok {
		return
	}
	s.stream.Unwatch(path)
	s.reply(id, actionUnwatch, pathData{Path: path}, "")
}

// forward runs until the subscription is released.
func (s *WatchService) forward(id string, sub *watch.Subscription) {
	defer s.wg.Done()
	for ev := range sub.Events() {
		s.reply(id, actionEvent, ev, "")
	}
}

func (s *WatchService) decodePath(id, action string, data json.RawMessage) (string, bool) {
	var d pathData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d); err != nil {
			s.logger.Debug("error unmarshalling payload", zap.String("action", action), zap.Error(err))
			s.reply(id, action, nil, err.Error())
			return "", false
		}
	}
	if d.Path == "" {
		s.reply(id, action, nil, "path required")
		return "", false
	}
	return d.Path, true
}

func (s *WatchService) reply(id, action string, payload any, errMsg string) {
	msg := &ws.ServiceMessage{
		Service: s.Name(),
		Id:      id,
		Action:  action,
		Error:   errMsg,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.Error("error marshalling payload", zap.Error(err))
			return
		}
		msg.Data = data
	}
	s.conn.WriteJSON(msg)
}
