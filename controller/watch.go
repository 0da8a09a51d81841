package controller

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"xide/metrics"
	"xide/service/fs"
	"xide/service/watch"
	"xide/websocket"
	wsfs "xide/websocket/service/fs"
	"xide/websocket/service/heartbeat"
	wswatch "xide/websocket/service/watch"
)

const defaultHeartbeat = 15 * time.Second

type WatchController struct {
	registry  *watch.Registry
	files     *fs.Service
	heartbeat time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewWatchController(registry *watch.Registry, files *fs.Service, heartbeat time.Duration, m *metrics.Metrics, logger *zap.Logger) *WatchController {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &WatchController{
		registry:  registry,
		files:     files,
		heartbeat: heartbeat,
		metrics:   m,
		logger:    logger,
	}
}

// Stream sends the changes below one path as server-sent events until the
// client goes away.
func (wc *WatchController) Stream(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}

	stream := watch.NewStream(wc.registry)
	defer stream.Close()

	sub, err := stream.Watch(path)
	if err != nil {
		fail(c, http.StatusOK, err.Error())
		return
	}

	writer, err := startSSE(c.Writer)
	if err != nil {
		wc.logger.Named("watch").Error("sse stream unavailable", zap.Error(err))
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	wc.metrics.StreamOpened("sse")
	defer wc.metrics.StreamClosed("sse")

	logger := wc.logger.Named("watch").With(zap.String("stream", stream.ID()), zap.String("path", sub.Path()))
	logger.Debug("sse stream opened")
	defer logger.Debug("sse stream closed")

	ticker := time.NewTicker(wc.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := writer.comment("ping"); err != nil {
				return
			}
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writer.event(ev); err != nil {
				return
			}
		}
	}
}

// Socket serves the multiplexed websocket endpoint: watch subscriptions,
// file operations and heartbeats over one connection.
func (wc *WatchController) Socket(c *gin.Context) {
	server, err := websocket.NewServer(c.Writer, c.Request, wc.logger.Named("ws"))
	if err != nil {
		// The upgrader has already written the error response.
		return
	}

	server.Register(heartbeat.NewService())
	server.Register(wswatch.NewService(wc.registry, wc.logger, wc.metrics))
	if wc.files != nil {
		server.Register(wsfs.NewService(wc.files, wc.logger))
	}

	if err := server.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
		wc.logger.Named("ws").Debug("websocket closed", zap.Error(err))
	}
}
