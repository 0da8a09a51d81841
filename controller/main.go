package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"xide/metrics"
	"xide/service/command"
	"xide/service/fs"
	"xide/service/visit"
	"xide/service/watch"
)

// Options holds what the API routes are served from. Nil collaborators leave
// their routes out.
type Options struct {
	Files     *fs.Service
	Registry  *watch.Registry
	Heartbeat time.Duration
	Commands  *command.Runner
	Visits    *visit.Counter
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

func SetupRoutes(r *gin.Engine, opts Options) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	api := r.Group("/api")

	if opts.Files != nil {
		files := NewFileController(opts.Files)

		api.GET("/directory/exists", files.DirectoryExists)
		api.POST("/directory/read", files.ReadDirectory)
		api.GET("/directory/read", files.ReadDirectoryQuery)
		api.GET("/file/read", files.ReadFile)
		api.POST("/file/write", files.WriteFile)
		api.POST("/file/create", files.CreateFile)
		api.POST("/folder/create", files.CreateFolder)
		api.POST("/delete", files.Delete)
		api.POST("/rename", files.Rename)
		api.PUT("/item/move", files.Move)
		api.GET("/item/exists", files.Exists)
	}

	if opts.Registry != nil {
		watches := NewWatchController(opts.Registry, opts.Files, opts.Heartbeat, opts.Metrics, opts.Logger)
		api.GET("/watch", watches.Stream)
		api.GET("/watch/ws", watches.Socket)
		api.GET("/watch/stats", func(c *gin.Context) {
			succeed(c, gin.H{"stats": opts.Registry.Stats()})
		})
	}

	if opts.Commands != nil {
		api.POST("/command/execute", NewCommandController(opts.Commands).Execute)
	}

	if opts.Visits != nil {
		visits := NewVisitController(opts.Visits)
		api.GET("/visit-count", visits.Increment)
		api.GET("/visit-count/current", visits.Current)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})
}
