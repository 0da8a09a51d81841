package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"xide/config"
	"xide/controller"
	"xide/metrics"
	"xide/service/command"
	"xide/service/fs"
	"xide/service/visit"
	"xide/service/watch"
)

// Server is the HTTP front of the file service.
type Server struct {
	cfg      *config.Config
	engine   *gin.Engine
	http     *http.Server
	registry *watch.Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger

	closers []func() error
}

// New wires the services selected by cfg.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	m := metrics.New()

	var (
		files   *fs.Service
		closers []func() error
	)
	switch cfg.FS.Backend {
	case config.BackendSFTP:
		svc, closeFn, err := fs.NewSFTPService(fs.SFTPOptions{
			Addr:       cfg.FS.SFTPAddr,
			User:       cfg.FS.SFTPUser,
			Password:   cfg.FS.SFTPPassword,
			KnownHosts: cfg.FS.SFTPKnownHosts,
		}, logger, m)
		if err != nil {
			return nil, fmt.Errorf("failed to open remote workspace: %w", err)
		}
		files = svc
		closers = append(closers, closeFn)
	default:
		files = fs.NewLocalService(logger, m)
	}

	counter := visit.NewCounter(nil, cfg.Server.DataDir, logger)
	if err := counter.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize visit counter: %w", err)
	}

	opener, runner := hostCollaborators(cfg, logger)
	s := newServer(cfg, logger, m, controller.Options{
		Files:     files,
		Heartbeat: cfg.Watch.Heartbeat,
		Commands:  runner,
		Visits:    counter,
	}, opener)
	s.closers = append(s.closers, closers...)
	return s, nil
}

// hostCollaborators returns the watch opener and command runner for the
// configured backend. Both work on the host, so with a remote workspace they
// refuse instead of acting on a different tree than the file API.
func hostCollaborators(cfg *config.Config, logger *zap.Logger) (watch.Opener, *command.Runner) {
	if cfg.FS.Backend == config.BackendSFTP {
		logger.Warn("change notifications and command execution are unavailable for the sftp backend")
		return watch.UnsupportedOpener(fmt.Errorf("%w for the sftp backend", watch.ErrUnsupported)),
			command.NewRefusingRunner(fmt.Errorf("%w for the sftp backend", command.ErrUnsupported), logger)
	}

	opener := watch.NewFSNotifyOpener(watch.SourceOptions{
		Recursive: cfg.Watch.Recursive,
		Ignore:    cfg.Watch.Ignore,
		Logger:    logger.Named("watch"),
	})
	return opener, command.NewRunner(cfg.Command.Enabled, logger)
}

// newServer builds the router around already constructed services. The
// watch registry is created here so that it resolves paths the same way as
// the file service.
func newServer(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, opts controller.Options, opener watch.Opener) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	resolve := func(p string) string { return fs.NewPathResolver().Resolve(p).String() }
	if opts.Files != nil {
		resolver := opts.Files.Resolver()
		resolve = func(p string) string { return resolver.Resolve(p).String() }
	}
	registry := watch.NewRegistry(opener, watch.Options{
		BufferSize: cfg.Watch.BufferSize,
		Resolve:    resolve,
		Logger:     logger.Named("watch"),
		Metrics:    m,
	})

	opts.Registry = registry
	opts.Metrics = m
	opts.Logger = logger

	r := gin.New()
	r.Use(recovery(logger), accessLog(logger.Named("http")), m.Middleware(), corsMiddleware(cfg.Server.CORSOrigins))

	controller.SetupRoutes(r, opts)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.NoRoute(staticFiles(cfg.Server.StaticDir))

	return &Server{
		cfg:      cfg,
		engine:   r,
		registry: registry,
		metrics:  m,
		logger:   logger,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens in the background. The returned channel receives the error
// that stopped the server, or nil after Shutdown.
func (s *Server) Start() <-chan error {
	finished := make(chan error, 1)
	go func() {
		err := s.http.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		finished <- err
	}()
	s.logger.Info("started", zap.String("addr", s.http.Addr), zap.String("backend", s.cfg.FS.Backend))
	return finished
}

// Shutdown stops accepting requests, ends open watch streams and releases
// the filesystem backend.
func (s *Server) Shutdown(ctx context.Context) error {
	// Streams only end when their watchers go away, so close those first.
	s.registry.Close()
	err := s.http.Shutdown(ctx)
	for _, closeFn := range s.closers {
		if cerr := closeFn(); cerr != nil {
			s.logger.Warn("error closing backend", zap.Error(cerr))
		}
	}
	return err
}

// staticFiles serves the editor's assets for any path no route matched.
func staticFiles(dir string) gin.HandlerFunc {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(gin.Dir(dir, false))
	}
	return func(c *gin.Context) {
		if files == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(c.Request.URL.Path))); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
