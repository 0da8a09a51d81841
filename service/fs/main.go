package fs

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"xide/logging"
	"xide/metrics"
)

// NewLocalService serves files from the host filesystem, resolving relative
// paths against the process working directory.
func NewLocalService(logger *zap.Logger, m *metrics.Metrics) *Service {
	logger = logging.OrNop(logger).Named("fs")
	return NewService(NewLocalFileSystem(afero.NewOsFs()), NewPathResolver(), logger, m)
}

// NewSFTPService serves files from a remote workspace, resolving relative
// paths against the remote working directory. The returned closer ends the
// session.
func NewSFTPService(opts SFTPOptions, logger *zap.Logger, m *metrics.Metrics) (*Service, func() error, error) {
	logger = logging.OrNop(logger).Named("fs")

	remote, err := DialSFTP(opts, logger)
	if err != nil {
		return nil, nil, err
	}
	wd, err := remote.Getwd()
	if err != nil {
		remote.Close()
		return nil, nil, fmt.Errorf("failed to get remote working directory: %w", err)
	}
	logger.Info("connected to remote workspace", zap.String("addr", opts.Addr), zap.String("cwd", wd))

	resolver := NewRemotePathResolver(func() (string, error) { return wd, nil })
	return NewService(remote, resolver, logger, m), remote.Close, nil
}
