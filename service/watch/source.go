package watch

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Source produces change events for one watched path until closed.
type Source interface {
	Close() error
}

// Opener starts a Source for path. emit is called from a single goroutine per
// source, in the order the OS reported the changes.
type Opener func(path string, emit func(ChangeEvent)) (Source, error)

// ErrUnsupported is returned when the served filesystem cannot report changes.
var ErrUnsupported = errors.New("watching is not supported")

// UnsupportedOpener refuses every watch with reason, which should wrap
// ErrUnsupported.
func UnsupportedOpener(reason error) Opener {
	return func(string, func(ChangeEvent)) (Source, error) {
		return nil, reason
	}
}

// SourceOptions configures the fsnotify-backed source.
type SourceOptions struct {
	Recursive bool
	// Ignore holds doublestar patterns matched against paths relative to the
	// watched path. A match on a directory ignores everything below it.
	Ignore []string
	Logger *zap.Logger
}

// NewFSNotifyOpener returns an Opener backed by OS notifications.
func NewFSNotifyOpener(opts SourceOptions) Opener {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return func(path string, emit func(ChangeEvent)) (Source, error) {
		return openFSNotify(path, emit, opts)
	}
}

type fsnotifySource struct {
	root    string
	opts    SourceOptions
	emit    func(ChangeEvent)
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func openFSNotify(path string, emit func(ChangeEvent), opts SourceOptions) (*fsnotifySource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	s := &fsnotifySource{
		root:    path,
		opts:    opts,
		emit:    emit,
		watcher: watcher,
		logger:  opts.Logger.With(zap.String("watched", path)),
		done:    make(chan struct{}),
	}

	if info.IsDir() && opts.Recursive {
		err = s.addTree(path)
	} else {
		err = watcher.Add(path)
	}
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	s.wg.Add(1)
	go s.run()
	return s, nil
}

func (s *fsnotifySource) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(ev)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (s *fsnotifySource) handle(ev fsnotify.Event) {
	if s.ignored(ev.Name) {
		return
	}
	kind, ok := kindOf(ev.Op)
	if !ok {
		return
	}

	if kind == EventCreate && s.opts.Recursive {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := s.addTree(ev.Name); err != nil {
				s.logger.Warn("failed to watch new directory", zap.String("path", ev.Name), zap.Error(err))
			}
		}
	}

	s.emit(ChangeEvent{
		Kind:        kind,
		Path:        ev.Name,
		WatchedPath: s.root,
		ObservedAt:  time.Now(),
	})
}

// addTree watches dir and every directory below it that is not ignored.
func (s *fsnotifySource) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			// Entries can disappear while walking.
			if path != dir && errors.Is(err, iofs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && s.ignored(path) {
			return filepath.SkipDir
		}
		return s.watcher.Add(path)
	})
}

func (s *fsnotifySource) ignored(path string) bool {
	if len(s.opts.Ignore) == 0 {
		return false
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." {
		return false
	}
	return matchesAny(s.opts.Ignore, filepath.ToSlash(rel))
}

// matchesAny reports whether rel or any of its ancestors matches a pattern.
func matchesAny(patterns []string, rel string) bool {
	parts := strings.Split(rel, "/")
	for i := range parts {
		prefix := strings.Join(parts[:i+1], "/")
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, prefix); ok {
				return true
			}
		}
	}
	return false
}

func (s *fsnotifySource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}
