package visit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const fileName = "visit-count.json"

type record struct {
	Count int `json:"count"`
}

// Counter persists a page visit count as a small JSON file.
type Counter struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger

	mu sync.Mutex
}

// NewCounter keeps the count in dataDir/visit-count.json.
func NewCounter(fs afero.Fs, dataDir string, logger *zap.Logger) *Counter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Counter{
		fs:     fs,
		path:   filepath.Join(dataDir, fileName),
		logger: logger.Named("visit"),
	}
}

// Init creates the data directory and a zero count unless one exists.
func (c *Counter) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := c.fs.Stat(c.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat visit count: %w", err)
	}
	return c.write(record{})
}

// Increment adds one visit and returns the new count. On failure it logs and
// returns 1.
func (c *Counter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.read()
	if err != nil {
		c.logger.Error("failed to read visit count", zap.Error(err))
		return 1
	}
	rec.Count++
	if err := c.write(rec); err != nil {
		c.logger.Error("failed to save visit count", zap.Error(err))
		return 1
	}
	return rec.Count
}

// Current returns the count without changing it, or 0 on failure.
func (c *Counter) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.read()
	if err != nil {
		c.logger.Error("failed to read visit count", zap.Error(err))
		return 0
	}
	return rec.Count
}

func (c *Counter) read() (record, error) {
	var rec record
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode %s: %w", c.path, err)
	}
	return rec, nil
}

// write replaces the file through a temporary sibling so a crash never
// leaves a truncated count behind.
func (c *Counter) write(rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0644); err != nil {
		return err
	}
	return c.fs.Rename(tmp, c.path)
}
