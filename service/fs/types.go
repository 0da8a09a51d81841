package fs

import (
	"os"
	"time"
)

type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// DirectoryEntry describes one child of a listed directory.
type DirectoryEntry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Type     EntryKind `json:"type"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Created  time.Time `json:"created"`
}

// FileSystem defines the primitives file operations are built from.
// Both local and remote implementations conform to this interface. Paths
// handed to it are always absolute and already resolved.
type FileSystem interface {
	// ReadFile returns the whole content of a regular file.
	ReadFile(path string) ([]byte, error)

	// WriteFile truncates or creates the file. Missing parents are an error.
	WriteFile(path string, data []byte) error

	// MkdirAll creates the directory along with any missing ancestors.
	MkdirAll(path string) error

	Stat(path string) (os.FileInfo, error)

	// ReadDirNames returns the names of the children of a directory, sorted.
	ReadDirNames(path string) ([]string, error)

	Remove(path string) error
	RemoveAll(path string) error
	Rename(oldPath, newPath string) error
}
