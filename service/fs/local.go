package fs

import (
	"os"
	"sort"

	"github.com/spf13/afero"
)

// LocalFileSystem serves files from an afero filesystem, the host OS in
// production.
type LocalFileSystem struct {
	fs afero.Fs
}

func NewLocalFileSystem(fs afero.Fs) *LocalFileSystem {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LocalFileSystem{fs: fs}
}

func (l *LocalFileSystem) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(l.fs, path)
}

func (l *LocalFileSystem) WriteFile(path string, data []byte) error {
	return afero.WriteFile(l.fs, path, data, 0644)
}

func (l *LocalFileSystem) MkdirAll(path string) error {
	return l.fs.MkdirAll(path, 0755)
}

func (l *LocalFileSystem) Stat(path string) (os.FileInfo, error) {
	return l.fs.Stat(path)
}

func (l *LocalFileSystem) ReadDirNames(path string) ([]string, error) {
	dir, err := l.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (l *LocalFileSystem) Remove(path string) error {
	return l.fs.Remove(path)
}

func (l *LocalFileSystem) RemoveAll(path string) error {
	return l.fs.RemoveAll(path)
}

func (l *LocalFileSystem) Rename(oldPath, newPath string) error {
	return l.fs.Rename(oldPath, newPath)
}
