package fs

import (
	"errors"
	"os"
	"syscall"

	"go.uber.org/zap"

	"xide/metrics"
)

const (
	opReadFile        = "readFile"
	opWriteFile       = "writeFile"
	opCreateFile      = "createFile"
	opCreateFolder    = "createFolder"
	opDelete          = "delete"
	opRename          = "rename"
	opMove            = "move"
	opReadDirectory   = "readDirectory"
	opExists          = "exists"
	opDirectoryExists = "directoryExists"
)

// Service runs file operations against a FileSystem. Every operation resolves
// its paths freshly and reports its outcome as a Result; none of them panic on
// bad input.
type Service struct {
	fs       FileSystem
	resolver *PathResolver
	guard    *MutationGuard
	metrics  *metrics.Metrics

	logger *zap.Logger
}

func NewService(fsys FileSystem, resolver *PathResolver, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fs:       fsys,
		resolver: resolver,
		guard:    NewMutationGuard(resolver),
		metrics:  m,
		logger:   logger,
	}
}

// Resolver returns the resolver the service resolves paths with.
func (s *Service) Resolver() *PathResolver {
	return s.resolver
}

// ReadFile returns the content of the file at path.
func (s *Service) ReadFile(path string) Result[string] {
	p := s.resolver.Resolve(path)

	info, err := s.fs.Stat(p.String())
	if err != nil {
		return record(s, opReadFile, failOS[string](opReadFile, p.String(), err))
	}
	if info.IsDir() {
		err := &os.PathError{Op: "read", Path: p.String(), Err: syscall.EISDIR}
		return record(s, opReadFile, failOS[string](opReadFile, p.String(), err))
	}

	data, err := s.fs.ReadFile(p.String())
	if err != nil {
		return record(s, opReadFile, failOS[string](opReadFile, p.String(), err))
	}
	return record(s, opReadFile, succeed(string(data)))
}

// WriteFile replaces the content of the file at path, creating the file but
// not its parent directories.
func (s *Service) WriteFile(path, content string) Result[Empty] {
	p := s.resolver.Resolve(path)
	if err := s.fs.WriteFile(p.String(), []byte(content)); err != nil {
		return record(s, opWriteFile, failOS[Empty](opWriteFile, p.String(), err))
	}
	return record(s, opWriteFile, succeed(Empty{}))
}

// CreateFile creates an empty file, creating missing parent directories
// unless the parent is a filesystem root. An existing file is truncated.
func (s *Service) CreateFile(path string) Result[Empty] {
	p := s.resolver.Resolve(path)

	parent := s.resolver.Parent(p)
	if !s.resolver.IsRoot(parent) {
		if err := s.fs.MkdirAll(parent.String()); err != nil {
			return record(s, opCreateFile, failOS[Empty](opCreateFile, parent.String(), err))
		}
	}

	if err := s.fs.WriteFile(p.String(), nil); err != nil {
		return record(s, opCreateFile, failOS[Empty](opCreateFile, p.String(), err))
	}
	return record(s, opCreateFile, succeed(Empty{}))
}

// CreateFolder creates a directory and any missing ancestors.
func (s *Service) CreateFolder(path string) Result[Empty] {
	checked := s.guard.CheckCreateFolder(path)
	if !checked.OK() {
		return record(s, opCreateFolder, Result[Empty]{Err: checked.Err})
	}

	p := checked.Value
	if err := s.fs.MkdirAll(p.String()); err != nil {
		return record(s, opCreateFolder, failOS[Empty](opCreateFolder, p.String(), err))
	}
	return record(s, opCreateFolder, succeed(Empty{}))
}

// Delete removes a file, or a directory with everything below it.
func (s *Service) Delete(path string) Result[Empty] {
	checked := s.guard.CheckDestructive(path)
	if !checked.OK() {
		return record(s, opDelete, Result[Empty]{Err: checked.Err})
	}

	p := checked.Value
	info, err := s.fs.Stat(p.String())
	if err != nil {
		return record(s, opDelete, failOS[Empty](opDelete, p.String(), err))
	}

	if info.IsDir() {
		err = s.fs.RemoveAll(p.String())
	} else {
		err = s.fs.Remove(p.String())
	}
	if err != nil {
		return record(s, opDelete, failOS[Empty](opDelete, p.String(), err))
	}
	return record(s, opDelete, succeed(Empty{}))
}

// Rename moves oldPath to newPath in a single filesystem call.
func (s *Service) Rename(oldPath, newPath string) Result[Empty] {
	from := s.guard.CheckDestructive(oldPath)
	if !from.OK() {
		return record(s, opRename, Result[Empty]{Err: from.Err})
	}
	to := s.guard.CheckDestructive(newPath)
	if !to.OK() {
		return record(s, opRename, Result[Empty]{Err: to.Err})
	}

	if err := s.fs.Rename(from.Value.String(), to.Value.String()); err != nil {
		return record(s, opRename, failOS[Empty](opRename, from.Value.String(), err))
	}
	return record(s, opRename, succeed(Empty{}))
}

// Move places sourcePath inside targetDir, keeping its name, and returns the
// new path.
func (s *Service) Move(sourcePath, targetDir string) Result[string] {
	checked := s.guard.CheckDestructive(sourcePath)
	if !checked.OK() {
		return record(s, opMove, Result[string]{Err: checked.Err})
	}

	src := checked.Value
	dest := s.resolver.Join(s.resolver.Resolve(targetDir), s.resolver.Base(src))
	if err := s.fs.Rename(src.String(), dest.String()); err != nil {
		return record(s, opMove, failOS[string](opMove, src.String(), err))
	}
	return record(s, opMove, succeed(dest.String()))
}

// ReadDirectory lists the children of a directory with their stat results.
// Entries removed between listing and stat are left out.
func (s *Service) ReadDirectory(path string) Result[[]DirectoryEntry] {
	p := s.resolver.Resolve(path)

	names, err := s.fs.ReadDirNames(p.String())
	if err != nil {
		return record(s, opReadDirectory, failOS[[]DirectoryEntry](opReadDirectory, p.String(), err))
	}

	entries := make([]DirectoryEntry, 0, len(names))
	for _, name := range names {
		child := s.resolver.Join(p, name)
		info, err := s.fs.Stat(child.String())
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("entry vanished during listing", zap.String("path", child.String()))
			continue
		}
		if err != nil {
			return record(s, opReadDirectory, failOS[[]DirectoryEntry](opReadDirectory, child.String(), err))
		}
		entries = append(entries, newDirectoryEntry(child.String(), info))
	}
	return record(s, opReadDirectory, succeed(entries))
}

// Exists reports whether anything is at path. Errors, including permission
// errors, count as absence.
func (s *Service) Exists(path string) bool {
	_, err := s.fs.Stat(s.resolver.Resolve(path).String())
	s.metrics.FileOp(opExists, true)
	return err == nil
}

// DirectoryExists reports whether path is a directory.
func (s *Service) DirectoryExists(path string) bool {
	info, err := s.fs.Stat(s.resolver.Resolve(path).String())
	s.metrics.FileOp(opDirectoryExists, true)
	return err == nil && info.IsDir()
}

func newDirectoryEntry(path string, info os.FileInfo) DirectoryEntry {
	kind := KindFile
	if info.IsDir() {
		kind = KindDirectory
	}
	return DirectoryEntry{
		Name:     info.Name(),
		Path:     path,
		Type:     kind,
		Size:     info.Size(),
		Modified: info.ModTime(),
		Created:  birthTime(info),
	}
}

func record[T any](s *Service, op string, r Result[T]) Result[T] {
	s.metrics.FileOp(op, r.OK())
	if r.Err == nil {
		return r
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("path", r.Err.Path),
		zap.Stringer("kind", r.Err.Kind),
		zap.Error(r.Err.Err),
	}
	if r.Err.Kind == KindInternal {
		s.logger.Error("file operation failed", fields...)
	} else {
		s.logger.Info("file operation failed", fields...)
	}
	return r
}
