package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"syscall"
)

// ErrorKind classifies why an operation failed.
type ErrorKind int

const (
	// KindOS is an error reported by the filesystem, passed through as is.
	KindOS ErrorKind = iota
	// KindGuard is a mutation rejected before touching the filesystem.
	KindGuard
	// KindValidation is a malformed request.
	KindValidation
	// KindInternal is anything unexpected.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindOS:
		return "os"
	case KindGuard:
		return "guard"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

var (
	ErrRootDirectory    = errors.New("cannot create directory at filesystem root")
	ErrRootModification = errors.New("cannot modify filesystem root")
)

// OpError is the failure half of a Result. Its message is the message of the
// underlying error so OS and guard reasons reach the caller unchanged.
type OpError struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Empty is the payload of operations that only report success.
type Empty struct{}

// Result is the outcome of exactly one file operation: either Value is set
// and Err is nil, or Err describes the failure.
type Result[T any] struct {
	Value T
	Err   *OpError
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

func succeed[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func fail[T any](kind ErrorKind, op, path string, err error) Result[T] {
	return Result[T]{Err: &OpError{Kind: kind, Op: op, Path: path, Err: err}}
}

// failOS wraps an error returned by a FileSystem. Errors that do not look like
// they came from a filesystem call are reported as internal.
func failOS[T any](op, path string, err error) Result[T] {
	kind := KindInternal
	if isOSError(err) {
		kind = KindOS
	}
	return fail[T](kind, op, path, err)
}

func isOSError(err error) bool {
	var (
		pathErr    *iofs.PathError
		linkErr    *os.LinkError
		syscallErr *os.SyscallError
		errno      syscall.Errno
	)
	switch {
	case errors.As(err, &pathErr), errors.As(err, &linkErr), errors.As(err, &syscallErr), errors.As(err, &errno):
		return true
	case errors.Is(err, iofs.ErrNotExist), errors.Is(err, iofs.ErrPermission), errors.Is(err, iofs.ErrExist):
		return true
	}
	return false
}
