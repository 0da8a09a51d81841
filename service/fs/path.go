package fs

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ResolvedPath is an absolute, cleaned path together with the filesystem root
// it belongs to ("/", "C:\", or a UNC share).
type ResolvedPath struct {
	path string
	root string
}

func (p ResolvedPath) String() string {
	return p.path
}

// Root returns the filesystem root the path lives under.
func (p ResolvedPath) Root() string {
	return p.root
}

// PathResolver normalizes user-supplied paths. It never validates: any string
// resolves to something, and deciding whether that something may be touched
// is the guard's job.
type PathResolver struct {
	getwd  func() (string, error)
	remote bool
}

// NewPathResolver resolves host paths against the process working directory.
func NewPathResolver() *PathResolver {
	return &PathResolver{}
}

// NewPathResolverAt resolves host paths against the directory returned by getwd.
func NewPathResolverAt(getwd func() (string, error)) *PathResolver {
	return &PathResolver{getwd: getwd}
}

// NewRemotePathResolver resolves slash-separated paths of a remote POSIX
// filesystem against the directory returned by getwd.
func NewRemotePathResolver(getwd func() (string, error)) *PathResolver {
	return &PathResolver{getwd: getwd, remote: true}
}

// Resolve turns input into an absolute path, handling ".", ".." and, on
// Windows, both separators. Empty input resolves to the working directory.
func (r *PathResolver) Resolve(input string) ResolvedPath {
	if r.remote {
		if path.IsAbs(input) {
			return r.make(path.Clean(input))
		}
		return r.make(path.Join(r.wd("/"), input))
	}

	if r.getwd == nil {
		abs, err := filepath.Abs(input)
		if err != nil {
			abs = filepath.Join(string(filepath.Separator), input)
		}
		return r.make(abs)
	}
	if filepath.IsAbs(input) {
		return r.make(filepath.Clean(input))
	}
	return r.make(filepath.Join(r.wd(string(filepath.Separator)), input))
}

// IsRoot reports whether p has no component below its root.
func (r *PathResolver) IsRoot(p ResolvedPath) bool {
	rest := p.path
	if !r.remote {
		rest = strings.TrimPrefix(rest, filepath.VolumeName(rest))
	}
	return len(components(rest, r.isSeparator)) == 0
}

// Parent returns the directory containing p. The parent of a root is itself.
func (r *PathResolver) Parent(p ResolvedPath) ResolvedPath {
	if r.remote {
		return r.make(path.Dir(p.path))
	}
	return r.make(filepath.Dir(p.path))
}

// Base returns the last element of p.
func (r *PathResolver) Base(p ResolvedPath) string {
	if r.remote {
		return path.Base(p.path)
	}
	return filepath.Base(p.path)
}

// Join appends name to dir.
func (r *PathResolver) Join(dir ResolvedPath, name string) ResolvedPath {
	if r.remote {
		return r.make(path.Join(dir.path, name))
	}
	return r.make(filepath.Join(dir.path, name))
}

func (r *PathResolver) make(abs string) ResolvedPath {
	if r.remote {
		return ResolvedPath{path: abs, root: "/"}
	}
	return ResolvedPath{path: abs, root: filepath.VolumeName(abs) + string(filepath.Separator)}
}

func (r *PathResolver) wd(fallback string) string {
	getwd := r.getwd
	if getwd == nil {
		getwd = os.Getwd
	}
	wd, err := getwd()
	if err != nil || wd == "" {
		return fallback
	}
	return wd
}

func (r *PathResolver) isSeparator(c rune) bool {
	if r.remote {
		return c == '/'
	}
	return os.IsPathSeparator(uint8(c))
}

// components splits p into its non-trivial elements, so "C:." and "/./" both
// count as having none.
func components(p string, isSeparator func(rune) bool) []string {
	var out []string
	for _, part := range strings.FieldsFunc(p, isSeparator) {
		if part == "." {
			continue
		}
		out = append(out, part)
	}
	return out
}
