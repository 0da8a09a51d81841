//go:build !windows

package fs

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingFS counts directory creation and can inject listing entries and
// failures.
type recordingFS struct {
	*LocalFileSystem
	mkdirs    []string
	ghosts    []string
	removeErr error
}

func (r *recordingFS) MkdirAll(path string) error {
	r.mkdirs = append(r.mkdirs, path)
	return r.LocalFileSystem.MkdirAll(path)
}

func (r *recordingFS) ReadDirNames(path string) ([]string, error) {
	names, err := r.LocalFileSystem.ReadDirNames(path)
	if err != nil {
		return nil, err
	}
	return append(names, r.ghosts...), nil
}

func (r *recordingFS) Remove(path string) error {
	if r.removeErr != nil {
		return r.removeErr
	}
	return r.LocalFileSystem.Remove(path)
}

func newMemService() (*Service, *recordingFS) {
	fsys := &recordingFS{LocalFileSystem: NewLocalFileSystem(afero.NewMemMapFs())}
	resolver := NewPathResolverAt(fixedWd("/workspace"))
	return NewService(fsys, resolver, nil, nil), fsys
}

func TestCreateFileUnderRootSkipsMkdir(t *testing.T) {
	s, fsys := newMemService()

	require.True(t, s.CreateFile("/top.txt").OK())
	assert.Empty(t, fsys.mkdirs)
	assert.True(t, s.Exists("/top.txt"))

	require.True(t, s.CreateFile("/workspace/src/index.js").OK())
	assert.Equal(t, []string{"/workspace/src"}, fsys.mkdirs)
}

func TestReadDirectorySkipsVanishedEntries(t *testing.T) {
	s, fsys := newMemService()
	require.True(t, s.CreateFolder("/workspace").OK())
	require.True(t, s.WriteFile("real.txt", "x").OK())
	fsys.ghosts = []string{"deleted-meanwhile.txt"}

	r := s.ReadDirectory("")
	require.True(t, r.OK())
	require.Len(t, r.Value, 1)
	assert.Equal(t, "real.txt", r.Value[0].Name)
	assert.Equal(t, "/workspace/real.txt", r.Value[0].Path)
}

func TestUnexpectedErrorsAreInternal(t *testing.T) {
	s, fsys := newMemService()
	require.True(t, s.CreateFile("/workspace/a.txt").OK())
	fsys.removeErr = errors.New("backend exploded")

	r := s.Delete("/workspace/a.txt")
	require.False(t, r.OK())
	assert.Equal(t, KindInternal, r.Err.Kind)
	assert.Equal(t, "delete", r.Err.Op)
	assert.EqualError(t, r.Err, "backend exploded")
}

func TestRootGuardDoesNotTouchFilesystem(t *testing.T) {
	s, fsys := newMemService()

	for _, path := range []string{"/", "/.", "/workspace/..", "../../.."} {
		assert.Equal(t, KindGuard, s.CreateFolder(path).Err.Kind, path)
		assert.Equal(t, KindGuard, s.Delete(path).Err.Kind, path)
		assert.Equal(t, KindGuard, s.Move(path, "/tmp").Err.Kind, path)
		assert.Equal(t, KindGuard, s.Rename(path, "/tmp/x").Err.Kind, path)
	}
	assert.Empty(t, fsys.mkdirs)
}
