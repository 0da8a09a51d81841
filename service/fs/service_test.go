package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedWd(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func newTempService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	resolver := NewPathResolverAt(fixedWd(dir))
	return NewService(NewLocalFileSystem(afero.NewOsFs()), resolver, nil, nil), dir
}

func TestService(t *testing.T) {
	s, dir := newTempService(t)

	t.Run("Write and read round trip", func(t *testing.T) {
		content := "# 测试文件\n\nemoji 🚀 and plain text"
		require.True(t, s.WriteFile("notes.md", content).OK())

		r := s.ReadFile(filepath.Join(dir, "notes.md"))
		require.True(t, r.OK())
		assert.Equal(t, content, r.Value)
	})

	t.Run("Write overwrites", func(t *testing.T) {
		require.True(t, s.WriteFile("overwrite.txt", "a long first version").OK())
		require.True(t, s.WriteFile("overwrite.txt", "short").OK())
		assert.Equal(t, "short", s.ReadFile("overwrite.txt").Value)
	})

	t.Run("Write with empty content", func(t *testing.T) {
		require.True(t, s.WriteFile("empty.txt", "").OK())
		r := s.ReadFile("empty.txt")
		require.True(t, r.OK())
		assert.Equal(t, "", r.Value)
	})

	t.Run("Write does not create parents", func(t *testing.T) {
		r := s.WriteFile("missing/dir/file.txt", "x")
		require.False(t, r.OK())
		assert.Equal(t, KindOS, r.Err.Kind)
		assert.ErrorIs(t, r.Err, os.ErrNotExist)
		assert.False(t, s.Exists("missing"))
	})

	t.Run("Read missing file", func(t *testing.T) {
		r := s.ReadFile("does-not-exist.txt")
		require.False(t, r.OK())
		assert.Equal(t, KindOS, r.Err.Kind)
		assert.ErrorIs(t, r.Err, os.ErrNotExist)
	})

	t.Run("Read directory fails", func(t *testing.T) {
		require.True(t, s.CreateFolder("a-dir").OK())
		r := s.ReadFile("a-dir")
		require.False(t, r.OK())
		assert.Equal(t, KindOS, r.Err.Kind)
	})

	t.Run("CreateFile creates parents", func(t *testing.T) {
		require.True(t, s.CreateFile("deep/nested/file.txt").OK())
		assert.True(t, s.DirectoryExists("deep/nested"))
		assert.True(t, s.Exists("deep/nested/file.txt"))
		assert.Equal(t, "", s.ReadFile("deep/nested/file.txt").Value)
	})

	t.Run("CreateFile truncates an existing file", func(t *testing.T) {
		require.True(t, s.WriteFile("keep.txt", "data").OK())
		require.True(t, s.CreateFile("keep.txt").OK())
		assert.Equal(t, "", s.ReadFile("keep.txt").Value)
	})

	t.Run("CreateFolder", func(t *testing.T) {
		require.True(t, s.CreateFolder("x/y/z").OK())
		assert.True(t, s.DirectoryExists("x/y/z"))
		assert.True(t, s.CreateFolder("x/y/z").OK(), "existing directory is not an error")
	})

	t.Run("CreateFolder at root is rejected", func(t *testing.T) {
		root := s.Resolver().Resolve(dir).Root()
		r := s.CreateFolder(root)
		require.False(t, r.OK())
		assert.Equal(t, KindGuard, r.Err.Kind)
		assert.EqualError(t, r.Err, "cannot create directory at filesystem root")
	})

	t.Run("Delete file and directory", func(t *testing.T) {
		require.True(t, s.CreateFile("trash/sub/a.txt").OK())
		require.True(t, s.WriteFile("single.txt", "x").OK())

		require.True(t, s.Delete("single.txt").OK())
		assert.False(t, s.Exists("single.txt"))

		require.True(t, s.Delete("trash").OK())
		assert.False(t, s.Exists("trash"))
	})

	t.Run("Delete missing path", func(t *testing.T) {
		r := s.Delete("nothing-here")
		require.False(t, r.OK())
		assert.Equal(t, KindOS, r.Err.Kind)
	})

	t.Run("Delete root is rejected", func(t *testing.T) {
		root := s.Resolver().Resolve(dir).Root()
		r := s.Delete(root)
		require.False(t, r.OK())
		assert.Equal(t, KindGuard, r.Err.Kind)
		assert.EqualError(t, r.Err, "cannot modify filesystem root")
	})

	t.Run("Rename", func(t *testing.T) {
		require.True(t, s.WriteFile("old.txt", "content").OK())
		require.True(t, s.Rename("old.txt", "new.txt").OK())
		assert.False(t, s.Exists("old.txt"))
		assert.Equal(t, "content", s.ReadFile("new.txt").Value)

		root := s.Resolver().Resolve(dir).Root()
		r := s.Rename("new.txt", root)
		require.False(t, r.OK())
		assert.Equal(t, KindGuard, r.Err.Kind)
		assert.True(t, s.Exists("new.txt"))

		r = s.Rename("missing.txt", "other.txt")
		require.False(t, r.OK())
		assert.Equal(t, KindOS, r.Err.Kind)
	})

	t.Run("Move", func(t *testing.T) {
		require.True(t, s.WriteFile("moving.txt", "payload").OK())
		require.True(t, s.CreateFolder("target").OK())

		r := s.Move("moving.txt", "target")
		require.True(t, r.OK())
		assert.Equal(t, filepath.Join(dir, "target", "moving.txt"), r.Value)
		assert.True(t, s.Exists(r.Value))
		assert.False(t, s.Exists("moving.txt"))
	})

	t.Run("Move into missing directory", func(t *testing.T) {
		require.True(t, s.WriteFile("stay.txt", "x").OK())
		r := s.Move("stay.txt", "no-such-dir")
		require.False(t, r.OK())
		assert.True(t, s.Exists("stay.txt"))
	})

	t.Run("Exists never fails", func(t *testing.T) {
		assert.False(t, s.Exists("nope/nope"))
		assert.False(t, s.DirectoryExists("nope"))
		assert.True(t, s.Exists(dir))
		assert.True(t, s.DirectoryExists(dir))

		require.True(t, s.WriteFile("plain.txt", "").OK())
		assert.True(t, s.Exists("plain.txt"))
		assert.False(t, s.DirectoryExists("plain.txt"))
	})
}

func TestServiceReadDirectory(t *testing.T) {
	s, dir := newTempService(t)

	require.True(t, s.WriteFile("b.txt", "12345").OK())
	require.True(t, s.CreateFolder("a-folder").OK())

	r := s.ReadDirectory(dir)
	require.True(t, r.OK())
	require.Len(t, r.Value, 2)

	folder, file := r.Value[0], r.Value[1]
	assert.Equal(t, "a-folder", folder.Name)
	assert.Equal(t, KindDirectory, folder.Type)
	assert.Equal(t, filepath.Join(dir, "a-folder"), folder.Path)

	assert.Equal(t, "b.txt", file.Name)
	assert.Equal(t, KindFile, file.Type)
	assert.Equal(t, int64(5), file.Size)
	assert.False(t, file.Modified.IsZero())
	assert.False(t, file.Created.IsZero())

	empty := s.ReadDirectory("a-folder")
	require.True(t, empty.OK())
	assert.Empty(t, empty.Value)

	missing := s.ReadDirectory("missing")
	require.False(t, missing.OK())
	assert.Equal(t, KindOS, missing.Err.Kind)
}
