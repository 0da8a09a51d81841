package fs

import (
	"net"
	"os"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newInMemorySFTP connects a client to an in-memory SFTP server over a pipe.
func newInMemorySFTP(t *testing.T) *SFTPFileSystem {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	server := sftp.NewRequestServer(serverConn, sftp.InMemHandler())
	go server.Serve()

	client, err := sftp.NewClientPipe(clientConn, clientConn)
	require.NoError(t, err)

	remote := NewSFTPFileSystem(nil, client, zap.NewNop())
	t.Cleanup(func() {
		remote.Close()
		server.Close()
	})
	return remote
}

func TestSFTPFileSystem(t *testing.T) {
	remote := newInMemorySFTP(t)

	wd, err := remote.Getwd()
	require.NoError(t, err)
	s := NewService(remote, NewRemotePathResolver(fixedWd(wd)), nil, nil)

	t.Run("Create folder and write", func(t *testing.T) {
		require.True(t, s.CreateFolder("/project/docs").OK())
		assert.True(t, s.DirectoryExists("/project/docs"))

		require.True(t, s.WriteFile("/project/docs/readme.md", "远程 content").OK())
		r := s.ReadFile("/project/docs/readme.md")
		require.True(t, r.OK())
		assert.Equal(t, "远程 content", r.Value)
	})

	t.Run("List", func(t *testing.T) {
		require.True(t, s.CreateFile("/project/b.txt").OK())
		r := s.ReadDirectory("/project")
		require.True(t, r.OK())
		require.Len(t, r.Value, 2)
		assert.Equal(t, "b.txt", r.Value[0].Name)
		assert.Equal(t, KindFile, r.Value[0].Type)
		assert.Equal(t, "docs", r.Value[1].Name)
		assert.Equal(t, KindDirectory, r.Value[1].Type)
		assert.Equal(t, "/project/docs", r.Value[1].Path)
	})

	t.Run("Move", func(t *testing.T) {
		r := s.Move("/project/b.txt", "/project/docs")
		require.True(t, r.OK())
		assert.Equal(t, "/project/docs/b.txt", r.Value)
		assert.False(t, s.Exists("/project/b.txt"))
		assert.True(t, s.Exists("/project/docs/b.txt"))
	})

	t.Run("Missing file is an OS error", func(t *testing.T) {
		_, err := remote.Stat("/nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)

		r := s.ReadFile("/nope")
		require.False(t, r.OK())
		assert.Equal(t, KindOS, r.Err.Kind)
	})

	t.Run("Delete directory tree", func(t *testing.T) {
		require.True(t, s.Delete("/project").OK())
		assert.False(t, s.Exists("/project"))
	})

	t.Run("Root is guarded", func(t *testing.T) {
		r := s.Delete("/")
		require.False(t, r.OK())
		assert.Equal(t, KindGuard, r.Err.Kind)
	})
}
