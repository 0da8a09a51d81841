package fs

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const posixRenameExtension = "posix-rename@openssh.com"

// SFTPFileSystem serves files from a remote workspace over SFTP.
type SFTPFileSystem struct {
	*sftp.Client
	sshClient *ssh.Client
	logger    *zap.Logger
}

// SFTPOptions describes how to reach the remote workspace.
type SFTPOptions struct {
	Addr       string
	User       string
	Password   string
	KnownHosts string
}

// DialSFTP opens an SSH connection and starts an SFTP session on it.
func DialSFTP(opts SFTPOptions, logger *zap.Logger) (*SFTPFileSystem, error) {
	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if opts.KnownHosts != "" {
		cb, err := knownhosts.New(opts.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
		hostKeyCallback = cb
	} else {
		logger.Warn("sftp host key is not verified", zap.String("addr", opts.Addr))
	}

	sshClient, err := ssh.Dial("tcp", opts.Addr, &ssh.ClientConfig{
		User:            opts.User,
		Auth:            []ssh.AuthMethod{ssh.Password(opts.Password)},
		HostKeyCallback: hostKeyCallback,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial ssh: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}
	return NewSFTPFileSystem(sshClient, sftpClient, logger), nil
}

// NewSFTPFileSystem wraps an established SFTP session. sshClient may be nil
// when the session does not run over SSH.
func NewSFTPFileSystem(sshClient *ssh.Client, sftpClient *sftp.Client, logger *zap.Logger) *SFTPFileSystem {
	return &SFTPFileSystem{
		Client:    sftpClient,
		sshClient: sshClient,
		logger:    logger,
	}
}

func (s *SFTPFileSystem) ReadFile(path string) ([]byte, error) {
	f, err := s.Client.Open(path)
	if err != nil {
		return nil, pathError("open", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, pathError("read", path, err)
	}
	return data, nil
}

func (s *SFTPFileSystem) WriteFile(path string, data []byte) error {
	f, err := s.Client.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return pathError("open", path, err)
	}
	if len(data) > 0 {
		if _, err := f.Write(data); err != nil {
			f.Close()
			return pathError("write", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return pathError("close", path, err)
	}
	return nil
}

func (s *SFTPFileSystem) MkdirAll(path string) error {
	return pathError("mkdir", path, s.Client.MkdirAll(path))
}

func (s *SFTPFileSystem) Stat(path string) (os.FileInfo, error) {
	info, err := s.Client.Stat(path)
	if err != nil {
		return nil, pathError("stat", path, err)
	}
	return info, nil
}

func (s *SFTPFileSystem) ReadDirNames(path string) ([]string, error) {
	infos, err := s.Client.ReadDir(path)
	if err != nil {
		return nil, pathError("readdir", path, err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *SFTPFileSystem) Remove(path string) error {
	return pathError("remove", path, s.Client.Remove(path))
}

func (s *SFTPFileSystem) RemoveAll(path string) error {
	return pathError("remove", path, s.Client.RemoveAll(path))
}

// Rename replaces an existing target when the server supports POSIX rename,
// matching local rename semantics.
func (s *SFTPFileSystem) Rename(oldPath, newPath string) error {
	if _, ok := s.Client.HasExtension(posixRenameExtension); ok {
		return linkError("rename", oldPath, newPath, s.Client.PosixRename(oldPath, newPath))
	}
	return linkError("rename", oldPath, newPath, s.Client.Rename(oldPath, newPath))
}

// Close ends the SFTP session and the SSH connection under it.
func (s *SFTPFileSystem) Close() error {
	err := s.Client.Close()
	if s.sshClient != nil {
		if cerr := s.sshClient.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// pathError gives remote failures the same shape as local ones so callers
// report them as filesystem errors.
func pathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*os.PathError); ok {
		return err
	}
	return &os.PathError{Op: op, Path: path, Err: err}
}

func linkError(op, oldPath, newPath string, err error) error {
	if err == nil {
		return nil
	}
	return &os.LinkError{Op: op, Old: oldPath, New: newPath, Err: err}
}
