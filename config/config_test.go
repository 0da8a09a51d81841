package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, ".", cfg.Server.StaticDir)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, BackendLocal, cfg.FS.Backend)

	assert.Equal(t, 256, cfg.Watch.BufferSize)
	assert.Equal(t, 15*time.Second, cfg.Watch.Heartbeat)
	assert.True(t, cfg.Watch.Recursive)
	assert.Equal(t, []string{"**/.git", "**/node_modules"}, cfg.Watch.Ignore)

	assert.True(t, cfg.Command.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":              "9000",
		"HOST":              "127.0.0.1",
		"STATIC_DIR":        "",
		"LOG_LEVEL":         "debug",
		"LOG_DEV":           "true",
		"WATCH_BUFFER_SIZE": "8",
		"WATCH_HEARTBEAT":   "2s",
		"WATCH_RECURSIVE":   "false",
		"WATCH_IGNORE":      "**/dist, *.tmp",
		"COMMAND_ENABLED":   "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, "", cfg.Server.StaticDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 8, cfg.Watch.BufferSize)
	assert.Equal(t, 2*time.Second, cfg.Watch.Heartbeat)
	assert.False(t, cfg.Watch.Recursive)
	assert.Equal(t, []string{"**/dist", "*.tmp"}, cfg.Watch.Ignore)
	assert.False(t, cfg.Command.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown backend",
			env:  map[string]string{"FS_BACKEND": "ftp"},
		},
		{
			name: "sftp without address",
			env:  map[string]string{"FS_BACKEND": "sftp", "SFTP_USER": "dev"},
		},
		{
			name: "zero buffer",
			env:  map[string]string{"WATCH_BUFFER_SIZE": "0"},
		},
		{
			name: "bad ignore pattern",
			env:  map[string]string{"WATCH_IGNORE": "[abc"},
		},
		{
			name: "bad duration",
			env:  map[string]string{"WATCH_HEARTBEAT": "soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := Load()
			assert.Error(t, err)

			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestLoadSFTPBackend(t *testing.T) {
	t.Setenv("FS_BACKEND", "sftp")
	t.Setenv("SFTP_ADDR", "devbox:22")
	t.Setenv("SFTP_USER", "dev")
	t.Setenv("SFTP_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSFTP, cfg.FS.Backend)
	assert.Equal(t, "devbox:22", cfg.FS.SFTPAddr)
	assert.Equal(t, "dev", cfg.FS.SFTPUser)
	assert.Equal(t, "secret", cfg.FS.SFTPPassword)
}
