package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "board-client", cfg.ServiceName)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, StoreFile, cfg.Credential.Store)
	assert.NotEmpty(t, cfg.Credential.Path)
	assert.Equal(t, 4*time.Second, cfg.Notification.Duration)
	assert.Equal(t, "board", cfg.NATS.SubjectPrefix)
	assert.Empty(t, cfg.NATS.URL)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
api:
  base_url: http://board.local:9000
  timeout: 3s
credential:
  store: memory
notification:
  duration: 2s
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))
	t.Setenv("BOARD_LOG_LEVEL", "debug")
	t.Setenv("BOARD_API_TIMEOUT", "7s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://board.local:9000", cfg.API.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.API.Timeout, "env overrides file")
	assert.Equal(t, StoreMemory, cfg.Credential.Store)
	assert.Equal(t, 2*time.Second, cfg.Notification.Duration)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			API:          APIConfig{BaseURL: "http://localhost:8080", Timeout: time.Second},
			Credential:   CredentialConfig{Store: StoreMemory},
			Notification: NotificationConfig{Duration: time.Second},
		}
	}

	require.NoError(t, base().Validate())

	c := base()
	c.API.BaseURL = "localhost"
	assert.Error(t, c.Validate())

	c = base()
	c.Credential.Store = "sqlite"
	assert.Error(t, c.Validate())

	c = base()
	c.Credential.Store = StoreFile
	assert.Error(t, c.Validate(), "file store without path")

	c = base()
	c.Notification.Duration = 0
	assert.Error(t, c.Validate())
}
