package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

database:
  url: "postgres://app:secret@db:5432/playlists?sslmode=disable"
  max_open_conns: 40

redis:
  url: "redis://cache:6379/0"

cache:
  songs_ttl_seconds: 600

queue:
  export_queue_url: "https://sqs.eu-west-1.amazonaws.com/123/export-songs"
  region: "eu-west-1"

mail:
  from_email: "noreply@example.com"

log:
  level: debug
  redact_pii: false
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 40, cfg.Database.MaxOpenConns)
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SongsTTL())
	assert.Equal(t, "eu-west-1", cfg.Queue.Region)
	assert.Equal(t, "eu-west-1", cfg.Mail.Region)
	assert.Equal(t, "noreply@example.com", cfg.Mail.FromEmail)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.ShouldRedact())
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("server:\n  host: example\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout())
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime())
	assert.Equal(t, 30*time.Minute, cfg.Cache.SongsTTL())
	assert.Equal(t, 2*time.Second, cfg.Cache.InvalidateTimeout())
	assert.Equal(t, int32(20), cfg.Queue.WaitTimeSeconds)
	assert.Equal(t, 5*time.Second, cfg.Queue.PublishTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.ShouldRedact())
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("database:\n  url: \"postgres://file\"\n"), 0644)
	require.NoError(t, err)

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("SQS_EXPORT_QUEUE_URL", "https://sqs.local/export")
	t.Setenv("PORT", "7070")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Database.URL)
	assert.Equal(t, "https://sqs.local/export", cfg.Queue.ExportQueueURL)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadFromEnv_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_KEY", "secret")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Auth.AccessTokenKey)
	assert.Equal(t, 5000, cfg.Server.Port)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}
