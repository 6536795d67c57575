package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOLSA_AUTH_JWT_SECRET", "secret")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "matching:generation", cfg.Redis.QueueName)
	assert.Equal(t, 24*time.Hour, cfg.Redis.StatusTTL)
	assert.Equal(t, 30.0, cfg.Matching.GenerateMinScore)
	assert.Equal(t, 20, cfg.Matching.GenerateLimit)
	assert.Equal(t, 30*time.Second, cfg.Matching.LockTTL)
	assert.Equal(t, 2, cfg.Worker.Workers)
	assert.Equal(t, 5*time.Second, cfg.Worker.DequeueTimeout)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bolsa.yaml")
	yaml := `
server:
  port: "9090"
db:
  host: db.internal
  name: placement
auth:
  enabled: false
matching:
  generate_limit: 50
worker:
  workers: 4
  dequeue_timeout: 2s
log:
  level: debug
  json: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("BOLSA_DB_HOST", "db.override")
	t.Setenv("BOLSA_REDIS_ADDR", "redis:6380")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.override", cfg.DB.Host)
	assert.Equal(t, "placement", cfg.DB.Name)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 50, cfg.Matching.GenerateLimit)
	assert.Equal(t, 4, cfg.Worker.Workers)
	assert.Equal(t, 2*time.Second, cfg.Worker.DequeueTimeout)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	// auth enabled by default but no secret
	_, err = Load("")
	assert.ErrorContains(t, err, "auth.jwt_secret")
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "require"}

	assert.Equal(t, "host=h port=5433 user=u password=p dbname=n sslmode=require", c.DSN())
}
