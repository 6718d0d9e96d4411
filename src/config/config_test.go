package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "2000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Minio.Enabled())
}

func TestLoadLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"8080\"\ncache:\n  ttl: 90s\nlimit:\n  burst: 3\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("JWT_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 3, cfg.Limit.Burst)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, cfg.Server.Host+":9090", cfg.Server.Addr())
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "postgres"
	assert.Error(t, cfg.Validate())
	cfg.Database.Host, cfg.Database.Name = "db", "yemenflix"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Auth.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load()
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}
