package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8081", cfg.Server.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL.Duration)
	assert.Equal(t, 12, cfg.Catalog.DefaultPerPage)
	assert.Equal(t, 100, cfg.Catalog.MaxPerPage)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
driver = "postgres"
url = "postgres://catalog@localhost/catalog"

[catalog]
max_per_page = 50
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 50, cfg.Catalog.MaxPerPage)
	// untouched sections keep their defaults
	assert.Equal(t, 12, cfg.Catalog.DefaultPerPage)
	assert.Equal(t, ":9092", cfg.Server.GRPCAddr)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DATABASE_URL":   "postgres://override",
		"TOKEN_TTL":      "2h",
		"REDIS_ENABLED":  "true",
		"JWT_SECRET_KEY": "from-env",
		"LOG_LEVEL":      "debug",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, "postgres://override", cfg.Database.URL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL.Duration)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)

	env["TOKEN_TTL"] = "soon"
	env["REDIS_ENABLED"] = "maybe"
	err := DefaultConfig().applyEnv(lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_TTL")
	assert.Contains(t, err.Error(), "REDIS_ENABLED")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Driver = "mysql"
	cfg.Auth.JWTSecret = ""
	cfg.Catalog.MaxPerPage = 5
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"database.driver", "jwt_secret", "page sizes", "log level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}
