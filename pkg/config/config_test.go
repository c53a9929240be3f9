package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, ":5000", cfg.Listen)
		assert.Empty(t, cfg.StorePath)
		assert.GreaterOrEqual(t, cfg.Workers, 1)

		l, err := cfg.LogLevel()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, l)
	})

	t.Run("file", func(t *testing.T) {
		path := writeFile(t, "simmap.yaml", `
listen: ":8080"
storePath: /tmp/maps
preload: [a.yaml, b]
workers: 2
log:
  level: debug
  json: true
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Listen)
		assert.Equal(t, "/tmp/maps", cfg.StorePath)
		assert.Equal(t, []string{"a.yaml", "b"}, cfg.Preload)
		assert.Equal(t, 2, cfg.Workers)
		assert.True(t, cfg.Log.JSON)
		assert.True(t, cfg.Log.Concise)
		assert.Len(t, cfg.BuildOptions(), 2)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeFile(t, "simmap.yaml", "listen: \":8080\"\nworkers: 2\n")
		t.Setenv("SIMMAP_LISTEN", ":9090")
		t.Setenv("SIMMAP_WORKERS", "3")
		t.Setenv("SIMMAP_PRELOAD", "x, y,,")
		t.Setenv("SIMMAP_LOG_JSON", "true")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Listen)
		assert.Equal(t, 3, cfg.Workers)
		assert.Equal(t, []string{"x", "y"}, cfg.Preload)
		assert.True(t, cfg.Log.JSON)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.True(t, domain.Is(err, domain.ErrNotFound))

		_, err = config.Load(writeFile(t, "bad.yaml", "unknown: 1\n"))
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))

		_, err = config.Load(writeFile(t, "bad.yaml", "workers: 0\n"))
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))

		_, err = config.Load(writeFile(t, "bad.yaml", "log: {level: loud}\n"))
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))

		t.Setenv("SIMMAP_STEP", "fast")
		_, err = config.Load("")
		assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "SIMMAP_STORE=/data/maps\n")
	t.Setenv("SIMMAP_STORE", "")
	require.NoError(t, os.Unsetenv("SIMMAP_STORE"))

	require.NoError(t, config.LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	t.Cleanup(func() { _ = os.Unsetenv("SIMMAP_STORE") })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/data/maps", cfg.StorePath)
}
