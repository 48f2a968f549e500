package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "git", cfg.GitBinary)
	assert.Equal(t, "rg", cfg.RipgrepBinary)
	assert.Equal(t, "grep", cfg.GrepBinary)
	assert.Equal(t, 5*time.Minute, cfg.CloneTimeout)
	assert.Equal(t, 30*time.Second, cfg.SearchTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.CacheRoot)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REPOSCOUT_CACHE_ROOT", "/srv/cache")
	t.Setenv("REPOSCOUT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/cache", cfg.CacheRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reposcout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("git_binary: /opt/git/bin/git\nclone_timeout: 90s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/git/bin/git", cfg.GitBinary)
	assert.Equal(t, 90*time.Second, cfg.CloneTimeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
