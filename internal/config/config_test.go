package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 17200, cfg.Port)
	assert.Equal(t, 17201, cfg.TLSPort())
	assert.Equal(t, "0.0.0.0", cfg.Bind)
	assert.Equal(t, "~/Public/mount", cfg.AllowedMountBase)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)

	t.Setenv("LJC_PORT", "9000")
	t.Setenv("LJC_BIND", "127.0.0.1")
	t.Setenv("LJC_ALLOWED_MOUNT", "/srv/mounts")
	t.Setenv("LJC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 9001, cfg.TLSPort())
	assert.Equal(t, "127.0.0.1", cfg.Bind)
	assert.Equal(t, "/srv/mounts", cfg.AllowedMountBase)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("LJC_PORT", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandTilde("~/Public/mount")
	require.NoError(t, err)
	assert.Equal(t, home+"/Public/mount", got)

	got, err = ExpandTilde("/already/absolute")
	require.NoError(t, err)
	assert.Equal(t, "/already/absolute", got)

	got, err = ExpandTilde("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LJC_PORT", "LJC_BIND", "LJC_ALLOWED_MOUNT", "LJC_LOG_FILE", "LJC_LOG_LEVEL"} {
		require.NoError(t, os.Unsetenv(key))
	}
}
