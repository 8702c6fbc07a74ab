package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workguide/guide-server/internal/config"
)

func resetRootFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		for _, name := range []string{"data-path", "env-file", "log-level", "env"} {
			f := rootCmd.PersistentFlags().Lookup(name)
			require.NotNil(t, f, name)
			require.NoError(t, f.Value.Set(f.DefValue))
			f.Changed = false
		}
	})
}

func TestConfigArgs_UnsetFlagsAreNotPassed(t *testing.T) {
	resetRootFlags(t)

	assert.Equal(t, []string{"-env-file", ".env"}, configArgs())
}

func TestConfigArgs_PassesChangedFlags(t *testing.T) {
	resetRootFlags(t)

	flags := rootCmd.PersistentFlags()
	require.NoError(t, flags.Set("log-level", "debug"))
	require.NoError(t, flags.Set("data-path", "/srv/guides"))
	require.NoError(t, flags.Set("env", "staging"))

	assert.Equal(t, []string{
		"-env-file", ".env",
		"-log-level", "debug",
		"-data-path", "/srv/guides",
		"-env", "staging",
	}, configArgs())
}

func TestConfigArgs_LogLevelFromEnvironment(t *testing.T) {
	resetRootFlags(t)
	dir := t.TempDir()
	t.Setenv("LOG_LEVEL", "error")

	flags := rootCmd.PersistentFlags()
	require.NoError(t, flags.Set("data-path", dir))
	require.NoError(t, flags.Set("env-file", filepath.Join(dir, "missing.env")))

	cfg, err := config.Load(configArgs())
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logger.Level)
	assert.Equal(t, dir, cfg.Storage.DataPath)
}
