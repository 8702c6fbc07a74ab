package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENV", "LOG_LEVEL", "DATA_PATH", "SERVER_PORT", "SERVER_PUBLIC_URL",
	"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	"IMPORT_RATE_LIMIT", "FEEDBACK_IMPORT_POLICY",
}

// clearEnv blanks every config variable for the test; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/some/path"},
		Server:  ServerConfig{Port: "8080"},
		Import:  ImportConfig{RatePerMinute: 6, Burst: 3, FeedbackPolicy: "append"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"WARN", true},
		{"error", true},
		{"trace", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }},
		{"non-numeric port", func(c *Config) { c.Server.Port = "http" }},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }},
		{"zero import rate", func(c *Config) { c.Import.RatePerMinute = 0 }},
		{"unknown feedback policy", func(c *Config) { c.Import.FeedbackPolicy = "dedupe" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, filepath.Join(homeDir, "WorkGuides"), cfg.Storage.DataPath)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 6, cfg.Import.RatePerMinute)
	assert.Equal(t, "append", cfg.Import.FeedbackPolicy)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	envFile := filepath.Join(dir, ".env")
	content := "# comment\n\nLOG_LEVEL=debug\nSERVER_PORT=9000\nFEEDBACK_IMPORT_POLICY=\"skip-duplicates\"\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// Environment beats the .env file; flags beat both.
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load([]string{"-env-file", envFile, "-data-path", dir, "-public-url", "https://guides.example.com/"})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "skip-duplicates", cfg.Import.FeedbackPolicy)
	assert.Equal(t, dir, cfg.Storage.DataPath)
	assert.Equal(t, "https://guides.example.com", cfg.Server.PublicURL)
	assert.Equal(t, filepath.Join(dir, "db"), cfg.Storage.DBPath())
	assert.Equal(t, filepath.Join(dir, "search"), cfg.Storage.SearchPath())
}

func TestLoad_EnvFileFillsEmptyVariables(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=error\nENV=staging\n"), 0o600))

	// Exported but empty, as with LOG_LEVEL= in a unit file.
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENV", "production")

	cfg, err := Load([]string{"-env-file", envFile, "-data-path", dir})
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logger.Level)
	assert.Equal(t, "production", cfg.App.Environment)
}

func TestLoad_InvalidValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad duration", "SERVER_READ_TIMEOUT", "soon"},
		{"bad rate", "IMPORT_RATE_LIMIT", "many"},
		{"bad env", "ENV", "qa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load([]string{"-env-file", missing})
			assert.Error(t, err)
		})
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/guides", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "guides"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/abs//path/", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = expandPath("relative", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
