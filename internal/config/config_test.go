// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boavaga/boavaga/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsListen)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "starttls", cfg.SMTP.Encryption)
	assert.Equal(t, 12, cfg.Hasher.BcryptCost)
	assert.False(t, cfg.Hasher.Dev)
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeConfigFile(t, `
listen: ":9090"
log_format: text
database_url: postgres://file/boavaga
redis:
  addr: redis.internal:6379
  session_ttl: 1h
smtp:
  host: smtp.internal
  from: noreply@example.com
hasher:
  bcrypt_cost: 10
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "postgres://file/boavaga", cfg.DatabaseURL)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, "smtp.internal", cfg.SMTP.Host)
	assert.Equal(t, "noreply@example.com", cfg.SMTP.From)
	assert.Equal(t, 10, cfg.Hasher.BcryptCost)

	// Values the file leaves out keep their defaults.
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeConfigFile(t, `listen: ":9090"`)

	defaults := config.Default()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen", defaults.Listen, "")
	flags.String("log_format", defaults.LogFormat, "")
	require.NoError(t, flags.Set("listen", ":7070"))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Listen, "a set flag wins over the file")
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_UnchangedFlagDoesNotClobberFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeConfigFile(t, `log_format: text`)

	defaults := config.Default()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log_format", defaults.LogFormat, "")

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat, "an untouched flag must not override the file")
}

func TestLoad_DatabaseURLEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `database_url: postgres://file/boavaga`)
	t.Setenv("DATABASE_URL", "postgres://env/boavaga")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/boavaga", cfg.DatabaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults are valid", func(*config.Config) {}, false},
		{"missing listen", func(c *config.Config) { c.Listen = "" }, true},
		{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }, true},
		{"missing redis addr", func(c *config.Config) { c.Redis.Addr = "" }, true},
		{"bcrypt cost too low", func(c *config.Config) { c.Hasher.BcryptCost = 3 }, true},
		{"bcrypt cost too high", func(c *config.Config) { c.Hasher.BcryptCost = 32 }, true},
		{"text format ok", func(c *config.Config) { c.LogFormat = "text" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
