// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

// Package config loads and validates service configuration from a YAML
// file, environment overrides, and command-line flags.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds all service settings.
type Config struct {
	Listen        string `koanf:"listen"`
	MetricsListen string `koanf:"metrics_listen"`
	LogFormat     string `koanf:"log_format"`
	DatabaseURL   string `koanf:"database_url"`

	Redis  Redis  `koanf:"redis"`
	SMTP   SMTP   `koanf:"smtp"`
	Hasher Hasher `koanf:"hasher"`
}

// Redis configures the session cache connection.
type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`

	// SessionTTL bounds how long an untouched session survives; zero
	// delegates expiry entirely to the server's eviction policy.
	SessionTTL time.Duration `koanf:"session_ttl"`
}

// SMTP configures the password-recovery mailer.
type SMTP struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Username   string `koanf:"username"`
	Password   string `koanf:"password"`
	From       string `koanf:"from"`
	Encryption string `koanf:"encryption"`
}

// Hasher selects the password hashing strategy.
type Hasher struct {
	BcryptCost int `koanf:"bcrypt_cost"`

	// Dev switches to the deterministic development hasher. Never enable
	// outside tests and local fixtures.
	Dev bool `koanf:"dev"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Listen:        ":8080",
		MetricsListen: "127.0.0.1:9100",
		LogFormat:     "json",
		Redis: Redis{
			Addr:       "127.0.0.1:6379",
			SessionTTL: 24 * time.Hour,
		},
		SMTP: SMTP{
			Port:       587,
			Encryption: "starttls",
		},
		Hasher: Hasher{
			BcryptCost: 12,
		},
	}
}

// Load reads configuration in increasing precedence: defaults, YAML file
// (if path is non-empty), the DATABASE_URL environment variable, then
// command-line flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen address is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be 'json' or 'text'")
	}
	if c.Redis.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("redis address is required")
	}
	if c.Hasher.BcryptCost < 4 || c.Hasher.BcryptCost > 31 {
		return oops.Code("CONFIG_INVALID").
			With("bcrypt_cost", c.Hasher.BcryptCost).
			Errorf("bcrypt_cost must be between 4 and 31")
	}
	return nil
}
