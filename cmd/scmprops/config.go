// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/scmprops/scmprops/internal/query"
	"github.com/scmprops/scmprops/internal/xdg"
)

// Config is the resolved CLI configuration.
type Config struct {
	DatabaseURL    string        `koanf:"database_url"`
	MetricsAddr    string        `koanf:"metrics_addr"`
	LogFormat      string        `koanf:"log_format"`
	LogLevel       string        `koanf:"log_level"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	ConnectRetries uint64        `koanf:"connect_retries"`
	GlobCacheSize  int           `koanf:"glob_cache_size"`
	AutoMigrate    bool          `koanf:"auto_migrate"`
}

// Default values for configuration keys.
const (
	defaultMetricsAddr    = "127.0.0.1:9100"
	defaultLogFormat      = "text"
	defaultLogLevel       = "info"
	defaultConnectTimeout = 5 * time.Second
	defaultConnectRetries = 6
)

func defaultConfig() Config {
	return Config{
		MetricsAddr:    defaultMetricsAddr,
		LogFormat:      defaultLogFormat,
		LogLevel:       defaultLogLevel,
		ConnectTimeout: defaultConnectTimeout,
		ConnectRetries: defaultConnectRetries,
		GlobCacheSize:  query.DefaultCacheSize,
		AutoMigrate:    true,
	}
}

// Validate checks the values that cannot be checked by the flag parser.
func (cfg Config) Validate() error {
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").With("log_format", cfg.LogFormat).
			Errorf("log_format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	if cfg.ConnectTimeout <= 0 {
		return oops.Code("CONFIG_INVALID").With("connect_timeout", cfg.ConnectTimeout).
			Errorf("connect_timeout must be positive")
	}
	if cfg.GlobCacheSize <= 0 {
		return oops.Code("CONFIG_INVALID").With("glob_cache_size", cfg.GlobCacheSize).
			Errorf("glob_cache_size must be positive")
	}
	return nil
}

// loadConfig layers defaults, the YAML config file and the command line.
//
// The file named by --config must exist; the XDG default is read only when
// present. Flags override the file only when set explicitly. DATABASE_URL is
// used when no database_url was configured.
func loadConfig(flags *pflag.FlagSet, getenv func(string) string) (Config, error) {
	k := koanf.New(".")

	path, explicit := configPath(flags)
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil || explicit {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, oops.Code("CONFIG_INVALID").With("path", path).Wrapf(err, "load config file")
			}
		}
	}

	flagKeys := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if f.Name == "config" || f.Name == "help" || f.Name == "version" {
			return "", nil
		}
		return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
	})
	if err := k.Load(flagKeys, nil); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "load flags")
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "decode config")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = getenv("DATABASE_URL")
	}
	return cfg, cfg.Validate()
}

func configPath(flags *pflag.FlagSet) (path string, explicit bool) {
	if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
		return f.Value.String(), true
	}
	// Without a resolvable home directory only defaults and flags apply.
	path, err := xdg.ConfigFile()
	if err != nil {
		return "", false
	}
	return path, false
}
