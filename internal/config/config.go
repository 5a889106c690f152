// Package config loads service and CLI settings from defaults, an optional
// YAML file, CALC_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
// CALC_LOG_LEVEL maps to log_level.
const EnvPrefix = "CALC_"

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultServiceName     = "calculator-api"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 5 * time.Second
)

// Config holds the settings shared by the HTTP service and the CLI.
type Config struct {
	Addr            string        `koanf:"addr"`
	ServiceName     string        `koanf:"service_name"`
	LogLevel        string        `koanf:"log_level"`
	OTLPEnabled     bool          `koanf:"otlp_enabled"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Load builds a Config. Precedence (highest to lowest): flags > env vars >
// config file > defaults. path and flags may both be empty; only flags that
// were explicitly set override other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"addr":             DefaultAddr,
		"service_name":     DefaultServiceName,
		"log_level":        DefaultLogLevel,
		"otlp_enabled":     false,
		"shutdown_timeout": DefaultShutdownTimeout.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// 2. Config file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	// 3. Environment: CALC_SHUTDOWN_TIMEOUT -> shutdown_timeout
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr is empty")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("config: service_name is empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
