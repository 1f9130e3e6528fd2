package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"dataview/adapters/coercer"
	"dataview/domain/format"
	"dataview/internal/errors"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "dataview.yaml"

// EnvPrefix marks environment overrides. The first underscore after the
// prefix separates section from key: DATAVIEW_SERVER_PORT -> server.port.
const EnvPrefix = "DATAVIEW_"

// Source kinds
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig           `koanf:"server"`
	Log      LogConfig              `koanf:"log"`
	Format   format.Options         `koanf:"format"`
	Session  SessionConfig          `koanf:"session"`
	Watch    WatchConfig            `koanf:"watch"`
	Database DatabaseConfig         `koanf:"database"`
	Coercion coercer.CoercionConfig `koanf:"coercion"`
	Sources  []SourceConfig         `koanf:"sources"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `koanf:"port"`
	GinMode string `koanf:"gin_mode"`
}

// LogConfig selects the log level and output style
type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

// SessionConfig holds per-session settings
type SessionConfig struct {
	MailboxSize int `koanf:"mailbox_size"`
}

// WatchConfig controls the file watcher that signals evaluation boundaries
type WatchConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Debounce time.Duration `koanf:"debounce"`
}

// DatabaseConfig holds the connection used by postgres sources
type DatabaseConfig struct {
	DSN           string `koanf:"dsn"`
	NotifyChannel string `koanf:"notify_channel"`
}

// SourceConfig describes one table that sessions can be opened on
type SourceConfig struct {
	Name  string `koanf:"name"`
	Kind  string `koanf:"kind"`
	Path  string `koanf:"path"`
	Sheet string `koanf:"sheet"`
	Table string `koanf:"table"`
	Query string `koanf:"query"`
}

// flagKeys maps command-line flags onto config keys. Other flags are ignored.
var flagKeys = map[string]string{
	"port":             "server.port",
	"gin-mode":         "server.gin_mode",
	"log-level":        "log.level",
	"dev":              "log.development",
	"watch":            "watch.enabled",
	"dsn":              "database.dsn",
	"max-value-length": "format.max_value_length",
	"thousands-sep":    "format.thousands_sep",
}

func defaults() map[string]any {
	f := format.DefaultOptions()
	c := coercer.DefaultCoercionConfig()
	return map[string]any{
		"server.port":                  "8080",
		"server.gin_mode":              "release",
		"log.level":                    "INFO",
		"log.development":              false,
		"format.large_num_digits":      f.LargeNumDigits,
		"format.small_num_digits":      f.SmallNumDigits,
		"format.max_integral_digits":   f.MaxIntegralDigits,
		"format.max_value_length":      f.MaxValueLength,
		"format.thousands_sep":         f.ThousandsSep,
		"session.mailbox_size":         16,
		"watch.enabled":                true,
		"watch.debounce":               "250ms",
		"database.notify_channel":      "dataview",
		"coercion.numeric_threshold":   c.NumericThreshold,
		"coercion.boolean_threshold":   c.BooleanThreshold,
		"coercion.timestamp_threshold": c.TimestampThreshold,
		"coercion.factor_levels":       c.FactorLevels,
		"coercion.normalize_strings":   c.NormalizeStrings,
		"coercion.missing_tokens":      c.MissingTokens,
	}
}

// Load layers configuration: built-in defaults, then the YAML file at path
// (or DefaultFile when path is empty and the file exists), then DATAVIEW_*
// environment variables, then explicitly set flags. The result is validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" && os.Getenv(EnvPrefix+"LOG_LEVEL") == "" {
		_ = k.Set("log.level", v)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("server.port is required")
	}
	if err := c.Format.Validate(); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("format: %v", err))
	}
	if c.Session.MailboxSize < 1 {
		return errors.ConfigInvalid("session.mailbox_size must be at least 1")
	}
	if c.Watch.Debounce < 0 {
		return errors.ConfigInvalid("watch.debounce must not be negative")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.Name == "" {
			return errors.ConfigInvalid(fmt.Sprintf("sources[%d]: name is required", i))
		}
		if seen[s.Name] {
			return errors.ConfigInvalid(fmt.Sprintf("sources[%d]: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = true

		switch s.Kind {
		case SourceFile:
			if s.Path == "" {
				return errors.ConfigInvalid(fmt.Sprintf("source %q: path is required", s.Name))
			}
		case SourcePostgres:
			if s.Table == "" && s.Query == "" {
				return errors.ConfigInvalid(fmt.Sprintf("source %q: table or query is required", s.Name))
			}
			if c.Database.DSN == "" {
				return errors.ConfigInvalid(fmt.Sprintf("source %q: database.dsn is required", s.Name))
			}
		default:
			return errors.ConfigInvalid(fmt.Sprintf("source %q: unknown kind %q", s.Name, s.Kind))
		}
	}
	return nil
}

// FileSources returns the file-backed sources.
func (c *Config) FileSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Kind == SourceFile {
			out = append(out, s)
		}
	}
	return out
}
