// Package config loads and validates application configuration from
// YAML files and environment variables via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bitsnaps/open-creator/internal/policy"
	"github.com/bitsnaps/open-creator/pkg/logger"
)

// Config is the root of the application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Interpreter InterpreterConfig `mapstructure:"interpreter" yaml:"interpreter"`
	Policy      policy.Config     `mapstructure:"policy" yaml:"policy"`
	Sessions    SessionsConfig    `mapstructure:"sessions" yaml:"sessions"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Log         logger.Config     `mapstructure:"log" yaml:"log"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Addr returns the host:port the gateway binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InterpreterConfig configures execution budgets and namespace seeding.
type InterpreterConfig struct {
	// Timeout is the per-call wall-clock budget as a duration string.
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
	// MaxOutputBytes caps captured output per call.
	MaxOutputBytes int64 `mapstructure:"max_output_bytes" yaml:"max_output_bytes"`
	// SeedFile is a source file run unrestricted into every new session
	// before the restriction latch engages. Empty seeds nothing but the
	// latch still engages on session creation.
	SeedFile string `mapstructure:"seed_file" yaml:"seed_file"`
	// WatchSeed reloads the seed file on change; the new seed applies to
	// sessions created after the reload.
	WatchSeed bool `mapstructure:"watch_seed" yaml:"watch_seed"`
}

// GetTimeout parses Timeout, defaulting to 20 minutes.
func (c InterpreterConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 20 * time.Minute
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 20 * time.Minute
	}
	return d
}

// SessionsConfig configures the session manager.
type SessionsConfig struct {
	// IdleTimeout is how long an unused session survives before eviction.
	IdleTimeout string `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	// MaxSessions bounds concurrently live sessions; 0 means unlimited.
	MaxSessions int `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// GetIdleTimeout parses IdleTimeout, defaulting to 30 minutes.
func (c SessionsConfig) GetIdleTimeout() time.Duration {
	if c.IdleTimeout == "" {
		return 30 * time.Minute
	}
	d, err := time.ParseDuration(c.IdleTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// StorageConfig configures the execution history database.
type StorageConfig struct {
	// Path is the SQLite file; empty resolves under the config directory.
	Path      string          `mapstructure:"path" yaml:"path"`
	Retention RetentionConfig `mapstructure:"retention" yaml:"retention"`
}

// RetentionConfig configures the scheduled history prune.
type RetentionConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
	MaxAge   string `mapstructure:"max_age" yaml:"max_age"`
}

// GetMaxAge parses MaxAge, defaulting to 30 days.
func (c RetentionConfig) GetMaxAge() time.Duration {
	if c.MaxAge == "" {
		return 30 * 24 * time.Hour
	}
	d, err := time.ParseDuration(c.MaxAge)
	if err != nil || d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}

// Load reads configuration from the given path (or the default location
// when path is empty), applying defaults and CREATOR_* environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CREATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err == nil {
			path = defaultPath
		}
	}
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			// A missing file means defaults; anything else is fatal.
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", expanded, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration without touching disk.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Interpreter.Timeout != "" {
		if _, err := time.ParseDuration(c.Interpreter.Timeout); err != nil {
			return fmt.Errorf("config: invalid interpreter timeout %q: %w", c.Interpreter.Timeout, err)
		}
	}
	if c.Sessions.IdleTimeout != "" {
		if _, err := time.ParseDuration(c.Sessions.IdleTimeout); err != nil {
			return fmt.Errorf("config: invalid sessions idle_timeout %q: %w", c.Sessions.IdleTimeout, err)
		}
	}
	if c.Storage.Retention.MaxAge != "" {
		if _, err := time.ParseDuration(c.Storage.Retention.MaxAge); err != nil {
			return fmt.Errorf("config: invalid retention max_age %q: %w", c.Storage.Retention.MaxAge, err)
		}
	}
	return nil
}

// SaveTo writes cfg as YAML to path, creating parent directories.
func SaveTo(cfg *Config, path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(expanded, data, 0o644)
}
