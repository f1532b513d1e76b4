package cli

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/bitsnaps/open-creator/internal/config"
	"github.com/bitsnaps/open-creator/internal/interpreter"
	"github.com/bitsnaps/open-creator/internal/storage"
	"github.com/bitsnaps/open-creator/pkg/logger"
)

// CLIContext carries per-invocation state between the root command and
// its subcommands.
type CLIContext struct {
	Config     *config.Config
	ConfigPath string
	Logger     *zerolog.Logger

	storageOnce sync.Once
	storage     *storage.DB
	storageErr  error
}

// NewCLIContext creates a CLI context.
func NewCLIContext(cfg *config.Config, configPath string, log *zerolog.Logger) *CLIContext {
	return &CLIContext{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     log,
	}
}

// GetStorage opens the history database on first use.
func (c *CLIContext) GetStorage() (*storage.DB, error) {
	c.storageOnce.Do(func() {
		path := c.Config.Storage.Path
		if path == "" {
			path, c.storageErr = config.DefaultStoragePath()
			if c.storageErr != nil {
				return
			}
		}
		c.storage, c.storageErr = storage.Open(path)
	})
	return c.storage, c.storageErr
}

// Close releases resources opened during the invocation.
func (c *CLIContext) Close() error {
	if c.storage != nil {
		return c.storage.Close()
	}
	return nil
}

// Log returns the invocation logger.
func (c *CLIContext) Log() *zerolog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.Get()
}

// interpreterConfig maps the file configuration onto engine settings.
func interpreterConfig(cfg *config.Config) interpreter.Config {
	return interpreter.Config{
		Timeout:        cfg.Interpreter.GetTimeout(),
		MaxOutputBytes: cfg.Interpreter.MaxOutputBytes,
		Policy:         cfg.Policy,
	}
}
