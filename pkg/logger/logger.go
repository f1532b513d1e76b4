// Package logger wires zerolog into a process-wide logger shared by the
// CLI and server surfaces.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Config selects the level, format and optional file target.
type Config struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // console or json; empty picks by TTY
	File   string `mapstructure:"file" yaml:"file"`     // append target, empty disables
}

var (
	mu          sync.RWMutex
	global      zerolog.Logger
	logFile     *os.File
	initialized bool
)

// Init builds the global logger from cfg. Calling it again reconfigures
// the logger and closes any previously opened log file.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var out io.Writer = os.Stderr
	if useConsole(cfg.Format) {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = f
		out = io.MultiWriter(out, f)
	}

	global = zerolog.New(out).With().Timestamp().Logger()
	initialized = true
	return nil
}

// Get returns the global logger, or a plain stderr logger before Init.
func Get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !initialized {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		return &l
	}
	return &global
}

// Component returns a child logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Close releases the log file if one was opened.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Debug returns a debug level event on the global logger.
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info returns an info level event on the global logger.
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn returns a warn level event on the global logger.
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error returns an error level event on the global logger.
func Error() *zerolog.Event {
	return Get().Error()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// useConsole decides the output format. An explicit setting wins; the
// default follows whether stderr is a terminal.
func useConsole(format string) bool {
	switch strings.ToLower(format) {
	case "console":
		return true
	case "json":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}
