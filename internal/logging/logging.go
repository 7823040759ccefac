package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// Format selects the handler: text or json.
	Format string `yaml:"format"`
}

// DefaultConfig returns info-level text logging.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatText}
}

// Validate reports an unknown level or format.
func (c Config) Validate() error {
	if c.Level != "" {
		if _, ok := levels[strings.ToLower(c.Level)]; !ok {
			return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Level)
		}
	}
	switch strings.ToLower(c.Format) {
	case "", FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json', got %s", c.Format)
	}
}

// New builds a logger writing to w. A nil w writes to stderr, since stdout
// carries the MCP protocol.
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Setup builds a stderr logger and installs it as the slog default.
func Setup(cfg Config) *slog.Logger {
	logger := New(cfg, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseLevel converts string level to slog.Level, defaulting to info.
func parseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return slog.LevelInfo
}
