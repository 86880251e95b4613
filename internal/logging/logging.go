// Package logging builds the zerolog logger shared by the CLI and the
// library packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects level, format and destination.
type Config struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	// Output is stderr, stdout or a file path.
	Output string `mapstructure:"output" yaml:"output" json:"output"`

	// Writer overrides Output when set.
	Writer io.Writer `mapstructure:"-" yaml:"-" json:"-"`
}

// New returns a logger for cfg. The returned close function releases a
// log file opened for Output and is a no-op otherwise.
func New(cfg Config) (zerolog.Logger, func() error, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	noop := func() error { return nil }

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	out, closeFn, err := output(cfg)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	var w io.Writer
	switch strings.ToLower(cfg.Format) {
	case "", FormatConsole:
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	case FormatJSON:
		w = out
	default:
		closeFn()
		return zerolog.Nop(), noop, fmt.Errorf("invalid log format %q (want console or json)", cfg.Format)
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closeFn, nil
}

func output(cfg Config) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	if cfg.Writer != nil {
		return cfg.Writer, noop, nil
	}
	switch cfg.Output {
	case "", "stderr":
		return os.Stderr, noop, nil
	case "stdout":
		return os.Stdout, noop, nil
	}
	f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f.Close, nil
}
