package utils

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Log output formats
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// Logger is a wrapper around zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// LoggerOptions contains options for creating a logger
type LoggerOptions struct {
	Level   string
	Format  string // FormatPretty or FormatJSON
	Output  io.Writer
	Verbose bool
	NoColor bool // plain console output for CI logs
}

// NewLogger creates a new logger with the given options. Pretty output is
// meant for a terminal running a sync by hand, JSON for CI pipelines.
func NewLogger(opts LoggerOptions) *Logger {
	var output io.Writer = os.Stderr
	if opts.Output != nil {
		output = opts.Output
	}

	if opts.Format != FormatJSON {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
			NoColor:    opts.NoColor,
		}
	}

	level := ParseLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// ParseLevel maps a configured level name to a zerolog level, case
// insensitively. Unknown or empty names yield info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// WithComponent returns a logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
	}
}

// WithDocument returns a logger with the document path, relative to the
// repository root
func (l *Logger) WithDocument(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("document", path).Logger(),
	}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}
