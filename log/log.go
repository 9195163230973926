package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Level represents a log severity level.
type Level string

const (
	// LevelError logs errors only.
	LevelError Level = "error"
	// LevelWarn logs warnings and errors.
	LevelWarn Level = "warn"
	// LevelInfo logs informational messages and above.
	LevelInfo Level = "info"
	// LevelDebug logs everything, including per-module wrap diagnostics.
	LevelDebug Level = "debug"
)

// Format represents the log output format.
type Format string

const (
	// FormatLogfmt outputs logs as logfmt key=value lines.
	FormatLogfmt Format = "logfmt"
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// NewHandler creates a [slog.Handler] writing to w with the specified level
// and format.
func NewHandler(w io.Writer, lvl Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: lvl.slogLevel(),
	}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	}

	return nil
}

// NewHandlerFromStrings creates a [slog.Handler] from level and format
// strings, as passed on the command line.
func NewHandlerFromStrings(w io.Writer, level, format string) (slog.Handler, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	logFmt, err := ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, lvl, logFmt), nil
}

// ParseLevel parses a log level string into a [Level].
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// ParseFormat parses a log format string into a [Format].
func ParseFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case FormatLogfmt:
		return FormatLogfmt, nil
	case FormatJSON:
		return FormatJSON, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// AllLevelStrings returns the accepted log level strings.
func AllLevelStrings() []string {
	return []string{
		string(LevelError),
		string(LevelWarn),
		string(LevelInfo),
		string(LevelDebug),
	}
}

// AllFormatStrings returns the accepted log format strings.
func AllFormatStrings() []string {
	return []string{
		string(FormatLogfmt),
		string(FormatJSON),
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	}

	return slog.LevelInfo
}
