package log

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for log configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Level  string
	Format string
	File   string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds CLI flag values for log configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewLogger] to build a [*slog.Logger]
// for the configured destination.
type Config struct {
	Level  string
	Format string
	File   string
	Flags  Flags
}

// NewConfig returns a new [Config] with default flag names and zero-value
// settings. Use [Config.RegisterFlags] to add CLI flags, or set values
// directly.
func NewConfig() *Config {
	f := Flags{
		Level:  "log-level",
		Format: "log-format",
		File:   "log-file",
	}

	return f.NewConfig()
}

// RegisterFlags adds logging flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, string(LevelInfo),
		fmt.Sprintf("log level, one of: %s", AllLevelStrings()))
	flags.StringVar(&c.Format, c.Flags.Format, string(FormatLogfmt),
		fmt.Sprintf("log format, one of: %s", AllFormatStrings()))
	flags.StringVar(&c.File, c.Flags.File, "",
		"log file path (empty = stderr)")
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Level,
		cobra.FixedCompletions(AllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Level, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(AllFormatStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Format, err)
	}

	return nil
}

// NewLogger builds a [*slog.Logger] for the configured level, format, and
// destination. The returned close function flushes and closes the log file;
// it is a no-op when logging to stderr.
func (c *Config) NewLogger() (*slog.Logger, func() error, error) {
	noop := func() error { return nil }

	w, closeFn := os.Stderr, noop

	if c.File != "" {
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, noop, fmt.Errorf("opening log file: %w", err)
		}

		w, closeFn = f, f.Close
	}

	handler, err := NewHandlerFromStrings(w, c.Level, c.Format)
	if err != nil {
		if closeErr := closeFn(); closeErr != nil {
			return nil, noop, fmt.Errorf("%w (closing log file: %w)", err, closeErr)
		}

		return nil, noop, err
	}

	return slog.New(handler), closeFn, nil
}
