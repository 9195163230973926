// Package log provides structured logging handler construction for use with
// [log/slog].
//
// It supports two output formats ([FormatLogfmt] and [FormatJSON]) and four
// severity levels ([LevelError], [LevelWarn], [LevelInfo], and [LevelDebug]).
// Every emitted line carries a timestamp, the severity, and the message.
//
// Use [NewHandler] to create a handler directly, or use [Config] with CLI
// flag integration via [github.com/spf13/pflag] and shell completion support
// via [github.com/spf13/cobra]. Typical usage creates a [Config], registers
// flags, then builds a logger at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	logger, closeLog, err := cfg.NewLogger()
//	if err != nil {
//	    return err
//	}
//	defer closeLog()
//
// When --log-file is set the logger appends to that file; otherwise it
// writes to standard error.
package log
