// Package log is a small structured logging layer over [log/slog].
//
// A [Logger] is built once with functional options and is safe for
// concurrent use. Its configuration never changes; [Logger.Wrap] and
// [Logger.With] return new loggers.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Debug("formula parsed", slog.String("source", src))
//
// Attributes are typed [slog.Attr] values rather than alternating key/value
// arguments.
//
// # Levels
//
// In addition to the four [log/slog] levels, [LevelTrace] sits below
// [LevelDebug] and is used for per-formula evaluation detail.
//
// # Output
//
// [FormatJSON] and [FormatText] select the standard [log/slog] handlers.
// With [WithPretty] enabled (the default) records are instead rendered with
// lipgloss styles, colored when the destination is a terminal.
//
// # Zero value
//
// The zero Logger discards all messages, so it can be embedded in option
// structs without a nil check.
//
// # Package logger
//
// The package-level functions ([Info], [Warn], ...) write to a default
// logger on standard error, adjusted with [Config] or replaced with
// [SetDefault].
package log
