package log

import (
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

var levelNames = []struct {
	level Level
	name  string
}{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// String returns the lowercase name of the level. Levels between the named
// ones are rendered relative to the nearest lower name, e.g. "info+2".
func (l Level) String() string {
	for i := len(levelNames) - 1; i >= 0; i-- {
		n := levelNames[i]
		if l == n.level {
			return n.name
		}

		if l > n.level {
			return n.name + "+" + strconv.Itoa(int(l-n.level))
		}
	}

	return levelNames[0].name + strconv.Itoa(int(l-LevelTrace))
}

// Levels returns an iterator over the names of all defined log levels.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel parses a level name such as "debug" or "WARN", optionally
// followed by a signed offset ("info+2"). Unrecognized input yields
// [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatJSON

var formatNames = []string{
	FormatText: "text",
	FormatJSON: "json",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}

	return formatNames[f]
}

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] {
	return slices.Values(formatNames)
}

// ParseFormat parses "json" or "text" (case-insensitive). Unrecognized input
// yields [DefaultFormat].
func ParseFormat(s string) Format {
	i := slices.Index(formatNames, strings.ToLower(strings.TrimSpace(s)))
	if i < 0 {
		return DefaultFormat
	}

	return Format(i)
}
