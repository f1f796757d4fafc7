package log

import (
	"io"
	"slices"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{" Info ", LevelInfo},
		{"warn", LevelWarn},
		{"ERROR", LevelError},
		{"info+2", LevelInfo + 2},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	tests := map[Level]string{
		LevelTrace:     "trace",
		LevelDebug:     "debug",
		LevelInfo:      "info",
		LevelWarn:      "warn",
		LevelError:     "error",
		LevelInfo + 2:  "info+2",
		LevelError + 4: "error+4",
		LevelTrace - 2: "trace-2",
	}

	for l, want := range tests {
		if got := l.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", l, got, want)
		}

		if want == "trace-2" {
			continue
		}

		if back := ParseLevel(want); back != l {
			t.Errorf("ParseLevel(%q) = %v, want %v", want, back, l)
		}
	}

	if got := slices.Collect(Levels()); !slices.Equal(got, []string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("Levels() = %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{" text", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := Format(7).String(); got != "Format(7)" {
		t.Errorf("Format(7).String() = %q", got)
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestOptions(t *testing.T) {
	c := config{}.with(
		WithLevel(LevelWarn),
		WithFormat(FormatText),
		WithCaller(true),
		WithPretty(false),
		WithOutput(nil),
		nil,
	)

	if c.level != LevelWarn || c.format != FormatText || !c.caller || c.pretty {
		t.Errorf("config = %+v", c)
	}

	if c.output != io.Discard {
		t.Errorf("nil output not replaced with io.Discard")
	}

	d := c.with(WithDefaults(nil))
	if d.level != DefaultLevel || d.format != DefaultFormat || d.pretty != DefaultPretty {
		t.Errorf("WithDefaults left %+v", d)
	}
}

func TestWithTimeLayout(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc3339nano", "2023-10-15T14:30:45.123456789Z"},
		{"RFC-3339", "2023-10-15T14:30:45Z"},
		{"kitchen", "2:30PM"},
		{"ms", "Oct 15 14:30:45.123"},
		{"DateTime", "2023-10-15 14:30:45"},
		{"2006/01/02", "2023/10/15"},
		{"none", ""},
		{"", ""},
		{"  \t ", ""},
	}

	for _, tt := range tests {
		c := config{}.with(WithTimeLayout(tt.layout))
		if got := c.formatTime(now); got != tt.want {
			t.Errorf("layout %q: %q, want %q", tt.layout, got, tt.want)
		}
	}
}

func BenchmarkFormatTime(b *testing.B) {
	c := config{}.with(WithTimeLayout("RFC3339Nano"))
	now := time.Now()

	for b.Loop() {
		_ = c.formatTime(now)
	}
}
