package lang

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ardnew/formula/log"
)

func captureLogger(buf *bytes.Buffer) log.Logger {
	return log.Make(buf,
		log.WithLevel(log.LevelWarn),
		log.WithFormat(log.FormatJSON),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)
}

func TestExecuteLenient(t *testing.T) {
	tests := []struct {
		formula string
		want    float64
		logged  string
	}{
		{"1 + 2", 3, ""},
		{"5 / 0", 0, ""},
		{"x * 2", 0, "formula evaluation failed"},
		{"sqrt(-1)", 0, "formula result is not finite"},
		{"exp(1000)", 0, "formula result is not finite"},
		{"log(0)", 0, "formula result is not finite"},
		{"1 +", 0, "formula parse failed"},
		{"sqrt(1, 2)", 0, "formula evaluation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			var buf bytes.Buffer

			got := ExecuteLenient(t.Context(), tt.formula, nil, WithLogger(captureLogger(&buf)))
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}

			out := buf.String()

			if tt.logged == "" {
				if out != "" {
					t.Errorf("unexpected log output %q", out)
				}

				return
			}

			if !strings.Contains(out, `"msg":"`+tt.logged+`"`) {
				t.Errorf("log output %q lacks %q", out, tt.logged)
			}

			if !strings.Contains(out, `"level":"WARN"`) {
				t.Errorf("log output %q is not a warning", out)
			}
		})
	}
}

func TestEvaluateLenient(t *testing.T) {
	e := Bin(OpAdd, Ident("a"), Num(1))

	if got := EvaluateLenient(t.Context(), e, mustEnv(t, "a", 41.0)); got != 42 {
		t.Errorf("got %v, want 42", got)
	}

	// The zero logger discards the warning.
	if got := EvaluateLenient(t.Context(), e, nil); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}
