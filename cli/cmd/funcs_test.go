package cmd

import (
	"strings"
	"testing"

	"github.com/ardnew/formula/lang"
)

func TestArity(t *testing.T) {
	tests := []struct {
		fn   lang.Builtin
		want string
	}{
		{lang.Builtin{MinArgs: 1, MaxArgs: 1}, "1"},
		{lang.Builtin{MinArgs: 2, MaxArgs: 2}, "2"},
		{lang.Builtin{MinArgs: 1, MaxArgs: lang.Variadic}, "1+"},
		{lang.Builtin{MinArgs: 1, MaxArgs: 3}, "1-3"},
	}

	for _, tt := range tests {
		if got := arity(tt.fn); got != tt.want {
			t.Errorf("arity(%d, %d) = %q, want %q", tt.fn.MinArgs, tt.fn.MaxArgs, got, tt.want)
		}
	}
}

func TestFuncs(t *testing.T) {
	r := newRunner(t)

	out, err := r.run(t, "", "funcs", "--plain")
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != len(lang.BuiltinNames()) {
		t.Fatalf("%d lines for %d builtins", len(lines), len(lang.BuiltinNames()))
	}

	for _, line := range lines {
		if fields := strings.Split(line, "\t"); len(fields) != 3 || fields[2] == "" {
			t.Errorf("malformed line %q", line)
		}
	}

	if !strings.Contains(out, "pow(base, exponent)\t2\t") {
		t.Errorf("pow missing from %q", out)
	}

	if !strings.Contains(out, "max(x, ...xs)\t1+\t") {
		t.Errorf("max missing from %q", out)
	}

	table, err := r.run(t, "", "funcs")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"FUNCTION", "DESCRIPTION", "sqrt(x)", "1+"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q:\n%s", want, table)
		}
	}
}
