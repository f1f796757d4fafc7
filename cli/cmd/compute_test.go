package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/lang"
)

func TestCompute_JSON(t *testing.T) {
	r := newRunner(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			"indented",
			[]string{"compute", "-c", "x=2", "-F", "y=x*3", "z=x+1"},
			"{\n  \"y\": 6,\n  \"z\": 3,\n  \"x\": 2\n}\n",
		},
		{
			"compact",
			[]string{"compute", "-i", "0", "-c", "x=2", "y=x*3"},
			"{\"y\":6,\"x\":2}\n",
		},
		{
			"context_wins",
			[]string{"compute", "-i", "0", "-c", "x=2", "x=100", "y=x / 4"},
			"{\"x\":2,\"y\":0.5}\n",
		},
		{
			"later_pair_wins",
			[]string{"compute", "-i", "0", "-c", "x=2", "-c", "x=8", "y=sqrt(x * 2)"},
			"{\"y\":4,\"x\":8}\n",
		},
		{
			"no_fields",
			[]string{"compute", "-i", "0", "-c", "a=1"},
			"{\"a\":1}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.run(t, "", tt.args...)
			if err != nil {
				t.Fatalf("compute: %v", err)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompute_YAML(t *testing.T) {
	r := newRunner(t)

	for _, indent := range []string{"0", "4"} {
		out, err := r.run(t, "", "compute", "-o", "yaml", "-i", indent,
			"-c", "r=2", "area=3.5 * pow(r, 2)", "d=r * 2")
		if err != nil {
			t.Fatalf("indent %s: %v", indent, err)
		}

		var env lang.Env
		if err := yaml.Unmarshal([]byte(out), &env); err != nil {
			t.Fatalf("indent %s: decode %q: %v", indent, out, err)
		}

		want := map[string]float64{"area": 14, "d": 4, "r": 2}
		for name, v := range want {
			if got, ok := env.Lookup(name); !ok || got != v {
				t.Errorf("indent %s: %s = %v, want %v", indent, name, got, v)
			}
		}

		if names := env.Names(); len(names) != 3 || names[0] != "area" {
			t.Errorf("indent %s: names = %v", indent, names)
		}
	}
}

func TestCompute_YAMLAsVars(t *testing.T) {
	r := newRunner(t)

	for _, indent := range []string{"0", "2"} {
		out, err := r.run(t, "", "compute", "-o", "yaml", "-i", indent,
			"tiny=1e-6 * 2", "huge=1e21", "whole=6")
		if err != nil {
			t.Fatalf("indent %s: %v", indent, err)
		}

		vars := writeFile(t, "vars"+indent+".yaml", out)

		got, err := r.run(t, "", "eval", "--vars", vars, "tiny / 2e-6 + huge / 1e21 + whole")
		if err != nil {
			t.Fatalf("indent %s: eval with %q: %v", indent, out, err)
		}

		if got != "8\n" {
			t.Errorf("indent %s: output = %q from %q", indent, got, out)
		}
	}
}

func TestCompute_Rows(t *testing.T) {
	r := newRunner(t)

	rows := `[{"w": 2, "h": 3}, {"w": 4, "h": 0.5, "label": "b"}]`

	out, err := r.run(t, rows, "compute", "--rows", "-", "-c", "k=10", "-i", "0",
		"area=w * h", "scaled=w * h * k")
	if err != nil {
		t.Fatal(err)
	}

	var got []map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}

	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}

	want := []map[string]any{
		{"w": 2.0, "h": 3.0, "k": 10.0, "area": 6.0, "scaled": 60.0},
		{"w": 4.0, "h": 0.5, "label": "b", "k": 10.0, "area": 2.0, "scaled": 20.0},
	}

	for i := range want {
		for key, v := range want[i] {
			if got[i][key] != v {
				t.Errorf("row %d: %s = %v, want %v", i, key, got[i][key], v)
			}
		}
	}

	rowsFile := writeFile(t, "rows.yaml", "- {w: 1, h: 2, k: 3}\n")

	out, err = r.run(t, "", "compute", "--rows", rowsFile, "-c", "k=10", "-i", "0", "v=w * h * k")
	if err != nil {
		t.Fatal(err)
	}

	if want := "[{\"w\":1,\"h\":2,\"k\":3,\"v\":6}]\n"; out != want {
		t.Errorf("row context did not win: %q, want %q", out, want)
	}
}

func TestCompute_Errors(t *testing.T) {
	r := newRunner(t)

	tests := []struct {
		name  string
		input string
		args  []string
		want  []error
	}{
		{"bad_field", "", []string{"compute", "y"}, []error{ErrBadField}},
		{"bad_field_name", "", []string{"compute", "-F", "2y=1"}, []error{ErrBadField}},
		{"undefined", "", []string{"compute", "y=x + 1"}, []error{ErrCompute, lang.ErrUndefinedIdentifier}},
		{"syntax", "", []string{"compute", "-c", "x=1", "y=x +"}, []error{ErrCompute, lang.ErrSyntax}},
		{"row_undefined", `[{"a": 1}, {"b": 2}]`, []string{"compute", "--rows", "-", "c=a * 2"},
			[]error{ErrCompute, lang.ErrUndefinedIdentifier}},
		{"row_shape", `[1, 2]`, []string{"compute", "--rows", "-", "c=1"}, []error{ErrCompute, lang.ErrReadInput}},
		{"missing_rows", "", []string{"compute", "--rows", "/nonexistent/rows.json", "c=1"},
			[]error{ErrCompute, ErrOpenSource}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.run(t, tt.input, tt.args...)
			if err == nil {
				t.Fatalf("expected error, got output %q", out)
			}

			for _, target := range tt.want {
				if !errors.Is(err, target) {
					t.Errorf("error %v does not match %v", err, target)
				}
			}
		})
	}
}

func TestCompute_FormulaError(t *testing.T) {
	_, err := newRunner(t).run(t, "", "compute", "-c", "a=1", "b=a", "c=missing")

	var fe *lang.FormulaError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *lang.FormulaError, got %v", err)
	}

	if fe.Index != 1 || fe.Name != "c" {
		t.Errorf("FormulaError = %+v", fe)
	}
}
