package lang

import (
	"encoding/json"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestNewEnv(t *testing.T) {
	env, err := NewEnv([]string{"b", "a", "b"}, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	if names := env.Names(); !slices.Equal(names, []string{"b", "a"}) {
		t.Errorf("names = %v", names)
	}

	if v, _ := env.Lookup("b"); v != 3 {
		t.Errorf("b = %v, want 3", v)
	}

	if _, err := NewEnv([]string{"a"}, nil); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestEnv_ZeroAndNil(t *testing.T) {
	var nilEnv *Env

	if _, ok := nilEnv.Lookup("x"); ok {
		t.Error("nil env reported a value")
	}

	if nilEnv.Len() != 0 || nilEnv.Names() != nil || nilEnv.Delete("x") {
		t.Error("nil env is not empty")
	}

	var env Env

	env.Set("x", 1).Set("y", 2)

	if env.Len() != 2 {
		t.Errorf("len = %d, want 2", env.Len())
	}
}

func TestEnv_Delete(t *testing.T) {
	env := new(Env).Set("a", 1).Set("b", 2).Set("c", 3)

	if !env.Delete("b") {
		t.Fatal("Delete(b) = false")
	}

	if env.Delete("b") {
		t.Error("second Delete(b) = true")
	}

	if names := env.Names(); !slices.Equal(names, []string{"a", "c"}) {
		t.Errorf("names = %v", names)
	}

	env.Set("b", 4)

	if names := env.Names(); !slices.Equal(names, []string{"a", "c", "b"}) {
		t.Errorf("names after re-insert = %v", names)
	}
}

func TestEnv_Clone(t *testing.T) {
	env := new(Env).Set("a", 1)
	c := env.Clone()
	c.Set("a", 2).Set("b", 3)

	if v, _ := env.Lookup("a"); v != 1 || env.Len() != 1 {
		t.Error("clone shares state with original")
	}
}

func TestEnv_AllStopsEarly(t *testing.T) {
	env := new(Env).Set("a", 1).Set("b", 2).Set("c", 3)

	var seen []string

	for name := range env.All() {
		seen = append(seen, name)
		if name == "b" {
			break
		}
	}

	if !slices.Equal(seen, []string{"a", "b"}) {
		t.Errorf("seen = %v", seen)
	}
}

func TestEnv_JSON(t *testing.T) {
	env := new(Env).Set("z", 1.5).Set("a", -2).Set("m", math.Inf(1)).Set("n", math.NaN())

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"z":1.5,"a":-2,"m":"+Inf","n":"NaN"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var back Env
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}

	if names := back.Names(); !slices.Equal(names, []string{"z", "a", "m", "n"}) {
		t.Errorf("names = %v", names)
	}

	if v, _ := back.Lookup("m"); !math.IsInf(v, 1) {
		t.Errorf("m = %v", v)
	}

	if v, _ := back.Lookup("n"); !math.IsNaN(v) {
		t.Errorf("n = %v", v)
	}
}

func TestEnv_UnmarshalJSONErrors(t *testing.T) {
	for _, input := range []string{`[1]`, `{"a":"x"}`, `{"a":true}`, `{"a":{}}`} {
		var env Env
		if err := json.Unmarshal([]byte(input), &env); err == nil {
			t.Errorf("Unmarshal(%s) succeeded", input)
		}
	}
}

func TestEnv_YAML(t *testing.T) {
	env := new(Env).Set("width", 3).Set("height", 0.5)

	data, err := yaml.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}

	var back Env
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}

	if names := back.Names(); !slices.Equal(names, []string{"width", "height"}) {
		t.Errorf("names = %v", names)
	}

	if v, _ := back.Lookup("height"); v != 0.5 {
		t.Errorf("height = %v", v)
	}
}

func TestEnv_YAMLExponents(t *testing.T) {
	env := new(Env).Set("tiny", 1e-6).Set("huge", 1e21).Set("whole", 6)

	data, err := yaml.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}

	var back Env
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}

	for _, name := range env.Names() {
		want, _ := env.Lookup(name)
		if got, _ := back.Lookup(name); got != want {
			t.Errorf("%s = %v, want %v (%q)", name, got, want, data)
		}
	}

	tests := []struct {
		input string
		want  float64
	}{
		{"rate: 1e-3\n", 1e-3},
		{`{"rate": 2E5}`, 2e5},
		{"rate: -4.5e+2 # comment\n", -450},
		{"rate: 123456789012345678901\n", 123456789012345678901},
	}

	for _, tt := range tests {
		var vars Env
		if err := yaml.Unmarshal([]byte(tt.input), &vars); err != nil {
			t.Errorf("%q: %v", tt.input, err)

			continue
		}

		if got, _ := vars.Lookup("rate"); got != tt.want {
			t.Errorf("%q: rate = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEnv_UnmarshalYAMLOrder(t *testing.T) {
	var env Env
	if err := yaml.Unmarshal([]byte("b: 1\na: 2\nc: -3.25\n"), &env); err != nil {
		t.Fatal(err)
	}

	if names := env.Names(); !slices.Equal(names, []string{"b", "a", "c"}) {
		t.Errorf("names = %v", names)
	}

	if v, _ := env.Lookup("c"); v != -3.25 {
		t.Errorf("c = %v", v)
	}

	if err := yaml.Unmarshal([]byte("a: text\n"), &env); err == nil {
		t.Error("non-numeric value accepted")
	}
}
