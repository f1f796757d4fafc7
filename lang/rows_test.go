package lang

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

const rowsYAML = `
- name: north
  width: 3
  height: 4
  area: unknown
- name: south
  width: 1.5
  height: 2
  area: 0
`

func TestReadRows(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(rowsYAML))
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}

	var keys []string
	for k := range rows[0].All() {
		keys = append(keys, k)
	}

	if strings.Join(keys, ",") != "name,width,height,area" {
		t.Errorf("keys = %v", keys)
	}

	if v, _ := rows[1].Get("width"); !numericEquals(v, 1.5) {
		t.Errorf("width = %v (%T)", v, v)
	}

	env := rows[0].Numeric()
	if strings.Join(env.Names(), ",") != "width,height" {
		t.Errorf("numeric names = %v", env.Names())
	}
}

func TestReadRows_Shapes(t *testing.T) {
	single, err := ReadRows(strings.NewReader(`{"a": 1, "b": 2}`))
	if err != nil {
		t.Fatal(err)
	}

	if len(single) != 1 || single[0].Len() != 2 {
		t.Errorf("single mapping: %v", single)
	}

	empty, err := ReadRows(strings.NewReader(""))
	if err != nil || len(empty) != 0 {
		t.Errorf("empty input: %v, %v", empty, err)
	}

	for _, input := range []string{"[1, 2]", "42", "- a: 1\n- text\n"} {
		if _, err := ReadRows(strings.NewReader(input)); !errors.Is(err, ErrReadInput) {
			t.Errorf("ReadRows(%q): expected ErrReadInput, got %v", input, err)
		}
	}
}

func TestComputeRows(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(rowsYAML))
	if err != nil {
		t.Fatal(err)
	}

	fields := []Field{
		{Name: "area", Formula: "width * height"},
		{Name: "diagonal", Formula: "sqrt(pow(width, 2) + pow(height, 2))"},
		{Name: "width", Formula: "width * 100"},
	}

	out, err := ComputeRows(t.Context(), rows, fields)
	if err != nil {
		t.Fatal(err)
	}

	// North: "area" was not numeric, so the computed value replaces it.
	if v, _ := out[0].Get("area"); !numericEquals(v, 12) {
		t.Errorf("north area = %v", v)
	}

	if v, _ := out[0].Get("diagonal"); !numericEquals(v, 5) {
		t.Errorf("north diagonal = %v", v)
	}

	// South: "area" was numeric, so it keeps its value.
	if v, _ := out[1].Get("area"); !numericEquals(v, 0) {
		t.Errorf("south area = %v (%T)", v, v)
	}

	// Numeric inputs are never overwritten.
	if v, _ := out[0].Get("width"); !numericEquals(v, 3) {
		t.Errorf("north width = %v (%T)", v, v)
	}

	if v, _ := out[0].Get("name"); v != "north" {
		t.Errorf("north name = %v", v)
	}

	// Input rows are unchanged.
	if _, ok := rows[0].Get("diagonal"); ok {
		t.Error("input row was modified")
	}

	data, err := json.Marshal(out[0])
	if err != nil {
		t.Fatal(err)
	}

	want := `{"name":"north","width":3,"height":4,"area":12,"diagonal":5}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestComputeRows_Errors(t *testing.T) {
	rows := []*Row{
		new(Row).Set("a", 1.0),
		new(Row).Set("b", 2.0),
	}

	_, err := ComputeRows(t.Context(), rows, []Field{{Name: "c", Formula: "a + 1"}})

	var re *RowError
	if !errors.As(err, &re) || re.Row != 1 {
		t.Fatalf("expected row 1 to fail, got %v", err)
	}

	var fe *FormulaError
	if !errors.As(err, &fe) || fe.Name != "c" {
		t.Errorf("expected formula error for c, got %v", err)
	}

	if !errors.Is(err, ErrUndefinedIdentifier) {
		t.Errorf("expected ErrUndefinedIdentifier, got %v", err)
	}

	_, err = ComputeRows(t.Context(), rows, []Field{{Name: "c", Formula: "a +"}})
	if !errors.As(err, &fe) || !errors.Is(err, ErrSyntax) {
		t.Errorf("expected syntax error, got %v", err)
	}

	if errors.As(err, &re) {
		t.Error("parse failure reported against a row")
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := ComputeRows(ctx, rows, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRow_MarshalYAML(t *testing.T) {
	row := new(Row).Set("z", 1.0).Set("a", "text").Set("nested", yaml.MapSlice{
		{Key: "k", Value: 2.0},
	})

	data, err := yaml.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}

	out := string(data)
	if strings.Index(out, "z:") > strings.Index(out, "a:") {
		t.Errorf("key order lost:\n%s", out)
	}

	jdata, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}

	if string(jdata) != `{"z":1,"a":"text","nested":{"k":2}}` {
		t.Errorf("json = %s", jdata)
	}
}

func numericEquals(v any, want float64) bool {
	f, ok := numeric(v)

	return ok && f == want
}

func TestReadRows_ExponentNumbers(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(`[{"a": 1e-6, "b": 2, "c": "1e-6", "d": 2E5}]`))
	if err != nil {
		t.Fatal(err)
	}

	env := rows[0].Numeric()
	if strings.Join(env.Names(), ",") != "a,b,d" {
		t.Errorf("numeric names = %v", env.Names())
	}

	if v, _ := rows[0].Get("c"); v != "1e-6" {
		t.Errorf("quoted c = %v (%T), want the string", v, v)
	}

	out, err := ComputeRows(t.Context(), rows, []Field{{Name: "p", Formula: "a * b + d"}})
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := out[0].Get("p"); !numericEquals(v, 1e-6*2+2e5) {
		t.Errorf("p = %v", v)
	}
}

func TestRow_YAMLRoundTrip(t *testing.T) {
	row := new(Row).Set("tiny", 1e-6).Set("huge", 1e21).Set("whole", 6.0).Set("label", "1e5")

	data, err := yaml.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}

	rows, err := ReadRows(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("read %q: %v", data, err)
	}

	for key, want := range map[string]float64{"tiny": 1e-6, "huge": 1e21, "whole": 6} {
		if v, _ := rows[0].Get(key); !numericEquals(v, want) {
			t.Errorf("%s = %v (%T) in %q", key, v, v, data)
		}
	}

	if v, _ := rows[0].Get("label"); v != "1e5" {
		t.Errorf("label = %v (%T) in %q", v, v, data)
	}
}
