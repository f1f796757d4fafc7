package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/goccy/go-yaml"
)

var errRowShape = errors.New("expected a mapping or a sequence of mappings")

// Field names a formula whose value is added to every row by [ComputeRows].
type Field struct {
	Name    string
	Formula string
}

// Row is an ordered record of named values, such as one data point of a
// table. Only its numeric values take part in formula evaluation; other
// values are carried through unchanged.
type Row struct {
	keys   []string
	values map[string]any
}

// RowOf builds a row from an ordered mapping. Non-string keys are converted
// with [fmt.Sprint].
func RowOf(m yaml.MapSlice) *Row {
	row := new(Row)

	for _, item := range m {
		key, ok := item.Key.(string)
		if !ok {
			key = fmt.Sprint(item.Key)
		}

		row.Set(key, item.Value)
	}

	return row
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}

	v, ok := r.values[key]

	return v, ok
}

// Set stores v under key, keeping the position of an existing key.
func (r *Row) Set(key string, v any) *Row {
	if r.values == nil {
		r.values = make(map[string]any)
	}

	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}

	r.values[key] = v

	return r
}

// Len returns the number of fields in r.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}

	return len(r.keys)
}

// All returns an iterator over the fields of r, in order.
func (r *Row) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if r == nil {
			return
		}

		for _, key := range r.keys {
			if !yield(key, r.values[key]) {
				return
			}
		}
	}
}

// Numeric returns the numeric fields of r as an evaluation context.
func (r *Row) Numeric() *Env {
	env := new(Env)

	for key, v := range r.All() {
		if f, ok := numeric(v); ok {
			env.Set(key, f)
		}
	}

	return env
}

// Clone returns a shallow copy of r.
func (r *Row) Clone() *Row {
	c := new(Row)

	for key, v := range r.All() {
		c.Set(key, v)
	}

	return c
}

// MarshalJSON encodes r as a JSON object with keys in order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	err := appendJSON(&buf, r.mapSlice())

	return buf.Bytes(), err
}

// MarshalYAML encodes r as an ordered YAML mapping. Numbers and strings
// are written so that [ReadRows] decodes each back to the same type.
func (r *Row) MarshalYAML() (any, error) {
	return yamlValue(r.mapSlice()), nil
}

func (r *Row) mapSlice() yaml.MapSlice {
	m := make(yaml.MapSlice, 0, r.Len())

	for key, v := range r.All() {
		m = append(m, yaml.MapItem{Key: key, Value: v})
	}

	return m
}

// ReadRows decodes rows from JSON or YAML. The document is either a single
// mapping (one row) or a sequence of mappings. Key order is preserved.
// Unquoted numbers are numeric fields whatever their notation; quoted
// values stay strings.
func ReadRows(r io.Reader) ([]*Row, error) {
	data, err := ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc any

	if err := decodeYAML(context.Background(), data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	switch v := doc.(type) {
	case nil:
		return nil, nil

	case yaml.MapSlice:
		return []*Row{RowOf(v)}, nil

	case []any:
		rows := make([]*Row, len(v))

		for i, item := range v {
			m, ok := item.(yaml.MapSlice)
			if !ok {
				return nil, ErrReadInput.With(slog.Int("row", i)).Wrap(errRowShape)
			}

			rows[i] = RowOf(m)
		}

		return rows, nil
	}

	return nil, ErrReadInput.Wrap(errRowShape)
}

// ComputeRows adds the value of each field's formula to every row.
//
// For each row, the numeric values form the base context, and the fields
// are evaluated with the same rules as [Compute]: formulas see only the base
// context, and a field named like an existing numeric value leaves that value
// unchanged. Non-numeric values with a field's name are replaced.
//
// Formulas are parsed once per call. The input rows are not modified. The
// first failure aborts the call; evaluation failures are reported as a
// [*RowError] wrapping a [*FormulaError].
func ComputeRows(ctx context.Context, rows []*Row, fields []Field, opts ...Option) ([]*Row, error) {
	cfg := makeConfig(opts...)

	trees := make([]Expr, len(fields))

	for i, f := range fields {
		e, err := cfg.parse(ctx, f.Formula)
		if err != nil {
			return nil, &FormulaError{Index: i, Name: f.Name, Formula: f.Formula, Err: err}
		}

		trees[i] = e
	}

	out := make([]*Row, len(rows))

	for r, row := range rows {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}

		base := row.Numeric()
		merged := row.Clone()

		for i, f := range fields {
			v, err := cfg.evaluate(ctx, trees[i], base)
			if err != nil {
				return nil, &RowError{
					Row: r,
					Err: &FormulaError{Index: i, Name: f.Name, Formula: f.Formula, Err: err},
				}
			}

			if _, ok := base.Lookup(f.Name); !ok {
				merged.Set(f.Name, v)
			}
		}

		out[r] = merged
	}

	cfg.logger.TraceContext(ctx, "compute rows",
		slog.Int("rows", len(rows)),
		slog.Int("fields", len(fields)),
	)

	return out, nil
}

// numeric reports whether v is a decoded number. Strings, including the
// non-finite spellings accepted by [Env], are not numbers in a row.
func numeric(v any) (float64, bool) {
	if _, ok := v.(string); ok {
		return 0, false
	}

	return toFloat(v)
}

// appendJSON encodes v with ordered mappings kept in order.
func appendJSON(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case yaml.MapSlice:
		buf.WriteByte('{')

		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := json.Marshal(fmt.Sprint(item.Key))
			if err != nil {
				return err
			}

			buf.Write(key)
			buf.WriteByte(':')

			if err := appendJSON(buf, item.Value); err != nil {
				return err
			}
		}

		buf.WriteByte('}')

		return nil

	case []any:
		buf.WriteByte('[')

		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := appendJSON(buf, item); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

		return nil

	case float64:
		buf.WriteString(jsonNumber(x))

		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	buf.Write(data)

	return nil
}
