package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"log/slog"
	"math"
	"strconv"

	"github.com/goccy/go-yaml"
)

var (
	errNonObject    = errors.New("not an object")
	errNonStringKey = errors.New("key is not a string")
	errNonNumber    = errors.New("value is not a number")
)

// Env is an ordered mapping from identifier names to values.
//
// It serves both as the evaluation context and as the result set of
// [Compute]. Names keep the position of their first insertion; setting an
// existing name replaces its value in place. The zero value is an empty Env
// ready to use, and a nil *Env behaves as an empty, read-only Env.
type Env struct {
	names  []string
	values map[string]float64
}

// NewEnv pairs names[i] with values[i]. Later pairs overwrite earlier pairs
// with the same name. It fails with [*LengthMismatchError] if the sequences
// differ in length.
func NewEnv(names []string, values []float64) (*Env, error) {
	if len(names) != len(values) {
		return nil, &LengthMismatchError{
			Pair:  PairContext,
			Left:  len(names),
			Right: len(values),
		}
	}

	env := &Env{
		names:  make([]string, 0, len(names)),
		values: make(map[string]float64, len(names)),
	}

	for i, name := range names {
		env.Set(name, values[i])
	}

	return env, nil
}

// Set assigns v to name and returns e for chaining.
func (e *Env) Set(name string, v float64) *Env {
	if e.values == nil {
		e.values = make(map[string]float64)
	}

	if _, ok := e.values[name]; !ok {
		e.names = append(e.names, name)
	}

	e.values[name] = v

	return e
}

// Lookup returns the value of name.
func (e *Env) Lookup(name string) (float64, bool) {
	if e == nil {
		return 0, false
	}

	v, ok := e.values[name]

	return v, ok
}

// Delete removes name, reporting whether it was present.
func (e *Env) Delete(name string) bool {
	if e == nil {
		return false
	}

	if _, ok := e.values[name]; !ok {
		return false
	}

	delete(e.values, name)

	for i, n := range e.names {
		if n == name {
			e.names = append(e.names[:i], e.names[i+1:]...)

			break
		}
	}

	return true
}

// Len returns the number of names in e.
func (e *Env) Len() int {
	if e == nil {
		return 0
	}

	return len(e.names)
}

// Names returns a copy of the names in e, in order.
func (e *Env) Names() []string {
	if e == nil {
		return nil
	}

	return append([]string(nil), e.names...)
}

// All returns an iterator over the name/value pairs of e, in order.
func (e *Env) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		if e == nil {
			return
		}

		for _, name := range e.names {
			if !yield(name, e.values[name]) {
				return
			}
		}
	}
}

// Clone returns an independent copy of e.
func (e *Env) Clone() *Env {
	c := new(Env)

	for name, v := range e.All() {
		c.Set(name, v)
	}

	return c
}

// MarshalJSON encodes e as a JSON object with keys in order.
// Non-finite values, which JSON cannot represent, are encoded as the strings
// "NaN", "+Inf", and "-Inf".
func (e *Env) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	first := true

	for name, v := range e.All() {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(jsonNumber(v))
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into e, keeping document order.
func (e *Env) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrReadInput.Wrap(errNonObject)
	}

	env := new(Env)

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		name, _ := tok.(string)

		tok, err = dec.Token()
		if err != nil {
			return err
		}

		v, ok := toFloat(tok)
		if !ok {
			return ErrReadInput.With(slog.String("name", name)).Wrap(errNonNumber)
		}

		env.Set(name, v)
	}

	*e = *env

	return nil
}

// MarshalYAML encodes e as an ordered YAML mapping. Every value is written
// as a float scalar, so exponent forms such as 1.0e-06 read back as numbers.
func (e *Env) MarshalYAML() (any, error) {
	m := make(yaml.MapSlice, 0, e.Len())

	for name, v := range e.All() {
		m = append(m, yaml.MapItem{Key: name, Value: yamlFloat(v)})
	}

	return m, nil
}

// UnmarshalYAML decodes a YAML mapping into e, keeping document order.
// Plain scalars in exponent form (1e-3, 2E5) are numbers.
func (e *Env) UnmarshalYAML(data []byte) error {
	var m yaml.MapSlice

	if err := decodeYAML(context.Background(), data, &m, yaml.UseOrderedMap()); err != nil {
		return ErrReadInput.Wrap(err)
	}

	env := new(Env)

	for _, item := range m {
		name, ok := item.Key.(string)
		if !ok {
			return ErrReadInput.Wrap(errNonStringKey)
		}

		v, ok := toFloat(item.Value)
		if !ok {
			return ErrReadInput.With(slog.String("name", name)).Wrap(errNonNumber)
		}

		env.Set(name, v)
	}

	*e = *env

	return nil
}

func jsonNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return `"NaN"`
	case math.IsInf(v, 1):
		return `"+Inf"`
	case math.IsInf(v, -1):
		return `"-Inf"`
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

// toFloat converts a decoded JSON or YAML scalar to a float64.
// Strings are accepted only for the non-finite spellings written by
// [Env.MarshalJSON].
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	case string:
		switch n {
		case "NaN":
			return math.NaN(), true
		case "+Inf", "Inf":
			return math.Inf(1), true
		case "-Inf":
			return math.Inf(-1), true
		}
	}

	return 0, false
}
