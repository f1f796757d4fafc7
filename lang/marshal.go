package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/zeebo/xxh3"
)

// Transport keys of the AST payload.
const (
	keyLiteral    = "literal"
	keyIdentifier = "identifier"
	keyCall       = "call"
	keyBinaryOp   = "binaryOp"
	keyName       = "name"
	keyArgs       = "args"
	keyOp         = "op"
	keyLeft       = "left"
	keyRight      = "right"
)

// ToNative converts e to its transport shape built from maps, slices,
// strings, and float64 values:
//
//	{"literal": 2.5}
//	{"identifier": "x"}
//	{"call": {"name": "max", "args": [...]}}
//	{"binaryOp": {"op": "+", "left": {...}, "right": {...}}}
//
// A nil node converts to nil.
func ToNative(e Expr) any {
	return native(e,
		func(v float64) any { return v },
		func(op Op) any { return op.String() },
	)
}

// quoted is a string always encoded as a double-quoted YAML scalar.
// A plain "-" or "*" would be read back as a sequence entry or an alias.
type quoted string

func (q quoted) MarshalYAML() ([]byte, error) {
	return []byte(strconv.Quote(string(q))), nil
}

// yamlNative is ToNative with literals and operators wrapped so that every
// scalar decodes back to the type it was written as.
func yamlNative(e Expr) any {
	return native(e,
		func(v float64) any { return yamlFloat(v) },
		func(op Op) any { return quoted(op.String()) },
	)
}

func native(e Expr, num func(float64) any, opValue func(Op) any) any {
	switch n := e.(type) {
	case *Literal:
		if n != nil {
			return map[string]any{keyLiteral: num(n.Value)}
		}

	case *Identifier:
		if n != nil {
			return map[string]any{keyIdentifier: n.Name}
		}

	case *Call:
		if n != nil {
			args := make([]any, len(n.Args))
			for i, arg := range n.Args {
				args[i] = native(arg, num, opValue)
			}

			return map[string]any{keyCall: map[string]any{
				keyName: n.Name,
				keyArgs: args,
			}}
		}

	case *BinaryOp:
		if n != nil {
			return map[string]any{keyBinaryOp: map[string]any{
				keyOp:    opValue(n.Op),
				keyLeft:  native(n.Left, num, opValue),
				keyRight: native(n.Right, num, opValue),
			}}
		}
	}

	return nil
}

// FromNative converts a decoded transport payload back into a tree.
//
// Objects may be map[string]any, map[any]any, or [yaml.MapSlice]; numbers
// may be any Go numeric type or [json.Number]. Every violation of the
// transport shape fails with [*MalformedASTError] locating the offending
// value, and a tree nested deeper than the configured limit fails with
// [*MaxDepthError].
func FromNative(v any, opts ...Option) (Expr, error) {
	cfg := makeConfig(opts...)

	return cfg.fromNative(v)
}

func (c config) fromNative(v any) (Expr, error) {
	e, err := decodeNode(v, "$")
	if err != nil {
		return nil, err
	}

	if d := Depth(e); d > c.maxDepth {
		return nil, &MaxDepthError{Depth: d, Max: c.maxDepth}
	}

	return e, nil
}

// EncodeJSON returns the compact JSON transport encoding of e.
// Object keys are sorted, so equal trees encode to identical bytes.
func EncodeJSON(e Expr) ([]byte, error) {
	return json.Marshal(ToNative(e))
}

// DecodeJSON decodes a JSON transport payload. Invalid JSON, duplicate
// object keys, and data after the payload fail with [*MalformedASTError].
func DecodeJSON(data []byte, opts ...Option) (Expr, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, malformed("$", "invalid JSON: %v", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("$", "trailing data after payload")
	}

	return FromNative(v, opts...)
}

// decodeJSONValue reads one JSON value from dec. Objects become
// [yaml.MapSlice] so that duplicate keys survive to be rejected by
// decodeObject.
func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch tok {
	case json.Delim('{'):
		var m yaml.MapSlice

		for dec.More() {
			key, err := dec.Token()
			if err != nil {
				return nil, err
			}

			v, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}

			m = append(m, yaml.MapItem{Key: key, Value: v})
		}

		if _, err := dec.Token(); err != nil {
			return nil, err
		}

		if m == nil {
			m = yaml.MapSlice{}
		}

		return m, nil

	case json.Delim('['):
		list := []any{}

		for dec.More() {
			v, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}

			list = append(list, v)
		}

		if _, err := dec.Token(); err != nil {
			return nil, err
		}

		return list, nil
	}

	return tok, nil
}

// EncodeYAML returns the YAML transport encoding of e.
func EncodeYAML(ctx context.Context, e Expr) ([]byte, error) {
	return yaml.MarshalContext(ctx, yamlNative(e), yaml.Indent(2))
}

// DecodeYAML decodes a YAML transport payload. Since JSON is a subset of
// YAML, DecodeYAML also accepts JSON payloads. Invalid YAML, duplicate keys,
// and a second document fail with [*MalformedASTError].
func DecodeYAML(ctx context.Context, data []byte, opts ...Option) (Expr, error) {
	var v any
	if err := decodeYAML(ctx, data, &v, yaml.UseOrderedMap()); err != nil {
		return nil, malformed("$", "invalid YAML: %v", err)
	}

	return FromNative(v, opts...)
}

// Fingerprint returns the xxh3 hash of the JSON transport encoding of e.
// Trees that are [Equal] have equal fingerprints.
func Fingerprint(e Expr) uint64 {
	data, err := EncodeJSON(e)
	if err != nil {
		return 0
	}

	return xxh3.Hash(data)
}

func decodeNode(v any, path string) (Expr, error) {
	obj, err := decodeObject(v, path)
	if err != nil {
		return nil, err
	}

	if len(obj) != 1 {
		return nil, malformed(path, "node must have exactly one key, found %d", len(obj))
	}

	var key string
	for k := range obj {
		key = k
	}

	body, at := obj[key], path+"."+key

	switch key {
	case keyLiteral:
		f, ok := numeric(body)
		if !ok {
			return nil, malformed(at, "literal must be a number")
		}

		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, malformed(at, "literal must be finite")
		}

		return Num(f), nil

	case keyIdentifier:
		name, err := decodeName(body, at)
		if err != nil {
			return nil, err
		}

		return Ident(name), nil

	case keyCall:
		return decodeCall(body, at)

	case keyBinaryOp:
		return decodeBinaryOp(body, at)
	}

	return nil, malformed(path, "unknown node kind %q", key)
}

func decodeCall(v any, path string) (Expr, error) {
	obj, err := decodeBody(v, path, keyName, keyArgs)
	if err != nil {
		return nil, err
	}

	name, err := decodeName(obj[keyName], path+"."+keyName)
	if err != nil {
		return nil, err
	}

	list, ok := obj[keyArgs].([]any)
	if !ok {
		return nil, malformed(path+"."+keyArgs, "args must be an array")
	}

	args := make([]Expr, len(list))

	for i, item := range list {
		arg, err := decodeNode(item, path+"."+keyArgs+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}

		args[i] = arg
	}

	return &Call{Name: name, Args: args}, nil
}

func decodeBinaryOp(v any, path string) (Expr, error) {
	obj, err := decodeBody(v, path, keyOp, keyLeft, keyRight)
	if err != nil {
		return nil, err
	}

	s, ok := obj[keyOp].(string)
	if !ok {
		return nil, malformed(path+"."+keyOp, "op must be a string")
	}

	op, ok := ParseOp(s)
	if !ok {
		return nil, malformed(path+"."+keyOp, "unknown operator %q", s)
	}

	left, err := decodeNode(obj[keyLeft], path+"."+keyLeft)
	if err != nil {
		return nil, err
	}

	right, err := decodeNode(obj[keyRight], path+"."+keyRight)
	if err != nil {
		return nil, err
	}

	return Bin(op, left, right), nil
}

// decodeBody decodes an object that must have exactly the given keys.
func decodeBody(v any, path string, keys ...string) (map[string]any, error) {
	obj, err := decodeObject(v, path)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			return nil, malformed(path, "missing key %q", key)
		}
	}

	for key := range obj {
		if !slices.Contains(keys, key) {
			return nil, malformed(path, "unexpected key %q", key)
		}
	}

	return obj, nil
}

func decodeObject(v any, path string) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil

	case map[any]any:
		obj := make(map[string]any, len(m))

		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, malformed(path, "object key %v is not a string", k)
			}

			obj[key] = val
		}

		return obj, nil

	case yaml.MapSlice:
		obj := make(map[string]any, len(m))

		for _, item := range m {
			key, ok := item.Key.(string)
			if !ok {
				return nil, malformed(path, "object key %v is not a string", item.Key)
			}

			if _, dup := obj[key]; dup {
				return nil, malformed(path, "duplicate key %q", key)
			}

			obj[key] = item.Value
		}

		return obj, nil
	}

	return nil, malformed(path, "expected an object, found %s", kindOf(v))
}

func decodeName(v any, path string) (string, error) {
	name, ok := v.(string)
	if !ok {
		return "", malformed(path, "name must be a string")
	}

	if !IsIdentifier(name) {
		return "", malformed(path, "invalid identifier %q", name)
	}

	return name, nil
}

func malformed(path, format string, args ...any) error {
	return &MalformedASTError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	}

	if _, ok := numeric(v); ok {
		return "a number"
	}

	return fmt.Sprintf("%T", v)
}
