package lang

import (
	"bytes"
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/lexer"
	yamlparser "github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

var errMultipleDocuments = errors.New("expected a single YAML document")

// decimalNumber matches the plain decimal notation shared by JSON and
// formula literals, with an optional exponent.
var decimalNumber = regexp.MustCompile(`^[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?$`)

// yamlFloat is a float64 encoded as a YAML scalar that decodes back as a
// float. goccy/go-yaml reads an exponent without a fraction, such as 1e-06,
// as a string, so the mantissa always carries a fraction.
type yamlFloat float64

func (f yamlFloat) MarshalYAML() ([]byte, error) {
	return []byte(yamlFloatText(float64(f))), nil
}

func yamlFloatText(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}

	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}

	if i := strings.IndexByte(s, 'e'); i >= 0 {
		return s[:i] + ".0" + s[i:]
	}

	return s + ".0"
}

// yamlValue wraps the floats and number-like strings in v so that
// decodeYAML reads each back with its original type.
func yamlValue(v any) any {
	switch x := v.(type) {
	case float64:
		return yamlFloat(x)

	case string:
		if decimalNumber.MatchString(x) {
			return quoted(x)
		}

	case yaml.MapSlice:
		m := make(yaml.MapSlice, len(x))
		for i, item := range x {
			m[i] = yaml.MapItem{Key: item.Key, Value: yamlValue(item.Value)}
		}

		return m

	case []any:
		list := make([]any, len(x))
		for i, item := range x {
			list[i] = yamlValue(item)
		}

		return list
	}

	return v
}

// decodeYAML decodes a single YAML or JSON document into v.
//
// Untagged plain scalars in decimal notation are decoded as numbers even
// where goccy/go-yaml would produce a string (1e-6, 2E5, integers too large
// for int64). Quoted and tagged scalars keep their type. A stream with more
// than one non-empty document is rejected; an empty stream leaves v
// unchanged.
func decodeYAML(ctx context.Context, data []byte, v any, opts ...yaml.DecodeOption) error {
	tokens := lexer.Tokenize(string(data))

	for i, tk := range tokens {
		if tk.Type != token.StringType || !decimalNumber.MatchString(tk.Value) {
			continue
		}

		if adjacentType(tokens, i, -1) == token.TagType ||
			adjacentType(tokens, i, 1) == token.MappingValueType {
			continue
		}

		f, err := strconv.ParseFloat(tk.Value, 64)
		if err != nil || math.IsInf(f, 0) {
			continue
		}

		tk.Type = token.FloatType
		tk.Value = yamlFloatText(f)
	}

	file, err := yamlparser.Parse(tokens, 0)
	if err != nil {
		return err
	}

	var body ast.Node

	for _, doc := range file.Docs {
		if doc == nil || doc.Body == nil {
			continue
		}

		if body != nil {
			return errMultipleDocuments
		}

		body = doc.Body
	}

	if body == nil {
		return nil
	}

	return yaml.NewDecoder(bytes.NewReader(nil), opts...).DecodeFromNodeContext(ctx, body, v)
}

// adjacentType returns the type of the nearest token before (dir < 0) or
// after (dir > 0) tokens[i], skipping whitespace and comments.
func adjacentType(tokens token.Tokens, i, dir int) token.Type {
	for j := i + dir; j >= 0 && j < len(tokens); j += dir {
		switch t := tokens[j].Type; t {
		case token.SpaceType, token.CommentType:
		default:
			return t
		}
	}

	return token.UnknownType
}
