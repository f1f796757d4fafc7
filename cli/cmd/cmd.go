package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

type (
	contextKey struct{}
	inputKey   struct{}
	outputKey  struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithInput returns a context whose commands read "-" sources from r
// instead of os.Stdin.
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

// WithOutput returns a context whose commands write results to w instead
// of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// openSource opens path, or the command input for "-". Closing the
// command input is a no-op.
func openSource(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == "" || path == stdinSource {
		return io.NopCloser(inputFrom(ctx)), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ErrOpenSource.With(slog.String("file", path)).Wrap(err)
	}

	return file, nil
}

// readSource reads the whole of path, or the command input for "-".
func readSource(ctx context.Context, path string) ([]byte, error) {
	r, err := openSource(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return lang.ReadAll(r)
}

// langOptions are the parse and evaluation options shared by every command.
func langOptions(maxDepth int) []lang.Option {
	return []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithMaxDepth(maxDepth),
	}
}

// Bindings holds the context values common to eval, compute and repl:
// an optional mapping file followed by NAME=VALUE pairs.
type Bindings struct {
	Context []string `help:"Bind a context value (repeatable)"                  placeholder:"NAME=VALUE" sep:"none" short:"c"`
	Vars    string   `help:"Read context values from a JSON or YAML mapping file" placeholder:"FILE"                           type:"path"`
}

// pairs returns the context names and values in command-line order, file
// values first. Names may repeat; later pairs win when they are merged.
func (b Bindings) pairs(ctx context.Context) (names []string, values []float64, err error) {
	if b.Vars != "" {
		data, err := readSource(ctx, b.Vars)
		if err != nil {
			return nil, nil, err
		}

		var env lang.Env
		if err := yaml.UnmarshalContext(ctx, data, &env); err != nil {
			return nil, nil, ErrBadContext.With(slog.String("file", b.Vars)).Wrap(err)
		}

		for name, v := range env.All() {
			names = append(names, name)
			values = append(values, v)
		}
	}

	for _, pair := range b.Context {
		name, v, err := parseContextPair(pair)
		if err != nil {
			return nil, nil, err
		}

		names = append(names, name)
		values = append(values, v)
	}

	return names, values, nil
}

// env merges the pairs into an [lang.Env].
func (b Bindings) env(ctx context.Context) (*lang.Env, error) {
	names, values, err := b.pairs(ctx)
	if err != nil {
		return nil, err
	}

	return lang.NewEnv(names, values)
}

// parseContextPair splits "NAME=VALUE" and parses VALUE as a float.
func parseContextPair(pair string) (string, float64, error) {
	name, value, ok := strings.Cut(pair, "=")
	name = strings.TrimSpace(name)

	if !ok || !lang.IsIdentifier(name) {
		return "", 0, ErrBadContext.With(slog.String("pair", pair))
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", 0, ErrBadContext.With(slog.String("pair", pair)).Wrap(err)
	}

	return name, v, nil
}

// parseField splits "NAME=FORMULA".
func parseField(arg string) (lang.Field, error) {
	name, formula, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)

	if !ok || !lang.IsIdentifier(name) || strings.TrimSpace(formula) == "" {
		return lang.Field{}, ErrBadField.With(slog.String("field", arg))
	}

	return lang.Field{Name: name, Formula: formula}, nil
}

// readFormula returns the tree for a formula given inline or read from
// source. With ast set, the text is a JSON or YAML transport document.
func readFormula(
	ctx context.Context,
	inline, source string,
	ast bool,
	opts ...lang.Option,
) (lang.Expr, error) {
	var (
		data []byte
		err  error
	)

	if inline != "" {
		data = []byte(inline)
	} else if data, err = readSource(ctx, source); err != nil {
		return nil, err
	}

	if !ast {
		return lang.Parse(ctx, string(data), opts...)
	}

	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "{") {
		return lang.DecodeJSON(data, opts...)
	}

	return lang.DecodeYAML(ctx, data, opts...)
}

// Vars returns the kong variables interpolated into command tags.
func Vars() kong.Vars {
	return kong.Vars{
		"maxDepth": strconv.Itoa(lang.DefaultMaxDepth),
		"outputs":  "json,yaml",
	}
}
