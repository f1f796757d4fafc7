package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// Compute evaluates a batch of named formulas. Without --rows the formulas
// share one context and the result is a single mapping of computed and
// context values. With --rows each record of the file is a context and
// gains one value per formula.
type Compute struct {
	Bindings `embed:""`

	Fields   []string `arg:""                help:"Named formula to compute"                        name:"field" optional:"" placeholder:"NAME=FORMULA"`
	Formula  []string `help:"Named formula to compute (repeatable)" placeholder:"NAME=FORMULA"        sep:"none"   short:"F"`
	Rows     string   `help:"Read records from a JSON or YAML file or '-' for stdin" placeholder:"FILE"`
	Output   string   `default:"json"        enum:"${outputs}"                                       help:"Output format (${enum})" short:"o"`
	Indent   int      `default:"2"           help:"Indent width; 0 for compact output"                short:"i"`
	MaxDepth int      `default:"${maxDepth}" help:"Maximum nesting depth"`
}

// Run executes the compute command.
func (c *Compute) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	fields := make([]lang.Field, 0, len(c.Formula)+len(c.Fields))

	for _, arg := range slices.Concat(c.Formula, c.Fields) {
		f, err := parseField(arg)
		if err != nil {
			return err
		}

		fields = append(fields, f)
	}

	opts := langOptions(c.MaxDepth)

	var result any

	if c.Rows != "" {
		result, err = c.computeRows(ctx, fields, opts...)
	} else {
		result, err = c.computeEnv(ctx, fields, opts...)
	}

	if err != nil {
		return ErrCompute.With(slog.Int("fields", len(fields))).Wrap(err)
	}

	return c.write(ctx, result)
}

func (c *Compute) computeEnv(ctx context.Context, fields []lang.Field, opts ...lang.Option) (*lang.Env, error) {
	names, values, err := c.pairs(ctx)
	if err != nil {
		return nil, err
	}

	computed := make([]string, len(fields))
	formulas := make([]string, len(fields))

	for i, f := range fields {
		computed[i], formulas[i] = f.Name, f.Formula
	}

	env, err := lang.Compute(ctx, names, values, computed, formulas, opts...)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "computed formulas",
		slog.Int("context", len(names)),
		slog.Int("formulas", len(formulas)),
		slog.Int("results", env.Len()),
	)

	return env, nil
}

// computeRows applies the fields to every record. Context values from the
// command line fill in names a record does not define.
func (c *Compute) computeRows(ctx context.Context, fields []lang.Field, opts ...lang.Option) ([]*lang.Row, error) {
	r, err := openSource(ctx, c.Rows)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rows, err := lang.ReadRows(r)
	if err != nil {
		return nil, err
	}

	base, err := c.env(ctx)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		merged := row.Clone()

		for name, v := range base.All() {
			if _, ok := merged.Get(name); !ok {
				merged.Set(name, v)
			}
		}

		rows[i] = merged
	}

	out, err := lang.ComputeRows(ctx, rows, fields, opts...)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "computed rows",
		slog.Int("rows", len(out)),
		slog.Int("fields", len(fields)),
	)

	return out, nil
}

func (c *Compute) write(ctx context.Context, v any) error {
	var (
		data []byte
		err  error
	)

	switch c.Output {
	case "yaml":
		opt := yaml.Flow(true)
		if c.Indent > 0 {
			opt = yaml.Indent(c.Indent)
		}

		data, err = yaml.MarshalContext(ctx, v, opt)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	default:
		if c.Indent > 0 {
			data, err = json.MarshalIndent(v, "", strings.Repeat(" ", c.Indent))
		} else {
			data, err = json.Marshal(v)
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		data = append(data, '\n')
	}

	if _, err := outputFrom(ctx).Write(data); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
