package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// Eval evaluates one formula against the given context values.
type Eval struct {
	Bindings `embed:""`

	Formula  string `arg:""                       help:"Formula to evaluate; read from --source when omitted" optional:""`
	Source   string `default:"-"                  help:"Formula input file or '-' for stdin"                 short:"f"`
	AST      bool   `help:"Read the formula as a JSON or YAML syntax tree"                                   name:"ast"`
	Lenient  bool   `help:"Print 0 instead of failing on errors and non-finite results"`
	MaxDepth int    `default:"${maxDepth}"        help:"Maximum nesting depth"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := langOptions(e.MaxDepth)

	env, err := e.env(ctx)
	if err != nil {
		return err
	}

	tree, err := readFormula(ctx, e.Formula, e.Source, e.AST, opts...)
	if err != nil {
		if !e.Lenient || errors.Is(err, ErrOpenSource) || errors.Is(err, lang.ErrReadInput) {
			return ErrParse.With(slog.String("command", "eval")).Wrap(err)
		}

		log.WarnContext(ctx, "formula parse failed", slog.Any("error", err))

		return e.print(ctx, 0)
	}

	var result float64

	if e.Lenient {
		result = lang.EvaluateLenient(ctx, tree, env, opts...)
	} else if result, err = lang.Evaluate(ctx, tree, env, opts...); err != nil {
		return ErrEvaluate.With(
			slog.String("command", "eval"),
			slog.String("formula", lang.String(tree)),
		).Wrap(err)
	}

	log.DebugContext(ctx, "formula evaluated",
		slog.String("formula", lang.String(tree)),
		slog.Float64("result", result),
		slog.Int("context", env.Len()),
	)

	return e.print(ctx, result)
}

func (e *Eval) print(ctx context.Context, v float64) error {
	if _, err := fmt.Fprintln(outputFrom(ctx), lang.FormatResult(v)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
