package lang

import (
	"context"
	"log/slog"
)

// Compute evaluates a batch of named formulas against one base context.
//
// The context is built by pairing contextNames[i] with contextValues[i]
// (later pairs win). Each formula is parsed and evaluated against that base
// context only: computed values are not visible to other formulas. The first
// failing formula aborts the call with a [*FormulaError].
//
// The result holds every computed value in input order, followed by every
// context value. A context name that equals a computed name overwrites the
// computed value.
//
// Both length pairs are checked before any formula is parsed; a mismatch
// fails with [*LengthMismatchError].
func Compute(
	ctx context.Context,
	contextNames []string,
	contextValues []float64,
	computedNames []string,
	formulas []string,
	opts ...Option,
) (*Env, error) {
	if err := checkLengths(contextNames, contextValues, computedNames, formulas); err != nil {
		return nil, err
	}

	base, err := NewEnv(contextNames, contextValues)
	if err != nil {
		return nil, err
	}

	cfg := makeConfig(opts...)

	result := &Env{
		names:  make([]string, 0, len(formulas)+base.Len()),
		values: make(map[string]float64, len(formulas)+base.Len()),
	}

	for i, name := range computedNames {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}

		cfg.logger.TraceContext(ctx, "compute formula",
			slog.Int("index", i),
			slog.String("name", name),
			slog.String("source", formulas[i]),
		)

		v, err := cfg.computeOne(ctx, formulas[i], base)
		if err != nil {
			return nil, &FormulaError{
				Index:   i,
				Name:    name,
				Formula: formulas[i],
				Err:     err,
			}
		}

		result.Set(name, v)
	}

	for name, v := range base.All() {
		result.Set(name, v)
	}

	return result, nil
}

func (c config) computeOne(ctx context.Context, formula string, base *Env) (float64, error) {
	e, err := c.parse(ctx, formula)
	if err != nil {
		return 0, err
	}

	return c.evaluate(ctx, e, base)
}

func checkLengths(
	contextNames []string,
	contextValues []float64,
	computedNames []string,
	formulas []string,
) error {
	if len(contextNames) != len(contextValues) {
		return &LengthMismatchError{
			Pair:  PairContext,
			Left:  len(contextNames),
			Right: len(contextValues),
		}
	}

	if len(computedNames) != len(formulas) {
		return &LengthMismatchError{
			Pair:  PairComputed,
			Left:  len(computedNames),
			Right: len(formulas),
		}
	}

	return nil
}
