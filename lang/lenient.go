package lang

import (
	"context"
	"log/slog"
	"math"
)

// EvaluateLenient evaluates e against env, substituting zero when evaluation
// fails or produces NaN or an infinity. Substitutions are logged at WARN
// level through the configured logger.
func EvaluateLenient(ctx context.Context, e Expr, env *Env, opts ...Option) float64 {
	cfg := makeConfig(opts...)

	v, err := cfg.evaluate(ctx, e, env)

	return cfg.lenient(ctx, e, v, err)
}

// ExecuteLenient parses and evaluates formula against env like
// [EvaluateLenient]; a syntax error also yields zero.
func ExecuteLenient(ctx context.Context, formula string, env *Env, opts ...Option) float64 {
	cfg := makeConfig(opts...)

	e, err := cfg.parse(ctx, formula)
	if err != nil {
		cfg.logger.WarnContext(ctx, "formula parse failed",
			slog.String("source", formula),
			slog.Any("error", err),
		)

		return 0
	}

	v, err := cfg.evaluate(ctx, e, env)

	return cfg.lenient(ctx, e, v, err)
}

func (c config) lenient(ctx context.Context, e Expr, v float64, err error) float64 {
	if err != nil {
		c.logger.WarnContext(ctx, "formula evaluation failed",
			formulaAttr(e),
			slog.Any("error", err),
		)

		return 0
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		c.logger.WarnContext(ctx, "formula result is not finite",
			formulaAttr(e),
			slog.String("result", FormatResult(v)),
		)

		return 0
	}

	return v
}
