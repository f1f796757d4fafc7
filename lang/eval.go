package lang

import (
	"context"
	"log/slog"
	"math"
)

// Evaluate computes the value of e against env.
//
// Identifiers resolve through env (a nil env is empty). Both operands of an
// operator are always evaluated, left first. Division by exactly zero yields
// zero. Calls evaluate every argument before dispatching on the function
// name and argument count.
func Evaluate(ctx context.Context, e Expr, env *Env, opts ...Option) (float64, error) {
	cfg := makeConfig(opts...)

	return cfg.evaluate(ctx, e, env)
}

// EvaluateString parses formula and evaluates it against env.
func EvaluateString(ctx context.Context, formula string, env *Env, opts ...Option) (float64, error) {
	cfg := makeConfig(opts...)

	e, err := cfg.parse(ctx, formula)
	if err != nil {
		return 0, err
	}

	return cfg.evaluate(ctx, e, env)
}

func (c config) evaluate(ctx context.Context, e Expr, env *Env) (float64, error) {
	ev := evaluator{env: env, maxDepth: c.maxDepth}

	v, err := ev.eval(e, 0)
	if err != nil {
		c.logger.TraceContext(ctx, "evaluate failed",
			formulaAttr(e),
			slog.Any("error", err),
		)

		return 0, err
	}

	c.logger.TraceContext(ctx, "evaluate",
		formulaAttr(e),
		slog.Float64("result", v),
	)

	return v, nil
}

// evaluator holds the state for recursive evaluation.
type evaluator struct {
	env      *Env
	maxDepth int
}

// eval evaluates e found at the given nesting depth (see [Depth]).
func (ev *evaluator) eval(e Expr, depth int) (float64, error) {
	if depth > ev.maxDepth {
		return 0, &MaxDepthError{Depth: depth, Max: ev.maxDepth}
	}

	switch n := e.(type) {
	case *Literal:
		if n != nil {
			return n.Value, nil
		}

	case *Identifier:
		if n == nil {
			break
		}

		if v, ok := ev.env.Lookup(n.Name); ok {
			return v, nil
		}

		return 0, &UndefinedIdentifierError{Name: n.Name}

	case *Call:
		if n != nil {
			return ev.call(n, depth)
		}

	case *BinaryOp:
		if n != nil {
			return ev.binary(n, depth)
		}
	}

	return 0, &MalformedASTError{Reason: "nil expression"}
}

func (ev *evaluator) call(n *Call, depth int) (float64, error) {
	args := make([]float64, len(n.Args))

	for i, arg := range n.Args {
		v, err := ev.eval(arg, depth+1)
		if err != nil {
			return 0, err
		}

		args[i] = v
	}

	b, ok := LookupBuiltin(n.Name)
	if !ok {
		return 0, &UnknownFunctionError{Name: n.Name, Args: len(args)}
	}

	return b.Call(args...)
}

// binary evaluates an operator node. The chain of operator nodes reached
// through left operands is unwound into a slice and folded bottom-up, so
// that only right operands recurse.
func (ev *evaluator) binary(n *BinaryOp, depth int) (float64, error) {
	type frame struct {
		op    *BinaryOp
		depth int
	}

	chain := []frame{{n, depth}}

	for {
		top := chain[len(chain)-1]

		left, ok := top.op.Left.(*BinaryOp)
		if !ok || left == nil {
			break
		}

		d := top.depth
		if needsParens(top.op, left, false) {
			d++

			if d > ev.maxDepth {
				return 0, &MaxDepthError{Depth: d, Max: ev.maxDepth}
			}
		}

		chain = append(chain, frame{left, d})
	}

	bottom := chain[len(chain)-1]

	acc, err := ev.eval(bottom.op.Left, bottom.depth)
	if err != nil {
		return 0, err
	}

	for i := len(chain) - 1; i >= 0; i-- {
		f := chain[i]

		right, err := ev.eval(f.op.Right, rightDepth(f.op, f.depth))
		if err != nil {
			return 0, err
		}

		v, ok := apply(f.op.Op, acc, right)
		if !ok {
			return 0, &MalformedASTError{
				Reason: "unknown operator " + f.op.Op.String(),
			}
		}

		acc = v
	}

	return acc, nil
}

// apply computes l op r. Division by zero (of either sign) yields zero.
func apply(op Op, l, r float64) (float64, bool) {
	switch op {
	case OpAdd:
		return l + r, true
	case OpSub:
		return l - r, true
	case OpMul:
		return l * r, true
	case OpDiv:
		if r == 0 {
			return 0, true
		}

		return l / r, true
	}

	return math.NaN(), false
}
