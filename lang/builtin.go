package lang

import (
	"iter"
	"math"
	"strings"
	"sync"
)

// Variadic is the MaxArgs of a builtin that accepts any number of arguments
// at or above its MinArgs.
const Variadic = -1

// Builtin describes a function callable from formulas.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int
	Params  []string
	Doc     string

	fn func(args []float64) float64
}

// Accepts reports whether the builtin can be called with n arguments.
func (b Builtin) Accepts(n int) bool {
	return n >= b.MinArgs && (b.MaxArgs == Variadic || n <= b.MaxArgs)
}

// Signature returns the call form of the builtin, e.g. "pow(base, exponent)"
// or "max(x, ...xs)".
func (b Builtin) Signature() string {
	return b.Name + "(" + strings.Join(b.Params, ", ") + ")"
}

// Call applies the builtin to args.
// It fails with [*UnknownFunctionError] if the argument count is not accepted.
func (b Builtin) Call(args ...float64) (float64, error) {
	if b.fn == nil || !b.Accepts(len(args)) {
		return 0, &UnknownFunctionError{Name: b.Name, Args: len(args)}
	}

	return b.fn(args), nil
}

func unary(name, doc string, fn func(float64) float64) Builtin {
	return Builtin{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Params:  []string{"x"},
		Doc:     doc,
		fn:      func(args []float64) float64 { return fn(args[0]) },
	}
}

func fold(name, doc string, fn func(float64, float64) float64) Builtin {
	return Builtin{
		Name:    name,
		MinArgs: 1,
		MaxArgs: Variadic,
		Params:  []string{"x", "...xs"},
		Doc:     doc,
		fn: func(args []float64) float64 {
			acc := args[0]
			for _, v := range args[1:] {
				acc = fn(acc, v)
			}

			return acc
		},
	}
}

// builtins is the fixed function table, sorted by name.
var builtins = []Builtin{
	unary("abs", "absolute value", math.Abs),
	unary("ceil", "smallest integer not less than x", math.Ceil),
	unary("cos", "cosine of x radians", math.Cos),
	unary("exp", "e raised to the power x", math.Exp),
	unary("floor", "largest integer not greater than x", math.Floor),
	unary("log", "natural logarithm", math.Log),
	unary("log10", "base-10 logarithm", math.Log10),
	fold("max", "largest argument", maxOf),
	fold("min", "smallest argument", minOf),
	{
		Name:    "pow",
		MinArgs: 2,
		MaxArgs: 2,
		Params:  []string{"base", "exponent"},
		Doc:     "base raised to the power exponent",
		fn:      func(args []float64) float64 { return math.Pow(args[0], args[1]) },
	},
	unary("round", "nearest integer, halves away from zero", math.Round),
	unary("sin", "sine of x radians", math.Sin),
	unary("sqrt", "square root", math.Sqrt),
	unary("tan", "tangent of x radians", math.Tan),
}

// maxOf and minOf skip NaN operands; the result is NaN only when every
// argument is NaN.
func maxOf(a, b float64) float64 {
	if math.IsNaN(a) || b > a {
		return b
	}

	return a
}

func minOf(a, b float64) float64 {
	if math.IsNaN(a) || b < a {
		return b
	}

	return a
}

var builtinIndex = sync.OnceValue(func() map[string]int {
	index := make(map[string]int, len(builtins))
	for i, b := range builtins {
		index[b.Name] = i
	}

	return index
})

// LookupBuiltin returns the builtin named name.
func LookupBuiltin(name string) (Builtin, bool) {
	i, ok := builtinIndex()[name]
	if !ok {
		return Builtin{}, false
	}

	return builtins[i], true
}

// Builtins returns an iterator over all builtins in name order.
func Builtins() iter.Seq[Builtin] {
	return func(yield func(Builtin) bool) {
		for _, b := range builtins {
			if !yield(b) {
				return
			}
		}
	}
}

// BuiltinNames returns the names of all builtins in name order.
func BuiltinNames() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.Name
	}

	return names
}
