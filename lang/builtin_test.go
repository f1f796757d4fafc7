package lang

import (
	"errors"
	"math"
	"math/big"
	"slices"
	"testing"

	"github.com/zephyrtronium/bigfloat"
)

func TestBuiltins_Table(t *testing.T) {
	want := []string{
		"abs", "ceil", "cos", "exp", "floor", "log", "log10",
		"max", "min", "pow", "round", "sin", "sqrt", "tan",
	}

	if got := BuiltinNames(); !slices.Equal(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}

	var n int
	for b := range Builtins() {
		if _, ok := LookupBuiltin(b.Name); !ok {
			t.Errorf("LookupBuiltin(%q) failed", b.Name)
		}

		n++
	}

	if n != len(want) {
		t.Errorf("Builtins yielded %d, want %d", n, len(want))
	}

	if _, ok := LookupBuiltin("hypot"); ok {
		t.Error("LookupBuiltin(hypot) succeeded")
	}
}

func TestBuiltin_Arity(t *testing.T) {
	tests := []struct {
		name   string
		accept []int
		reject []int
	}{
		{"pow", []int{2}, []int{0, 1, 3}},
		{"sqrt", []int{1}, []int{0, 2}},
		{"max", []int{1, 2, 17}, []int{0}},
		{"min", []int{1, 3}, []int{0}},
	}

	for _, tt := range tests {
		b, ok := LookupBuiltin(tt.name)
		if !ok {
			t.Fatalf("missing builtin %q", tt.name)
		}

		for _, n := range tt.accept {
			if !b.Accepts(n) {
				t.Errorf("%s rejects %d arguments", tt.name, n)
			}
		}

		for _, n := range tt.reject {
			if b.Accepts(n) {
				t.Errorf("%s accepts %d arguments", tt.name, n)
			}

			_, err := b.Call(make([]float64, n)...)

			var fe *UnknownFunctionError
			if !errors.As(err, &fe) || fe.Name != tt.name || fe.Args != n {
				t.Errorf("%s with %d arguments: got %v", tt.name, n, err)
			}
		}
	}
}

func TestBuiltin_Signature(t *testing.T) {
	tests := map[string]string{
		"pow":  "pow(base, exponent)",
		"max":  "max(x, ...xs)",
		"sqrt": "sqrt(x)",
	}

	for name, want := range tests {
		b, _ := LookupBuiltin(name)
		if got := b.Signature(); got != want {
			t.Errorf("%s signature = %q, want %q", name, got, want)
		}
	}
}

func TestBuiltin_MaxMinSkipNaN(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name string
		args []float64
		want float64
	}{
		{"max", []float64{nan, 1, 3}, 3},
		{"max", []float64{2, nan}, 2},
		{"min", []float64{nan, 1, 3}, 1},
		{"min", []float64{5, nan, -1}, -1},
		{"max", []float64{math.Inf(-1), -5}, -5},
	}

	for _, tt := range tests {
		b, _ := LookupBuiltin(tt.name)

		got, err := b.Call(tt.args...)
		if err != nil {
			t.Fatal(err)
		}

		if got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.name, tt.args, got, tt.want)
		}
	}

	b, _ := LookupBuiltin("max")
	if got, _ := b.Call(nan, nan); !math.IsNaN(got) {
		t.Errorf("max(NaN, NaN) = %v, want NaN", got)
	}
}

func TestBuiltin_RoundHalfAwayFromZero(t *testing.T) {
	b, _ := LookupBuiltin("round")

	for in, want := range map[float64]float64{
		0.5: 1, 1.5: 2, 2.5: 3, 9.5: 10, -0.5: -1, -2.5: -3, 2.49: 2, -2.51: -3,
	} {
		if got, _ := b.Call(in); got != want {
			t.Errorf("round(%v) = %v, want %v", in, got, want)
		}
	}
}

// highPrecision evaluates fn at 256 bits and rounds to float64.
func highPrecision(fn func(z *big.Float, args ...*big.Float) *big.Float, args ...float64) float64 {
	const prec = 256

	in := make([]*big.Float, len(args))
	for i, a := range args {
		in[i] = new(big.Float).SetPrec(prec).SetFloat64(a)
	}

	out, _ := fn(new(big.Float).SetPrec(prec), in...).Float64()

	return out
}

func closeTo(got, want float64) bool {
	if got == want {
		return true
	}

	return math.Abs(got-want) <= 1e-14*math.Abs(want)
}

func TestBuiltin_AgainstHighPrecision(t *testing.T) {
	exp := func(z *big.Float, args ...*big.Float) *big.Float { return bigfloat.Exp(z, args[0]) }
	ln := func(z *big.Float, args ...*big.Float) *big.Float { return bigfloat.Log(z, args[0]) }
	pow := func(z *big.Float, args ...*big.Float) *big.Float { return bigfloat.Pow(z, args[0], args[1]) }

	for _, x := range []float64{-20, -1.5, -0.001, 0.25, 1, 2.5, 10, 100, 700} {
		got, err := EvaluateString(t.Context(), "exp(x)", mustEnv(t, "x", x))
		if err != nil {
			t.Fatal(err)
		}

		if want := highPrecision(exp, x); !closeTo(got, want) {
			t.Errorf("exp(%v) = %v, want %v", x, got, want)
		}
	}

	for _, x := range []float64{1e-300, 0.001, 0.5, 2, math.E, 10, 12345.678, 1e300} {
		got, err := EvaluateString(t.Context(), "log(x)", mustEnv(t, "x", x))
		if err != nil {
			t.Fatal(err)
		}

		if want := highPrecision(ln, x); !closeTo(got, want) {
			t.Errorf("log(%v) = %v, want %v", x, got, want)
		}

		got10, err := EvaluateString(t.Context(), "log10(x)", mustEnv(t, "x", x))
		if err != nil {
			t.Fatal(err)
		}

		ln10 := highPrecision(ln, 10)
		if want := highPrecision(ln, x) / ln10; !closeTo(got10, want) {
			t.Errorf("log10(%v) = %v, want %v", x, got10, want)
		}
	}

	for _, args := range [][2]float64{{2, 10}, {2, 0.5}, {10, -3}, {1.0001, 100}, {3.7, 2.2}, {0.5, 20}} {
		got, err := EvaluateString(t.Context(), "pow(b, e)", mustEnv(t, "b", args[0], "e", args[1]))
		if err != nil {
			t.Fatal(err)
		}

		if want := highPrecision(pow, args[0], args[1]); !closeTo(got, want) {
			t.Errorf("pow(%v, %v) = %v, want %v", args[0], args[1], got, want)
		}
	}
}
