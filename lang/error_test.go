package lang

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", NewError("boom"), "boom"},
		{"wrapped only", WrapError(io.EOF), "EOF"},
		{"message and cause", ErrReadInput.Wrap(io.ErrUnexpectedEOF), "failed to read input: unexpected EOF"},
		{"empty", &Error{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_WithDoesNotMutate(t *testing.T) {
	base := NewError("base").With(slog.Int("a", 1))
	one := base.With(slog.Int("b", 2))
	two := base.With(slog.Int("c", 3))

	if len(base.attrs) != 1 || len(one.attrs) != 2 || len(two.attrs) != 2 {
		t.Fatalf("attrs = %d, %d, %d", len(base.attrs), len(one.attrs), len(two.attrs))
	}

	if one.attrs[1].Key != "b" || two.attrs[1].Key != "c" {
		t.Errorf("attrs share backing storage: %v / %v", one.attrs, two.attrs)
	}
}

func TestError_Unwrap(t *testing.T) {
	err := ErrReadInput.With(slog.String("file", "x")).Wrap(io.EOF)

	if !errors.Is(err, io.EOF) {
		t.Error("wrapped cause not found")
	}

	if WrapError(err) != err {
		t.Error("WrapError rewrapped an *Error")
	}
}

func TestError_Is(t *testing.T) {
	err := ErrReadInput.With(slog.String("file", "x")).Wrap(io.EOF)

	if !errors.Is(err, ErrReadInput) {
		t.Error("derived error does not match its sentinel")
	}

	if errors.Is(err, ErrSyntax) {
		t.Error("derived error matches another sentinel")
	}

	if errors.Is(ErrReadInput, err) {
		t.Error("sentinel matches a derived error")
	}
}

func TestTypedErrors_Messages(t *testing.T) {
	pos := Position{Offset: 4, Line: 1, Column: 5}

	tests := []struct {
		err      error
		want     string
		sentinel error
	}{
		{
			&SyntaxError{Pos: pos, Msg: "unexpected '*'", Expected: []string{"number", "identifier"}},
			`syntax error at line 1, column 5: unexpected '*' (expected number, identifier)`,
			ErrSyntax,
		},
		{
			&UndefinedIdentifierError{Name: "x"},
			`identifier "x" not found in context`,
			ErrUndefinedIdentifier,
		},
		{
			&UnknownFunctionError{Name: "sqrt", Args: 2},
			`unknown function "sqrt" or wrong number of arguments (2)`,
			ErrUnknownFunction,
		},
		{
			&LengthMismatchError{Pair: PairComputed, Left: 2, Right: 1},
			`computed keys and formulas must have the same length (2 != 1)`,
			ErrLengthMismatch,
		},
		{
			&MalformedASTError{Path: "$.call", Reason: `missing key "args"`},
			`malformed AST payload at $.call: missing key "args"`,
			ErrMalformedAST,
		},
		{
			&MaxDepthError{Depth: 101, Max: 100, Pos: &pos},
			`maximum nesting depth exceeded (101 > 100) at line 1, column 5`,
			ErrMaxDepthExceeded,
		},
		{
			&RowError{Row: 2, Err: &FormulaError{
				Index: 0, Name: "y", Formula: "x", Err: &UndefinedIdentifierError{Name: "x"},
			}},
			`row 2: formula 0 (y = "x"): identifier "x" not found in context`,
			ErrUndefinedIdentifier,
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}

		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("%v does not match %v", tt.err, tt.sentinel)
		}

		if _, ok := tt.err.(slog.LogValuer); !ok {
			t.Errorf("%T is not a slog.LogValuer", tt.err)
		}
	}
}
