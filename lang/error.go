package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every typed error in this package unwraps to one of these, so callers can
// match categories with [errors.Is] and payloads with [errors.As].
var (
	ErrSyntax              = NewError("syntax error")
	ErrUndefinedIdentifier = NewError("undefined identifier")
	ErrUnknownFunction     = NewError("unknown function or wrong number of arguments")
	ErrLengthMismatch      = NewError("length mismatch")
	ErrMalformedAST        = NewError("malformed AST payload")
	ErrMaxDepthExceeded    = NewError("maximum nesting depth exceeded")
	ErrReadInput           = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
// An error that already is (or wraps) an *Error is returned as is.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>", or "" depending on which are set.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Is reports whether target is the sentinel e was derived from with
// [Error.With] or [Error.Wrap].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg && t.err == nil && len(t.attrs) == 0
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// The receiver is not modified.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: append(slices.Clip(e.attrs), attrs...),
	}
}

// Position is a location in formula text.
// Offset is a zero-based byte offset; Line and Column are one-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}

func (p Position) attrs() slog.Attr {
	return slog.Group("position",
		slog.Int("offset", p.Offset),
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
	)
}

// SyntaxError reports formula text that does not match the grammar.
//
// Remainder is set when a complete expression was parsed but input was left
// over; it holds the unconsumed text.
type SyntaxError struct {
	Pos       Position
	Msg       string
	Expected  []string
	Remainder string
	Source    string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder

	b.WriteString("syntax error at ")
	b.WriteString(e.Pos.String())
	b.WriteString(": ")
	b.WriteString(e.Msg)

	if e.Remainder != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Remainder))
	}

	if len(e.Expected) > 0 {
		b.WriteString(" (expected ")
		b.WriteString(strings.Join(e.Expected, ", "))
		b.WriteString(")")
	}

	return b.String()
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

func (e *SyntaxError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrSyntax.msg),
		slog.String("message", e.Msg),
		e.Pos.attrs(),
	}

	if len(e.Expected) > 0 {
		attrs = append(attrs, slog.Any("expected", e.Expected))
	}

	if e.Remainder != "" {
		attrs = append(attrs, slog.String("remainder", e.Remainder))
	}

	return slog.GroupValue(attrs...)
}

// Snippet renders the offending source line with a caret under the error
// column:
//
//	  1 | a + * b
//	          ^
//
// It returns the empty string when Source is unset or the position is out
// of range.
func (e *SyntaxError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Source == "" || e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.Pos.Line)

	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(lines[e.Pos.Line-1])
	b.WriteByte('\n')

	// 2 leading spaces + " | " is 5 columns.
	b.WriteString(strings.Repeat(" ", len(num)+5+max(e.Pos.Column-1, 0)))
	b.WriteString("^\n")

	return b.String()
}

// UndefinedIdentifierError reports an identifier absent from the context.
type UndefinedIdentifierError struct {
	Name string
}

func (e *UndefinedIdentifierError) Error() string {
	return "identifier " + strconv.Quote(e.Name) + " not found in context"
}

func (e *UndefinedIdentifierError) Unwrap() error { return ErrUndefinedIdentifier }

func (e *UndefinedIdentifierError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrUndefinedIdentifier.msg),
		slog.String("name", e.Name),
	)
}

// UnknownFunctionError reports a call to a function that is not built in,
// or a call whose argument count the function does not accept.
type UnknownFunctionError struct {
	Name string
	Args int
}

func (e *UnknownFunctionError) Error() string {
	return "unknown function " + strconv.Quote(e.Name) +
		" or wrong number of arguments (" + strconv.Itoa(e.Args) + ")"
}

func (e *UnknownFunctionError) Unwrap() error { return ErrUnknownFunction }

func (e *UnknownFunctionError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrUnknownFunction.msg),
		slog.String("name", e.Name),
		slog.Int("args", e.Args),
	)
}

// Pair identifies which pair of parallel inputs disagreed in length.
type Pair int

const (
	PairContext  Pair = iota // context names and values
	PairComputed             // computed names and formulas
)

func (p Pair) String() string {
	switch p {
	case PairContext:
		return "context"
	case PairComputed:
		return "computed"
	default:
		return "Pair(" + strconv.Itoa(int(p)) + ")"
	}
}

// LengthMismatchError reports parallel input sequences of unequal length.
type LengthMismatchError struct {
	Pair  Pair
	Left  int
	Right int
}

func (e *LengthMismatchError) Error() string {
	var what string

	switch e.Pair {
	case PairContext:
		what = "context keys and values"
	case PairComputed:
		what = "computed keys and formulas"
	default:
		what = e.Pair.String() + " inputs"
	}

	return what + " must have the same length (" +
		strconv.Itoa(e.Left) + " != " + strconv.Itoa(e.Right) + ")"
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

func (e *LengthMismatchError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrLengthMismatch.msg),
		slog.String("pair", e.Pair.String()),
		slog.Int("left", e.Left),
		slog.Int("right", e.Right),
	)
}

// MalformedASTError reports a transport payload that is not a valid AST.
// Path locates the offending node, e.g. "$.binaryOp.left.call.args[1]".
type MalformedASTError struct {
	Path   string
	Reason string
}

func (e *MalformedASTError) Error() string {
	if e.Path == "" {
		return ErrMalformedAST.msg + ": " + e.Reason
	}

	return ErrMalformedAST.msg + " at " + e.Path + ": " + e.Reason
}

func (e *MalformedASTError) Unwrap() error { return ErrMalformedAST }

func (e *MalformedASTError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrMalformedAST.msg),
		slog.String("path", e.Path),
		slog.String("reason", e.Reason),
	)
}

// MaxDepthError reports nesting deeper than the configured limit.
// Pos is set only when the error comes from parsing text.
type MaxDepthError struct {
	Depth int
	Max   int
	Pos   *Position
}

func (e *MaxDepthError) Error() string {
	s := ErrMaxDepthExceeded.msg + " (" +
		strconv.Itoa(e.Depth) + " > " + strconv.Itoa(e.Max) + ")"

	if e.Pos != nil {
		s += " at " + e.Pos.String()
	}

	return s
}

func (e *MaxDepthError) Unwrap() error { return ErrMaxDepthExceeded }

func (e *MaxDepthError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrMaxDepthExceeded.msg),
		slog.Int("depth", e.Depth),
		slog.Int("max_depth", e.Max),
	}

	if e.Pos != nil {
		attrs = append(attrs, e.Pos.attrs())
	}

	return slog.GroupValue(attrs...)
}

// FormulaError identifies the formula that aborted a [Compute] call.
// It unwraps to the parse or evaluation error of that formula.
type FormulaError struct {
	Index   int
	Name    string
	Formula string
	Err     error
}

func (e *FormulaError) Error() string {
	return "formula " + strconv.Itoa(e.Index) + " (" + e.Name + " = " +
		strconv.Quote(e.Formula) + "): " + e.Err.Error()
}

func (e *FormulaError) Unwrap() error { return e.Err }

func (e *FormulaError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("index", e.Index),
		slog.String("name", e.Name),
		slog.String("formula", e.Formula),
		slog.Any("cause", e.Err),
	)
}

// RowError identifies the row that aborted a [ComputeRows] call.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return "row " + strconv.Itoa(e.Row) + ": " + e.Err.Error()
}

func (e *RowError) Unwrap() error { return e.Err }

func (e *RowError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("row", e.Row),
		slog.Any("cause", e.Err),
	)
}
