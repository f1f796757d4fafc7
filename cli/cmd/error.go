package cmd

import (
	"log/slog"
	"slices"
	"strings"
)

// Error is a command failure with attributes for structured logging.
// Sentinels are created with [NewError] and specialized with [Error.With]
// and [Error.Wrap]; the results still match the sentinel with [errors.Is].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns an Error with the given message and no cause.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error joins the message and the cause with ": ", omitting whichever is
// empty.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With returns a copy of e carrying attrs in its log value.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: slices.Concat(e.attrs, attrs),
	}
}

// Is reports whether target is the sentinel e was derived from, so that
// errors.Is(ErrBadContext.With(...), ErrBadContext) holds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg && t.err == nil && len(t.attrs) == 0
}

var (
	ErrOpenSource  = NewError("open source file")
	ErrBadContext  = NewError("invalid context value (want NAME=VALUE)")
	ErrBadField    = NewError("invalid field (want NAME=FORMULA)")
	ErrParse       = NewError("parse formula")
	ErrEvaluate    = NewError("evaluate formula")
	ErrCompute     = NewError("compute")
	ErrJSONMarshal = NewError("marshal JSON")
	ErrYAMLMarshal = NewError("marshal YAML")
	ErrWriteOutput = NewError("write output")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
)
