package repl

import "errors"

var (
	// ErrOutOfBounds is returned for a history index outside the loaded
	// entries.
	ErrOutOfBounds = errors.New("history index out of range")

	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrUndefined      = errors.New("variable not defined")
)
