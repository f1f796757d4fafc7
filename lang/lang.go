package lang

import (
	"log/slog"

	"github.com/ardnew/formula/log"
)

// DefaultMaxDepth is the default maximum nesting depth of parentheses and
// function calls accepted by [Parse], [Evaluate], and the AST decoders.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 100

// Option configures parsing, evaluation, and decoding.
type Option func(*config)

type config struct {
	maxDepth int
	logger   log.Logger
}

// WithMaxDepth sets the maximum nesting depth.
// Values less than 1 restore [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		c.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func makeConfig(opts ...Option) config {
	c := config{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// formulaValue defers printing a tree until a log record is actually handled.
type formulaValue struct{ e Expr }

func (f formulaValue) LogValue() slog.Value {
	if f.e == nil {
		return slog.StringValue("")
	}

	return slog.StringValue(String(f.e))
}

func formulaAttr(e Expr) slog.Attr {
	return slog.Any("formula", formulaValue{e})
}
