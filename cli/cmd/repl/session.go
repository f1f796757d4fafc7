package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// ctrlCommands are the control-mode command names, in help order.
var ctrlCommands = []string{"help", "set", "unset", "vars", "funcs", "clear", "quit"}

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help                Print this message
  set NAME FORMULA    Evaluate FORMULA and bind the result to NAME
  unset NAME...       Remove variables
  vars                List variables
  funcs               List built-in functions
  clear               Clear screen
  quit                Exit REPL

Usage:
  Type a formula to evaluate it against the current variables
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// session holds the state shared by every line of a REPL run.
type session struct {
	env    *lang.Env
	logger log.Logger
	opts   []lang.Option
}

func newSession(env *lang.Env, logger log.Logger, opts ...lang.Option) *session {
	if env == nil {
		env = new(lang.Env)
	}

	return &session{
		env:    env,
		logger: logger,
		opts:   append([]lang.Option{lang.WithLogger(logger)}, opts...),
	}
}

// reply is the outcome of one submitted line.
type reply struct {
	text  string
	err   error
	quit  bool
	clear bool
}

func (s *session) eval(ctx context.Context, line string) reply {
	v, err := lang.EvaluateString(ctx, line, s.env, s.opts...)
	if err != nil {
		return reply{err: err}
	}

	return reply{text: lang.FormatResult(v)}
}

func (s *session) command(ctx context.Context, line string) reply {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	s.logger.TraceContext(ctx, "repl command",
		slog.String("command", name),
		slog.String("args", rest),
	)

	switch name {
	case "q", "quit", "exit":
		return reply{quit: true}

	case "h", "help":
		return reply{text: helpMessage()}

	case "c", "clear":
		return reply{clear: true}

	case "v", "vars":
		return reply{text: s.vars()}

	case "f", "funcs":
		return reply{text: funcsList()}

	case "set":
		return s.set(ctx, rest)

	case "unset":
		return s.unset(rest)

	default:
		return reply{err: fmt.Errorf("%w: %s (try 'help')", ErrUnknownCommand, name)}
	}
}

func (s *session) set(ctx context.Context, args string) reply {
	name, formula, _ := strings.Cut(args, " ")
	formula = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(formula), "="))

	if !lang.IsIdentifier(name) || formula == "" {
		return reply{err: fmt.Errorf("%w: set NAME FORMULA", ErrUsage)}
	}

	v, err := lang.EvaluateString(ctx, formula, s.env, s.opts...)
	if err != nil {
		return reply{err: err}
	}

	s.env.Set(name, v)

	return reply{text: name + " = " + lang.FormatResult(v)}
}

func (s *session) unset(args string) reply {
	names := strings.Fields(args)
	if len(names) == 0 {
		return reply{err: fmt.Errorf("%w: unset NAME...", ErrUsage)}
	}

	var errs []error

	for _, name := range names {
		if !s.env.Delete(name) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUndefined, name))
		}
	}

	return reply{err: errors.Join(errs...)}
}

func (s *session) vars() string {
	if s.env.Len() == 0 {
		return "  (no variables)"
	}

	var b strings.Builder

	for name, v := range s.env.All() {
		fmt.Fprintf(&b, "  %s = %s\n", name, lang.FormatResult(v))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func funcsList() string {
	var b strings.Builder

	for fn := range lang.Builtins() {
		fmt.Fprintf(&b, "  %-22s %s\n", fn.Signature(), hintStyle.Render(fn.Doc))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// describe formats an error for display, adding the source snippet for
// syntax errors.
func describe(err error) string {
	var se *lang.SyntaxError
	if errors.As(err, &se) && se.Source != "" {
		return err.Error() + "\n" + strings.TrimSuffix(se.Snippet(), "\n")
	}

	return err.Error()
}
