package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ardnew/formula/lang"
)

// Funcs lists the built-in functions.
type Funcs struct {
	Plain bool `help:"Print tab-separated lines instead of a table"`
}

// arity formats the accepted argument count, e.g. "1", "2", or "1+".
func arity(fn lang.Builtin) string {
	switch {
	case fn.MaxArgs == lang.Variadic:
		return strconv.Itoa(fn.MinArgs) + "+"
	case fn.MinArgs == fn.MaxArgs:
		return strconv.Itoa(fn.MinArgs)
	default:
		return strconv.Itoa(fn.MinArgs) + "-" + strconv.Itoa(fn.MaxArgs)
	}
}

// Run executes the funcs command.
func (f *Funcs) Run(ctx context.Context) error {
	w := outputFrom(ctx)

	if f.Plain {
		for fn := range lang.Builtins() {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", fn.Signature(), arity(fn), fn.Doc); err != nil {
				return ErrWriteOutput.Wrap(err)
			}
		}

		return nil
	}

	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	name := cell.Foreground(lipgloss.Color("6"))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("FUNCTION", "ARGS", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return name
			default:
				return cell
			}
		})

	for fn := range lang.Builtins() {
		t.Row(fn.Signature(), arity(fn), fn.Doc)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
