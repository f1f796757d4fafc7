package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/formula/lang"
)

// Fmt parses a formula and writes it back in the chosen form.
type Fmt struct {
	Text        Text        `cmd:"" default:"withargs" help:"Format as canonical formula text (default)."`
	JSON        JSON        `cmd:""                    help:"Format as a JSON syntax tree."`
	YAML        YAML        `cmd:""                    help:"Format as a YAML syntax tree."`
	Tree        Tree        `cmd:""                    help:"Format as an indented outline."`
	Fingerprint Fingerprint `cmd:""                    help:"Print the structural hash of the formula."`
}

// Input selects the formula read by a fmt subcommand.
type Input struct {
	Source   string `arg:""                default:"-" help:"Source input file or '-' for default stdin." name:"source" optional:""`
	AST      bool   `help:"Read the input as a JSON or YAML syntax tree"                       name:"ast"`
	MaxDepth int    `default:"${maxDepth}" help:"Maximum nesting depth"`
}

func (in Input) parse(ctx context.Context, format string) (lang.Expr, error) {
	e, err := readFormula(ctx, "", in.Source, in.AST, langOptions(in.MaxDepth)...)
	if err != nil {
		return nil, ErrParse.With(
			slog.String("format", format),
			slog.String("source", in.Source),
		).Wrap(err)
	}

	return e, nil
}

func written(err error) error {
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// Text formats input as canonical formula text.
type Text struct {
	Input `embed:""`
}

// Run executes the text command.
func (t *Text) Run(ctx context.Context) error {
	e, err := t.parse(ctx, "text")
	if err != nil {
		return err
	}

	return written(lang.Format(outputFrom(ctx), e))
}

// JSON formats input as a JSON syntax tree.
type JSON struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width; 0 for compact output" short:"i"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	e, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	return written(lang.FormatJSON(ctx, outputFrom(ctx), e, j.Indent))
}

// YAML formats input as a YAML syntax tree.
type YAML struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width; 0 for flow style" short:"i"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	e, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	return written(lang.FormatYAML(ctx, outputFrom(ctx), e, y.Indent))
}

// Tree formats input as an indented outline of nodes.
type Tree struct {
	Input `embed:""`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) error {
	e, err := t.parse(ctx, "tree")
	if err != nil {
		return err
	}

	return written(lang.FormatTree(outputFrom(ctx), e))
}

// Fingerprint prints the hash shared by all formulas with the same tree.
type Fingerprint struct {
	Input `embed:""`
}

// Run executes the fingerprint command.
func (f *Fingerprint) Run(ctx context.Context) error {
	e, err := f.parse(ctx, "fingerprint")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(outputFrom(ctx), "%016x\n", lang.Fingerprint(e))

	return written(err)
}
