package cmd

import (
	"context"

	"github.com/ardnew/formula/cli/cmd/repl"
	"github.com/ardnew/formula/log"
)

// Repl starts an interactive session.
type Repl struct {
	Bindings `embed:""`

	NoHistory bool `help:"Do not read or write the history file"`
	MaxDepth  int  `default:"${maxDepth}" help:"Maximum nesting depth"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	env, err := r.env(ctx)
	if err != nil {
		return err
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil && !r.NoHistory {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, env, cacheDir, log.Default(), langOptions(r.MaxDepth)...)
}
