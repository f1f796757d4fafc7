// Package cmd implements the formula subcommands: eval, compute, fmt,
// funcs, init and repl.
//
// Commands read "-" sources from the reader installed with [WithInput] and
// write results to the writer installed with [WithOutput], defaulting to
// the process's standard streams.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the configuration file. It also names the mapping in that file that
	// holds flag values.
	ConfigIdentifier = "config"
)
