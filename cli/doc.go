// Package cli contains the command line interface for formula.
//
// # Commands
//
//	formula eval [-c NAME=VALUE]... [--vars FILE] [FORMULA]
//	formula compute [-c NAME=VALUE]... [--rows FILE] NAME=FORMULA...
//	formula fmt [text|json|yaml|tree|fingerprint] [SOURCE]
//	formula funcs
//	formula init [--force]
//	formula [repl]
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory, under the "config" key. "formula init" writes the current
// values there.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o formula .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
//
// # Examples
//
//	# Evaluate with context values
//	formula eval -c x=3 -c y=4 'sqrt(pow(x, 2) + pow(y, 2))'
//
//	# Add a computed column to every record
//	formula compute --rows points.yaml -o yaml 'r=sqrt(x*x + y*y)'
package cli
