// Package profile wires [github.com/pkg/profile] into the formula command.
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	formula compute --pprof-mode cpu -c x=3 -F y='pow(x, 2)'
//
// Without the tag [Modes] is empty and [Config.Start] always returns a
// no-op [Stopper].
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread and trace. Output files are named after the mode (cpu.pprof,
// mem.pprof) and land in the configured directory, which defaults to the
// pprof subdirectory of the user cache directory:
//
//	go tool pprof -http=: ~/.cache/formula/pprof/cpu.pprof
//
// Building with the tag also registers the [net/http/pprof] handlers on
// [net/http.DefaultServeMux].
package profile
