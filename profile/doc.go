// Package profile captures Go runtime pprof profiles around model runs.
//
// Layer timing reports where wall-clock time is spent per layer; a pprof
// profile of the same run shows where it is spent per function. The package
// supports CPU, heap, block, and mutex profiles through command-line flags.
//
// Typical usage creates a [Config], registers flags, then wraps the run with
// the profiler lifecycle:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	p := cfg.NewProfiler()
//	if err := p.Start(); err != nil {
//	    return err
//	}
//	defer p.Stop()
//
// Users enable profiling via flags like --cpu-profile=cpu.prof.
package profile
