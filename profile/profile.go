package profile

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/pflag"
)

// Config holds profiling configuration: output paths and sampling rates.
// A zero-value Config has all profiles disabled.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewProfiler] to create the [Profiler]
// that executes the capture.
type Config struct {
	// Output paths (empty = disabled).
	CPUProfile   string
	HeapProfile  string
	BlockProfile string
	MutexProfile string

	// Rate configuration.
	BlockProfileRate     int
	MutexProfileFraction int
}

// NewConfig creates a new [Config] with all profiles disabled.
func NewConfig() *Config {
	return &Config{}
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPUProfile, "cpu-profile", "", "write CPU profile to file")
	flags.StringVar(&c.HeapProfile, "heap-profile", "", "write heap profile to file")
	flags.StringVar(&c.BlockProfile, "block-profile", "", "write block profile to file")
	flags.StringVar(&c.MutexProfile, "mutex-profile", "", "write mutex profile to file")

	flags.IntVar(&c.BlockProfileRate, "block-profile-rate", 1, "block profile rate (nanoseconds)")
	flags.IntVar(&c.MutexProfileFraction, "mutex-profile-fraction", 1, "mutex profile fraction (1/N sampling)")
}

// NewProfiler creates a [Profiler] using this [Config].
func (c *Config) NewProfiler() *Profiler {
	return &Profiler{cfg: *c}
}

// Profiler controls the lifecycle of one profiling session.
//
// Call [Profiler.Start] before the measured run and [Profiler.Stop] after it
// to write all enabled profiles.
//
// Create instances with [Config.NewProfiler].
type Profiler struct {
	cfg     Config
	cpuFile *os.File
}

// Start configures runtime sampling rates and begins CPU profiling if
// enabled.
func (p *Profiler) Start() error {
	runtime.SetBlockProfileRate(p.cfg.BlockProfileRate)
	runtime.SetMutexProfileFraction(p.cfg.MutexProfileFraction)

	if p.cfg.CPUProfile == "" {
		return nil
	}

	f, err := os.Create(p.cfg.CPUProfile) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("creating CPU profile: %w", err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		must(f.Close())

		return fmt.Errorf("starting CPU profile: %w", err)
	}

	p.cpuFile = f

	return nil
}

// Stop ends CPU profiling and writes all enabled snapshot profiles.
func (p *Profiler) Stop() error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		if err != nil {
			return fmt.Errorf("closing CPU profile: %w", err)
		}

		p.cpuFile = nil
	}

	snapshots := []struct {
		name string
		path string
	}{
		{"heap", p.cfg.HeapProfile},
		{"block", p.cfg.BlockProfile},
		{"mutex", p.cfg.MutexProfile},
	}

	for _, s := range snapshots {
		if s.path == "" {
			continue
		}

		err := writeSnapshot(s.name, s.path)
		if err != nil {
			return err
		}
	}

	return nil
}

// writeSnapshot writes the named pprof profile to path.
func writeSnapshot(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("unknown profile: %s", name)
	}

	f, err := os.Create(path) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("create %s profile: %w", name, err)
	}

	err = prof.WriteTo(f, 0)
	if err != nil {
		must(f.Close())

		return fmt.Errorf("write %s profile: %w", name, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("write %s profile: %w", name, err)
	}

	return nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
