// Command layertime profiles per-layer latency of a model defined in a YAML
// spec.
//
// It builds the model, transparently wraps every layer with a timing proxy,
// runs a number of forward passes on random input, and prints the nested
// timing report.
//
// # Usage
//
//	layertime [flags]
//
// With no --model flag a built-in demo MLP is used. Per-layer timing lines
// go to the log destination (--log-file, default stderr); the final report
// goes to stdout as YAML or JSON. Go runtime profiles of the same run can be
// captured with the pprof flags (--cpu-profile and friends).
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/cezbloch/layertime/log"
	"github.com/cezbloch/layertime/modelspec"
	"github.com/cezbloch/layertime/profile"
	"github.com/cezbloch/layertime/timing"
	"github.com/cezbloch/layertime/version"
)

// demoSpec is the model used when no --model flag is given.
const demoSpec = `
name: demo_mlp
layers:
  - type: sequential
    name: encoder
    layers:
      - {type: linear, name: fc1, in: 64, out: 128}
      - {type: relu, name: act1}
      - {type: linear, name: fc2, in: 128, out: 64}
      - {type: relu, name: act2}
  - {type: linear, name: head, in: 64, out: 10}
  - {type: sigmoid, name: out}
`

type options struct {
	log     *log.Config
	profile *profile.Config

	model    string
	output   string
	runs     int
	batch    int
	features int
	seed     uint64
}

func main() {
	opts := &options{
		log:     log.NewConfig(),
		profile: profile.NewConfig(),
	}

	rootCmd := &cobra.Command{
		Use:   "layertime [flags]",
		Short: "Measure per-layer execution time of a model",
		Long: `layertime wraps every layer of a model with a transparent timing proxy, runs
forward passes on random input, and prints a nested per-layer timing report.`,
		Version:       version.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.model, "model", "m", "", "model spec YAML path (empty = built-in demo MLP)")
	flags.StringVarP(&opts.output, "output", "o", "yaml", "report format, one of: yaml, json")
	flags.IntVar(&opts.runs, "runs", 1, "number of forward passes")
	flags.IntVar(&opts.batch, "batch", 1, "input batch size")
	flags.IntVar(&opts.features, "features", 64, "input feature count")
	flags.Uint64Var(&opts.seed, "seed", 42, "seed for weights and input")

	opts.log.RegisterFlags(flags)
	opts.profile.RegisterFlags(flags)

	completionErr := opts.log.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	logger, closeLog, err := opts.log.NewLogger()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeLog(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "closing log: %v\n", closeErr)
		}
	}()

	spec, err := loadSpec(opts.model)
	if err != nil {
		return err
	}

	model, err := spec.Build(rand.New(rand.NewPCG(opts.seed, opts.seed)))
	if err != nil {
		return err
	}

	wrapped, err := timing.WrapModel(model, timing.WithLogger(logger))
	if err != nil {
		return err
	}

	profiler := opts.profile.NewProfiler()

	err = profiler.Start()
	if err != nil {
		return err
	}

	err = forwardPasses(wrapped, logger, opts)

	stopErr := profiler.Stop()

	if err != nil {
		return err
	}

	if stopErr != nil {
		return stopErr
	}

	return writeReport(os.Stdout, wrapped.Report(), opts.output)
}

// loadSpec reads and validates the model spec from path, falling back to the
// built-in demo model when path is empty.
func loadSpec(path string) (*modelspec.Spec, error) {
	data := []byte(demoSpec)

	if path != "" {
		var err error

		data, err = os.ReadFile(path) //nolint:gosec // Spec path from CLI flag is expected.
		if err != nil {
			return nil, fmt.Errorf("reading model spec: %w", err)
		}
	}

	err := modelspec.Validate(data)
	if err != nil {
		return nil, err
	}

	return modelspec.Load(data)
}

// forwardPasses runs the configured number of forward passes on seeded
// random input. Each pass is additionally profiled as a whole.
func forwardPasses(wrapped *timing.TimedLayer, logger *slog.Logger, opts *options) error {
	rnd := rand.New(rand.NewPCG(opts.seed+1, opts.seed+1))

	input := mat.NewDense(opts.batch, opts.features, nil)
	for i := range opts.batch {
		for j := range opts.features {
			input.Set(i, j, rnd.Float64()*2-1)
		}
	}

	for i := range opts.runs {
		err := timing.ProfileCall(logger, "forward_pass", func() error {
			_, fwdErr := wrapped.Forward(input)
			return fwdErr
		})
		if err != nil {
			return fmt.Errorf("forward pass %d: %w", i, err)
		}
	}

	return nil
}

func writeReport(w io.Writer, report timing.Report, format string) error {
	var (
		out []byte
		err error
	)

	switch format {
	case "yaml":
		out, err = yaml.Marshal(report)
	case "json":
		out, err = json.MarshalIndent(report, "", "  ")
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}

	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if format == "json" {
		out = append(out, '\n')
	}

	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}
