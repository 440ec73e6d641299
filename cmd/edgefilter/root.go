// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/edgefilter/edgefilter/edge/bmpio"
	"github.com/edgefilter/edgefilter/edge/config"
	"github.com/edgefilter/edgefilter/edge/exec"
	"github.com/edgefilter/edgefilter/edge/metrics"
	"github.com/edgefilter/edgefilter/edge/pipeline"
	"github.com/edgefilter/edgefilter/edge/stencil"
	"github.com/edgefilter/edgefilter/internal/ctxlog"
)

const classicUsage = "edgefilter <input.bmp> <serialPrewitt.bmp> <parallelPrewitt.bmp> <serialEdge.bmp> <parallelEdge.bmp>"

// cliFlags holds the flags shared by every filtering command.
type cliFlags struct {
	configPath        string
	filterSize        int
	neighborhoodWidth int
	cutoff            int
	workers           int
	logLevel          string
	logFormat         string
	metrics           bool

	// run only
	input      string
	outDir     string
	prewitt    []string
	uniformity []string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &cliFlags{}
	defaults := config.Default()

	root := &cobra.Command{
		Use:   "edgefilter",
		Short: "Parallel Prewitt and neighborhood-uniformity edge detection",
		Long: `edgefilter applies two edge detectors to a bitmap with four scheduling
strategies (serial, forkjoin, chunked-auto, chunked-affinity) and checks
that every parallel output matches the serial one.

Run without a subcommand and five paths for the classic form:
  ` + classicUsage,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 5 {
				return &ExitError{Code: exitUsage, Message: "usage: " + classicUsage}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runClassic(cmd, f, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "HCL file with run options")
	pf.IntVar(&f.filterSize, "filter-size", defaults.FilterSize, "Prewitt kernel size: 3, 5 or 7")
	pf.IntVar(&f.neighborhoodWidth, "neighborhood-width", defaults.NeighborhoodWidth, "uniformity window width (odd, >= 3)")
	pf.IntVar(&f.cutoff, "cutoff", defaults.Cutoff, "fork-join leaf size in rows")
	pf.IntVar(&f.workers, "workers", defaults.Workers, "worker pool size (0 = GOMAXPROCS)")
	pf.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	pf.StringVar(&f.logFormat, "log-format", defaults.LogFormat, "log format: text or json")
	pf.BoolVar(&f.metrics, "metrics", false, "print run metrics in Prometheus text format")

	root.AddCommand(newRunCmd(f), newClassicCmd(f), newStrategiesCmd())
	return root
}

func newRunCmd(f *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured filters and strategies over a bitmap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.input == "" {
				return &ExitError{Code: exitUsage, Message: "--input is required"}
			}
			return execute(cmd, f, f.input, func(r config.Resolved) []pipeline.Job {
				return pipeline.Plan(r, f.outDir)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "input bitmap (required)")
	fl.StringVarP(&f.outDir, "out-dir", "o", "", "directory for output bitmaps (empty: do not save)")
	fl.StringSliceVar(&f.prewitt, "prewitt", nil, "strategies for the Prewitt filter, or 'all'")
	fl.StringSliceVar(&f.uniformity, "uniformity", nil, "strategies for the uniformity filter, or 'all'")
	return cmd
}

func newClassicCmd(f *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "classic <input.bmp> <serialPrewitt.bmp> <parallelPrewitt.bmp> <serialEdge.bmp> <parallelEdge.bmp>",
		Short: "Run each filter serially and with fork-join, writing four outputs",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 5 {
				return &ExitError{Code: exitUsage, Message: "usage: " + classicUsage}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassic(cmd, f, args)
		},
	}
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the scheduling strategies",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, s := range exec.Strategies() {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
		},
	}
}

func runClassic(cmd *cobra.Command, f *cliFlags, paths []string) error {
	return execute(cmd, f, paths[0], func(r config.Resolved) []pipeline.Job {
		prewitt := stencil.NewPrewitt(r.Kernel)
		uniformity := stencil.NewUniformity(r.NeighborhoodWidth)
		return []pipeline.Job{
			{Filter: prewitt, Strategy: exec.Serial, Output: paths[1]},
			{Filter: prewitt, Strategy: exec.ForkJoin, Output: paths[2]},
			{Filter: uniformity, Strategy: exec.Serial, Output: paths[3]},
			{Filter: uniformity, Strategy: exec.ForkJoin, Output: paths[4]},
		}
	})
}

// options layers defaults, the config file and explicitly set flags.
func (f *cliFlags) options(flags *pflag.FlagSet) (config.Options, error) {
	o := config.Default()
	if f.configPath != "" {
		var err error
		if o, err = config.LoadFile(f.configPath, o); err != nil {
			return o, err
		}
	}

	changed := flags.Changed
	if changed("filter-size") {
		o.FilterSize = f.filterSize
	}
	if changed("neighborhood-width") {
		o.NeighborhoodWidth = f.neighborhoodWidth
	}
	if changed("cutoff") {
		o.Cutoff = f.cutoff
	}
	if changed("workers") {
		o.Workers = f.workers
	}
	if changed("log-level") {
		o.LogLevel = f.logLevel
	}
	if changed("log-format") {
		o.LogFormat = f.logFormat
	}

	for name, values := range map[string][]string{
		config.FilterPrewitt:    f.prewitt,
		config.FilterUniformity: f.uniformity,
	} {
		if !changed(name) {
			continue
		}
		list, err := config.ParseStrategies(values)
		if err != nil {
			return o, fmt.Errorf("--%s: %w", name, err)
		}
		o.Strategies = lo.Assign(o.Strategies)
		o.Strategies[name] = list
	}
	return o, nil
}

// execute resolves the options, loads the input, runs the planned jobs and
// prints a summary.
func execute(cmd *cobra.Command, f *cliFlags, input string, plan func(config.Resolved) []pipeline.Job) error {
	o, err := f.options(cmd.Flags())
	if err != nil {
		return &ExitError{Code: exitUsage, Message: err.Error()}
	}

	logger := ctxlog.New(strings.ToLower(o.LogLevel), strings.ToLower(o.LogFormat), cmd.ErrOrStderr())
	r, err := config.Resolve(o, logger.Warn)
	if err != nil {
		return &ExitError{Code: exitUsage, Message: err.Error()}
	}
	logger.Debug("Configuration resolved.",
		"kernel", r.Kernel.String(), "neighborhood_width", r.NeighborhoodWidth,
		"cutoff", r.Cutoff, "workers", r.Workers)

	in, err := bmpio.Load(input)
	if err != nil {
		return &ExitError{Code: exitFailure, Message: err.Error()}
	}
	if f.outDir != "" {
		if err := os.MkdirAll(f.outDir, 0o755); err != nil {
			return &ExitError{Code: exitFailure, Message: err.Error()}
		}
	}

	ex := exec.New(exec.WithWorkers(r.Workers), exec.WithCutoff(r.Cutoff))
	defer ex.Close()

	var rec *metrics.Recorder
	if f.metrics {
		rec = metrics.New()
	}

	ctx := ctxlog.WithLogger(cmd.Context(), logger)
	report, err := pipeline.Run(ctx, ex, in, plan(r), rec)
	if err != nil {
		return &ExitError{Code: exitFailure, Message: err.Error()}
	}

	out := cmd.OutOrStdout()
	printReport(out, report)
	if rec != nil {
		if err := rec.WriteText(out); err != nil {
			logger.Error("Writing metrics failed.", "error", err)
		}
	}

	if err := report.Err(); err != nil {
		return &ExitError{Code: exitFailure, Message: "some runs failed:\n" + err.Error()}
	}
	if !report.Passed() {
		return &ExitError{Code: exitMismatch, Message: fmt.Sprintf("%d outputs differ from the serial output", len(report.Mismatches()))}
	}
	return nil
}

func printReport(w io.Writer, report pipeline.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILTER\tSTRATEGY\tLASTED\tLEAVES\tRESULT")
	for _, res := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\n",
			res.Job.Filter.Name(), res.Job.Strategy, res.Duration, res.Stats.Leaves, verdict(res))
	}
	tw.Flush()
}

func verdict(res pipeline.Result) string {
	switch {
	case res.Err != nil:
		return "ERROR"
	case res.Check == nil:
		return "reference"
	case res.Check.Equal():
		return "PASS"
	default:
		return "FAIL"
	}
}
