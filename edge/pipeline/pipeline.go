// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

// Package pipeline drives complete filter runs: it executes each requested
// (filter, strategy) job into its own zero-filled output, times it, checks
// every parallel output against the serial output of the same filter and
// writes the outputs to disk.
//
// Jobs run one after another so each parallel strategy has the whole pool
// to itself and timings stay comparable. Saving happens afterwards,
// concurrently, and a failed save only affects its own job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/edgefilter/edgefilter/edge/bmpio"
	"github.com/edgefilter/edgefilter/edge/config"
	"github.com/edgefilter/edgefilter/edge/exec"
	"github.com/edgefilter/edgefilter/edge/grid"
	"github.com/edgefilter/edgefilter/edge/metrics"
	"github.com/edgefilter/edgefilter/edge/stencil"
	"github.com/edgefilter/edgefilter/edge/verify"
	"github.com/edgefilter/edgefilter/internal/ctxlog"
)

// saveConcurrency bounds the number of outputs written at once.
const saveConcurrency = 4

// Job is one filter run.
type Job struct {
	Filter   stencil.Filter
	Strategy exec.Strategy
	// Output is the bitmap path the result is saved to. Empty means the
	// result is kept in memory only.
	Output string
}

func (j Job) String() string {
	return j.Filter.Name() + "/" + j.Strategy.String()
}

// Result is the outcome of one Job.
type Result struct {
	Job      Job
	Output   *grid.Grid
	Stats    exec.Stats
	Duration time.Duration
	// Check compares Output with the serial output of the same filter. It
	// is nil for serial jobs.
	Check *verify.Mismatch
	// Err is set when the job could not run; SaveErr when its output could
	// not be written.
	Err     error
	SaveErr error
}

// Passed reports whether the job ran, was saved and matched the serial
// output.
func (r Result) Passed() bool {
	return r.Err == nil && r.SaveErr == nil && (r.Check == nil || r.Check.Equal())
}

// Report collects the results of a Run in job order.
type Report struct {
	Results []Result
}

// Passed reports whether every result passed.
func (r Report) Passed() bool {
	return lo.EveryBy(r.Results, Result.Passed)
}

// Mismatches returns the results whose output differed from the serial
// output.
func (r Report) Mismatches() []Result {
	return lo.Filter(r.Results, func(res Result, _ int) bool {
		return res.Check != nil && !res.Check.Equal()
	})
}

// Err joins every run and save error in the report.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Job, res.Err))
		}
		if res.SaveErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Job, res.SaveErr))
		}
	}
	return errors.Join(errs...)
}

// Plan expands a resolved configuration into jobs, filters in
// config.Filters order and strategies in configured order. Outputs are
// named "<filter>-<strategy>.bmp" under outDir; an empty outDir leaves
// them unsaved.
func Plan(r config.Resolved, outDir string) []Job {
	filters := map[string]stencil.Filter{
		config.FilterPrewitt:    stencil.NewPrewitt(r.Kernel),
		config.FilterUniformity: stencil.NewUniformity(r.NeighborhoodWidth),
	}
	return lo.FlatMap(config.Filters(), func(name string, _ int) []Job {
		return lo.Map(r.Strategies[name], func(s exec.Strategy, _ int) Job {
			job := Job{Filter: filters[name], Strategy: s}
			if outDir != "" {
				job.Output = filepath.Join(outDir, fmt.Sprintf("%s-%s.bmp", name, s))
			}
			return job
		})
	})
}

// Run executes jobs against in. Every filter that has at least one job is
// also run serially once, if no serial job for it is listed, to provide the
// reference output. rec may be nil.
//
// The returned error is non-nil only when ctx is cancelled; job failures are
// reported per result.
func Run(ctx context.Context, ex *exec.Executor, in *grid.Grid, jobs []Job, rec *metrics.Recorder) (Report, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Pipeline starting.", "jobs", len(jobs), "grid", in.String(), "executor", ex.Info().String())

	report := Report{Results: make([]Result, len(jobs))}
	baselines := make(map[string]*grid.Grid)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := runJob(ex, in, job, rec)
		report.Results[i] = res

		log := logger.With("filter", job.Filter.Name(), "strategy", job.Strategy.String())
		if res.Err != nil {
			log.Error("Run failed.", "error", res.Err)
			continue
		}
		log.Info("Run finished.", "lasted", res.Duration, "leaves", res.Stats.Leaves)
		if job.Strategy == exec.Serial {
			key := filterKey(job.Filter)
			if _, ok := baselines[key]; !ok {
				baselines[key] = res.Output
			}
		}
	}

	for i := range report.Results {
		res := &report.Results[i]
		if res.Err != nil || res.Job.Strategy == exec.Serial {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		key := filterKey(res.Job.Filter)
		base, ok := baselines[key]
		if !ok {
			ref := runJob(ex, in, Job{Filter: res.Job.Filter, Strategy: exec.Serial}, nil)
			if ref.Err != nil {
				res.Err = fmt.Errorf("serial reference: %w", ref.Err)
				continue
			}
			base = ref.Output
			baselines[key] = base
		}
		check(ctx, res, base, rec)
	}

	saveAll(ctx, report.Results)
	return report, nil
}

// filterKey tells filters apart by name and window size.
func filterKey(f stencil.Filter) string {
	return fmt.Sprintf("%s:%d", f.Name(), 2*f.Half()+1)
}

func runJob(ex *exec.Executor, in *grid.Grid, job Job, rec *metrics.Recorder) Result {
	res := Result{Job: job, Output: grid.New(in.Width(), in.Height())}
	start := time.Now()
	res.Stats, res.Err = ex.Run(job.Strategy, job.Filter, in, res.Output)
	res.Duration = time.Since(start)
	if res.Err == nil {
		rec.Observe(job.Filter.Name(), job.Strategy.String(), res.Duration, res.Stats.Rows.Len(), res.Stats.Leaves)
	}
	return res
}

func check(ctx context.Context, res *Result, base *grid.Grid, rec *metrics.Recorder) {
	m := verify.Diff(base, res.Output)
	res.Check = &m
	rec.Verified(res.Job.Filter.Name(), res.Job.Strategy.String(), m.Equal())

	log := ctxlog.FromContext(ctx).With("filter", res.Job.Filter.Name(), "strategy", res.Job.Strategy.String())
	if m.Equal() {
		log.Info("PASS")
		return
	}
	log.Error("FAIL", "mismatch", m.String())
}

func saveAll(ctx context.Context, results []Result) {
	logger := ctxlog.FromContext(ctx)
	var g errgroup.Group
	g.SetLimit(saveConcurrency)
	for i := range results {
		res := &results[i]
		if res.Err != nil || res.Job.Output == "" {
			continue
		}
		g.Go(func() error {
			if err := bmpio.Save(res.Output, res.Job.Output); err != nil {
				res.SaveErr = err
				logger.Error("Save failed.", "job", res.Job.String(), "path", res.Job.Output, "error", err)
				return nil
			}
			logger.Debug("Saved.", "job", res.Job.String(), "path", res.Job.Output)
			return nil
		})
	}
	_ = g.Wait()
}
