// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

// Package config holds the run options consumed by the filter pipeline and
// loads them from HCL files.
//
// Options are layered: Default() first, then an optional HCL file, then
// whatever the command line overrides. Resolve turns the layered Options
// into ready-to-run values, substituting defaults (with a warning) for an
// unsupported filter size or neighborhood width and rejecting values that
// have no safe substitute.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/samber/lo"

	"github.com/edgefilter/edgefilter/edge/exec"
	"github.com/edgefilter/edgefilter/edge/kernel"
)

// Filter names.
const (
	FilterPrewitt    = "prewitt"
	FilterUniformity = "uniformity"
)

var (
	// ErrCutoff indicates a fork-join cutoff below 1.
	ErrCutoff = errors.New("config: cutoff must be >= 1")
	// ErrWorkers indicates a negative worker count.
	ErrWorkers = errors.New("config: workers must be >= 0")
	// ErrStrategy indicates a strategy list naming an unknown strategy.
	ErrStrategy = errors.New("config: invalid strategy")
	// ErrFilter indicates an unknown filter name.
	ErrFilter = errors.New("config: unknown filter")
	// ErrLog indicates an unknown log level or format.
	ErrLog = errors.New("config: invalid logging option")
)

// Options is the complete configuration of a run.
type Options struct {
	FilterSize        int
	NeighborhoodWidth int
	Cutoff            int
	// Workers is the pool size; 0 means runtime.GOMAXPROCS(0).
	Workers int
	// Strategies lists, per filter name, the strategies to run.
	Strategies map[string][]exec.Strategy
	LogLevel   string
	LogFormat  string
}

// Default returns the options used when nothing is configured: the 5x5
// Prewitt kernel, a 3-wide uniformity window, every strategy for both
// filters.
func Default() Options {
	return Options{
		FilterSize:        5,
		NeighborhoodWidth: kernel.DefaultSize,
		Cutoff:            exec.DefaultCutoff,
		Workers:           0,
		Strategies: map[string][]exec.Strategy{
			FilterPrewitt:    exec.Strategies(),
			FilterUniformity: exec.Strategies(),
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Filters returns the known filter names in run order.
func Filters() []string {
	return []string{FilterPrewitt, FilterUniformity}
}

// Resolved is a validated configuration.
type Resolved struct {
	Kernel            kernel.Kernel
	NeighborhoodWidth int
	Cutoff            int
	Workers           int
	Strategies        map[string][]exec.Strategy
	LogLevel          string
	LogFormat         string
}

// Resolve validates o. An unsupported filter size or neighborhood width is
// replaced by 3 and reported through warn (which may be nil); every other
// invalid value is an error.
func Resolve(o Options, warn kernel.WarnFunc) (Resolved, error) {
	if o.Cutoff < 1 {
		return Resolved{}, fmt.Errorf("%w: got %d", ErrCutoff, o.Cutoff)
	}
	if o.Workers < 0 {
		return Resolved{}, fmt.Errorf("%w: got %d", ErrWorkers, o.Workers)
	}

	level := strings.ToLower(o.LogLevel)
	if !lo.Contains([]string{"debug", "info", "warn", "error"}, level) {
		return Resolved{}, fmt.Errorf("%w: log level %q", ErrLog, o.LogLevel)
	}
	format := strings.ToLower(o.LogFormat)
	if !lo.Contains([]string{"text", "json"}, format) {
		return Resolved{}, fmt.Errorf("%w: log format %q", ErrLog, o.LogFormat)
	}

	strategies := make(map[string][]exec.Strategy, len(o.Strategies))
	for name, list := range o.Strategies {
		if !lo.Contains(Filters(), name) {
			return Resolved{}, fmt.Errorf("%w: %q", ErrFilter, name)
		}
		strategies[name] = lo.Uniq(list)
	}

	workers := o.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return Resolved{
		Kernel:            kernel.ForSize(o.FilterSize, warn),
		NeighborhoodWidth: kernel.NeighborhoodWidth(o.NeighborhoodWidth, warn),
		Cutoff:            o.Cutoff,
		Workers:           workers,
		Strategies:        strategies,
		LogLevel:          level,
		LogFormat:         format,
	}, nil
}

// ParseStrategies parses a list of strategy names. The single name "all"
// selects every strategy.
func ParseStrategies(names []string) ([]exec.Strategy, error) {
	names = lo.Compact(lo.Map(names, func(s string, _ int) string { return strings.TrimSpace(s) }))
	if len(names) == 1 && strings.EqualFold(names[0], "all") {
		return exec.Strategies(), nil
	}
	out := make([]exec.Strategy, 0, len(names))
	for _, name := range names {
		s, err := exec.ParseStrategy(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStrategy, err)
		}
		out = append(out, s)
	}
	return lo.Uniq(out), nil
}
