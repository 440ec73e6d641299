// Copyright 2025 The edgefilter Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package exec runs a stencil filter over a grid with one of four
// scheduling strategies. All four produce identical output.
//
// An Executor owns the worker pool shared by the parallel strategies and the
// affinity partitioner whose chunk assignment persists across runs. Create
// one per process (or per pipeline) and reuse it:
//
//	ex := exec.New(exec.WithCutoff(500))
//	defer ex.Close()
//
//	out := grid.New(in.Width(), in.Height())
//	stats, err := ex.Run(exec.ForkJoin, stencil.NewUniformity(3), in, out)
//
// Every strategy writes each output row of [0, height-half) at most once
// from exactly one leaf, and leaves over different rows run concurrently.
// The output must be zero-filled (or otherwise pre-filled) by the caller:
// border rows and columns are never written.
package exec

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/edgefilter/edgefilter/edge/grid"
	"github.com/edgefilter/edgefilter/edge/partition"
	"github.com/edgefilter/edgefilter/edge/stencil"
	"github.com/edgefilter/edgefilter/edge/workerpool"
)

// DefaultCutoff is the fork-join leaf size in rows.
const DefaultCutoff = 1000

// Executor schedules filter runs. It is safe for concurrent use; runs using
// ChunkedAffinity are serialized on the shared affinity partitioner.
type Executor struct {
	pool     *workerpool.Pool
	ownsPool bool
	cutoff   int
	auto     partition.Auto
	affinity *partition.Affinity
}

// Option configures an Executor.
type Option func(*Executor)

// WithCutoff sets the fork-join cutoff. Values below 1 are treated as 1.
func WithCutoff(rows int) Option {
	return func(e *Executor) {
		e.cutoff = max(rows, 1)
	}
}

// WithWorkers sets the size of the executor's own pool. Zero or less means
// runtime.GOMAXPROCS(0). Ignored when WithPool is given.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if e.pool == nil || e.ownsPool {
			if e.pool != nil {
				e.pool.Close()
			}
			e.pool = workerpool.New(n)
			e.ownsPool = true
		}
	}
}

// WithPool makes the executor use an existing pool. The executor does not
// close it.
func WithPool(p *workerpool.Pool) Option {
	return func(e *Executor) {
		if e.ownsPool && e.pool != nil {
			e.pool.Close()
		}
		e.pool = p
		e.ownsPool = false
	}
}

// WithGrain sets the smallest chunk, in rows, ChunkedAuto hands out.
func WithGrain(rows int) Option {
	return func(e *Executor) {
		e.auto.Grain = rows
	}
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		cutoff:   DefaultCutoff,
		affinity: partition.NewAffinity(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pool == nil {
		e.pool = workerpool.New(runtime.GOMAXPROCS(0))
		e.ownsPool = true
	}
	return e
}

// Close releases the pool if the executor created it. The remembered
// affinity assignment is dropped with the executor.
func (e *Executor) Close() {
	if e.ownsPool {
		e.pool.Close()
	}
	e.affinity.Reset()
}

// Cutoff returns the fork-join cutoff in rows.
func (e *Executor) Cutoff() int {
	return e.cutoff
}

// Workers returns the number of pool workers.
func (e *Executor) Workers() int {
	return e.pool.NumWorkers()
}

// Pool returns the executor's worker pool.
func (e *Executor) Pool() *workerpool.Pool {
	return e.pool
}

// Affinity returns the partitioner used by ChunkedAffinity.
func (e *Executor) Affinity() *partition.Affinity {
	return e.affinity
}

// Stats describes one run.
type Stats struct {
	Strategy Strategy
	Rows     grid.RowRange
	// Leaves counts row-range applier invocations.
	Leaves int64
}

// Run applies f to the full row range of in with strategy s, writing into
// out. in and out must be the same size and f must have a valid window;
// either failure is reported before any work starts.
func (e *Executor) Run(s Strategy, f stencil.Filter, in, out *grid.Grid) (Stats, error) {
	if err := check(f, in, out); err != nil {
		return Stats{}, err
	}
	return e.RunRange(s, f, in, out, stencil.FullRange(f, in))
}

// RunRange is Run restricted to rows r.
func (e *Executor) RunRange(s Strategy, f stencil.Filter, in, out *grid.Grid, r grid.RowRange) (Stats, error) {
	if err := check(f, in, out); err != nil {
		return Stats{}, err
	}

	var leaves atomic.Int64
	apply := func(rows grid.RowRange) {
		leaves.Add(1)
		stencil.ApplyRows(f, in, out, rows)
	}

	switch s {
	case Serial:
		apply(r)
	case ForkJoin:
		e.forkJoin(r, apply)
	case ChunkedAuto:
		chunked(e.pool, e.auto, r, apply)
	case ChunkedAffinity:
		chunked(e.pool, e.affinity, r, apply)
	default:
		return Stats{}, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(s))
	}

	return Stats{Strategy: s, Rows: r, Leaves: leaves.Load()}, nil
}

func check(f stencil.Filter, in, out *grid.Grid) error {
	if err := grid.CheckPair(in, out); err != nil {
		return err
	}
	return stencil.Validate(f)
}
