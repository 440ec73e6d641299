// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

// Package partition decides how a row range is cut into chunks and which
// pool worker runs each chunk.
//
// Two strategies are provided:
//
//   - Auto splits the range into batches that idle workers grab on demand,
//     so uneven chunks even out across workers.
//   - Affinity assigns every chunk to a fixed worker and remembers that
//     assignment, so repeated runs over the same range send the same rows to
//     the same worker (and the same CPU caches). It gives up rebalancing in
//     exchange.
//
// Chunks never overlap, so bodies writing only their own rows of a shared
// output need no locking.
package partition

import (
	"github.com/edgefilter/edgefilter/edge/grid"
	"github.com/edgefilter/edgefilter/edge/workerpool"
)

// Body processes one chunk. worker is the pool worker running it, or -1 when
// the chunk runs outside the pool.
type Body func(worker int, r grid.RowRange)

// Partitioner runs body over disjoint chunks covering r on pool and returns
// once every chunk has completed.
type Partitioner interface {
	Run(pool *workerpool.Pool, r grid.RowRange, body Body)
	Name() string
}

// ChunksPerWorker is how many chunks each worker gets on average. More than
// one chunk per worker lets fast workers pick up slack.
const ChunksPerWorker = 4

// Auto is the load-balancing partitioner. The zero value is ready to use.
type Auto struct {
	// Grain is the smallest chunk in rows. Zero means 1.
	Grain int
}

// Run implements Partitioner.
func (a Auto) Run(pool *workerpool.Pool, r grid.RowRange, body Body) {
	n := r.Len()
	if n == 0 {
		return
	}
	batch := max(BatchSize(n, pool.NumWorkers()), a.Grain, 1)
	pool.ParallelForAtomicBatched(n, batch, func(worker, start, end int) {
		body(worker, grid.RowRange{Start: r.Start + start, End: r.Start + end})
	})
}

// Name implements Partitioner.
func (Auto) Name() string { return "auto" }

// BatchSize returns the rows per batch Auto uses for n rows over the given
// number of workers: about ChunksPerWorker batches per worker.
func BatchSize(n, workers int) int {
	chunks := max(workers, 1) * ChunksPerWorker
	return max((n+chunks-1)/chunks, 1)
}
