// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package exec

import (
	"github.com/edgefilter/edgefilter/edge/grid"
	"github.com/edgefilter/edgefilter/edge/partition"
	"github.com/edgefilter/edgefilter/edge/workerpool"
)

// forkJoin applies leaf to r by recursive halving. A range of at most
// cutoff rows is a leaf; larger ranges split at the midpoint and run both
// halves as a Join, so the call returns only after every leaf below it has.
func (e *Executor) forkJoin(r grid.RowRange, leaf func(grid.RowRange)) {
	if r.Len() <= e.cutoff {
		leaf(r)
		return
	}
	lo, hi := r.Split()
	e.pool.Join(
		func() { e.forkJoin(lo, leaf) },
		func() { e.forkJoin(hi, leaf) },
	)
}

// LeafCount returns how many leaves forkJoin produces for n rows with the
// given cutoff.
func LeafCount(n, cutoff int) int {
	cutoff = max(cutoff, 1)
	if n <= cutoff {
		return 1
	}
	lo := n / 2
	return LeafCount(lo, cutoff) + LeafCount(n-lo, cutoff)
}

// chunked runs leaf over the chunks p cuts r into.
func chunked(pool *workerpool.Pool, p partition.Partitioner, r grid.RowRange, leaf func(grid.RowRange)) {
	p.Run(pool, r, func(_ int, rows grid.RowRange) {
		leaf(rows)
	})
}
