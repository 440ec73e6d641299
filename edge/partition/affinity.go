// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/edgefilter/edgefilter/edge/grid"
	"github.com/edgefilter/edgefilter/edge/workerpool"
)

// layoutKey identifies a chunk layout: the same range on the same number of
// workers always gets the same chunks.
type layoutKey struct {
	rows    grid.RowRange
	workers int
}

// slot is one chunk of a layout. Workers write their own slot's counter
// concurrently, hence the padding.
type slot struct {
	rows   grid.RowRange
	owner  int
	visits atomic.Int64
	_      cpu.CacheLinePad
}

type layout struct {
	slots []slot
	runs  int
}

// Affinity is the cache-affinity partitioner. It must be shared by pointer:
// its value is the remembered chunk-to-worker assignment, which lives until
// the Affinity is discarded or Reset.
type Affinity struct {
	mu      sync.Mutex
	layouts map[layoutKey]*layout
}

// NewAffinity returns an Affinity with no remembered assignments.
func NewAffinity() *Affinity {
	return &Affinity{layouts: make(map[layoutKey]*layout)}
}

// Run implements Partitioner. The first run over a given range and worker
// count fixes the layout: ChunksPerWorker contiguous chunks per worker,
// consecutive chunks owned by the same worker. Later runs replay it.
//
// Runs on the same Affinity are serialized.
func (a *Affinity) Run(pool *workerpool.Pool, r grid.RowRange, body Body) {
	if r.Empty() {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	l := a.lookup(r, pool.NumWorkers())
	l.runs++
	pool.ParallelForPinned(len(l.slots),
		func(i int) int { return l.slots[i].owner },
		func(worker, i int) {
			s := &l.slots[i]
			s.visits.Add(1)
			body(worker, s.rows)
		})
}

// Name implements Partitioner.
func (*Affinity) Name() string { return "affinity" }

func (a *Affinity) lookup(r grid.RowRange, workers int) *layout {
	if a.layouts == nil {
		a.layouts = make(map[layoutKey]*layout)
	}
	key := layoutKey{rows: r, workers: workers}
	if l, ok := a.layouts[key]; ok {
		return l
	}
	l := newLayout(r, workers)
	a.layouts[key] = l
	return l
}

func newLayout(r grid.RowRange, workers int) *layout {
	workers = max(workers, 1)
	n := r.Len()
	size := BatchSize(n, workers)
	chunks := (n + size - 1) / size

	l := &layout{slots: make([]slot, chunks)}
	for i := range l.slots {
		start := r.Start + i*size
		l.slots[i].rows = grid.RowRange{Start: start, End: min(start+size, r.End)}
		l.slots[i].owner = i * workers / chunks
	}
	return l
}

// Assignment returns the remembered chunks and their owning workers for r
// on the given number of workers, or nil if no run has used that layout.
func (a *Affinity) Assignment(r grid.RowRange, workers int) []Chunk {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.layouts[layoutKey{rows: r, workers: workers}]
	if !ok {
		return nil
	}
	out := make([]Chunk, len(l.slots))
	for i := range l.slots {
		s := &l.slots[i]
		out[i] = Chunk{Rows: s.rows, Worker: s.owner, Visits: s.visits.Load()}
	}
	return out
}

// Runs returns how many times the layout for r on workers has been run.
func (a *Affinity) Runs(r grid.RowRange, workers int) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if l, ok := a.layouts[layoutKey{rows: r, workers: workers}]; ok {
		return l.runs
	}
	return 0
}

// Reset forgets every remembered assignment.
func (a *Affinity) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.layouts)
}

// Chunk describes one remembered chunk.
type Chunk struct {
	Rows   grid.RowRange
	Worker int
	Visits int64
}
