// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"sort"
	"sync"
	"testing"

	"github.com/edgefilter/edgefilter/edge/grid"
	"github.com/edgefilter/edgefilter/edge/workerpool"
)

type recorder struct {
	mu     sync.Mutex
	chunks []grid.RowRange
	owner  map[grid.RowRange]int
}

func (r *recorder) body(worker int, rows grid.RowRange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, rows)
	if r.owner == nil {
		r.owner = make(map[grid.RowRange]int)
	}
	r.owner[rows] = worker
}

// checkCover verifies chunks are disjoint and cover want exactly.
func checkCover(t *testing.T, chunks []grid.RowRange, want grid.RowRange) {
	t.Helper()
	sorted := append([]grid.RowRange(nil), chunks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	next := want.Start
	for _, c := range sorted {
		if c.Empty() {
			t.Fatalf("empty chunk %v", c)
		}
		if c.Start != next {
			t.Fatalf("chunk %v: want start %d (gap or overlap)", c, next)
		}
		next = c.End
	}
	if next != want.End {
		t.Fatalf("chunks end at %d, want %d", next, want.End)
	}
}

func TestBatchSize(t *testing.T) {
	cases := []struct{ n, workers, want int }{
		{1000, 4, 63},
		{16, 4, 1},
		{3, 8, 1},
		{100, 0, 25},
	}
	for _, tc := range cases {
		if got := BatchSize(tc.n, tc.workers); got != tc.want {
			t.Errorf("BatchSize(%d, %d): got %d, want %d", tc.n, tc.workers, got, tc.want)
		}
	}
}

func TestAuto_Covers(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	for _, r := range []grid.RowRange{{Start: 0, End: 1}, {Start: 2, End: 997}, {Start: 5, End: 6}, {Start: 0, End: 64}} {
		var rec recorder
		Auto{}.Run(pool, r, rec.body)
		checkCover(t, rec.chunks, r)
	}
}

func TestAuto_Grain(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	var rec recorder
	Auto{Grain: 50}.Run(pool, grid.RowRange{Start: 0, End: 120}, rec.body)
	checkCover(t, rec.chunks, grid.RowRange{Start: 0, End: 120})
	if len(rec.chunks) != 3 {
		t.Errorf("chunks: got %d, want 3 with grain 50", len(rec.chunks))
	}
}

func TestAuto_EmptyRange(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Close()

	called := false
	Auto{}.Run(pool, grid.RowRange{Start: 7, End: 7}, func(int, grid.RowRange) { called = true })
	Auto{}.Run(pool, grid.RowRange{Start: 9, End: 2}, func(int, grid.RowRange) { called = true })
	if called {
		t.Error("empty range should not call body")
	}
}

func TestAffinity_Covers(t *testing.T) {
	pool := workerpool.New(3)
	defer pool.Close()

	a := NewAffinity()
	for _, r := range []grid.RowRange{{Start: 0, End: 1}, {Start: 1, End: 500}, {Start: 0, End: 12}} {
		var rec recorder
		a.Run(pool, r, rec.body)
		checkCover(t, rec.chunks, r)
	}
}

func TestAffinity_ReplaysAssignment(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	a := NewAffinity()
	r := grid.RowRange{Start: 2, End: 402}

	var first recorder
	a.Run(pool, r, first.body)

	for range 5 {
		var again recorder
		a.Run(pool, r, again.body)
		if len(again.owner) != len(first.owner) {
			t.Fatalf("chunk count changed: %d -> %d", len(first.owner), len(again.owner))
		}
		for rows, w := range first.owner {
			if got, ok := again.owner[rows]; !ok || got != w {
				t.Fatalf("chunk %v: worker %d then %d (present=%v)", rows, w, got, ok)
			}
		}
	}

	if got := a.Runs(r, 4); got != 6 {
		t.Errorf("Runs: got %d, want 6", got)
	}
	for _, c := range a.Assignment(r, 4) {
		if c.Visits != 6 {
			t.Errorf("chunk %v: visits %d, want 6", c.Rows, c.Visits)
		}
		if c.Worker != first.owner[c.Rows] {
			t.Errorf("chunk %v: assignment says worker %d, ran on %d", c.Rows, c.Worker, first.owner[c.Rows])
		}
	}
}

func TestAffinity_ContiguousOwnership(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	a := NewAffinity()
	r := grid.RowRange{Start: 0, End: 160}
	a.Run(pool, r, func(int, grid.RowRange) {})

	chunks := a.Assignment(r, 4)
	if len(chunks) != 16 {
		t.Fatalf("chunks: got %d, want 16", len(chunks))
	}
	for i, c := range chunks {
		if want := i / 4; c.Worker != want {
			t.Errorf("chunk %d: owner %d, want %d", i, c.Worker, want)
		}
	}
}

func TestAffinity_Reset(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Close()

	a := NewAffinity()
	r := grid.RowRange{Start: 0, End: 50}
	a.Run(pool, r, func(int, grid.RowRange) {})
	if a.Assignment(r, 2) == nil {
		t.Fatal("Assignment: got nil after a run")
	}

	a.Reset()
	if a.Assignment(r, 2) != nil {
		t.Error("Assignment: want nil after Reset")
	}
	if a.Runs(r, 2) != 0 {
		t.Error("Runs: want 0 after Reset")
	}
}

func TestAffinity_ZeroValue(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Close()

	var a Affinity
	var rec recorder
	a.Run(pool, grid.RowRange{Start: 0, End: 10}, rec.body)
	checkCover(t, rec.chunks, grid.RowRange{Start: 0, End: 10})
}

func TestPartitionersSatisfyInterface(t *testing.T) {
	for _, p := range []Partitioner{Auto{}, NewAffinity()} {
		if p.Name() == "" {
			t.Errorf("%T: empty name", p)
		}
	}
}
