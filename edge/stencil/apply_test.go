// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package stencil

import (
	"math/rand/v2"
	"testing"

	"github.com/edgefilter/edgefilter/edge/grid"
)

func randomGrid(width, height int, seed uint64) *grid.Grid {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g := grid.New(width, height)
	for i := range g.Pixels() {
		g.Pixels()[i] = int32(rng.IntN(256))
	}
	return g
}

func filters(t testing.TB) []Filter {
	return []Filter{
		NewPrewitt(mustPrewitt(t, 3)),
		NewPrewitt(mustPrewitt(t, 5)),
		NewPrewitt(mustPrewitt(t, 7)),
		NewUniformity(3),
		NewUniformity(5),
	}
}

func TestApplyRows_BordersUntouched(t *testing.T) {
	in := randomGrid(40, 30, 1)
	for _, f := range filters(t) {
		t.Run(f.Name(), func(t *testing.T) {
			out := grid.New(in.Width(), in.Height())
			out.Fill(-1)
			ApplyRows(f, in, out, FullRange(f, in))

			half := f.Half()
			for r := range in.Height() {
				for c := range in.Width() {
					border := r < half || r >= in.Height()-half || c < half || c >= in.Width()-half
					v := out.At(r, c)
					if border && v != -1 {
						t.Fatalf("border (%d,%d): got %d, want untouched", r, c, v)
					}
					if !border && v != Edge && v != Background {
						t.Fatalf("interior (%d,%d): got %d, want 0 or 255", r, c, v)
					}
				}
			}
		})
	}
}

func TestApplyRows_MatchesPixel(t *testing.T) {
	in := randomGrid(25, 25, 2)
	f := NewPrewitt(mustPrewitt(t, 5))
	out := grid.New(25, 25)
	ApplyRows(f, in, out, FullRange(f, in))

	for r := 2; r < 23; r++ {
		for c := 2; c < 23; c++ {
			if got, want := out.At(r, c), f.Pixel(in, r, c); got != want {
				t.Fatalf("(%d,%d): got %d, want %d", r, c, got, want)
			}
		}
	}
}

func TestApplyRows_WritesOnlyItsRows(t *testing.T) {
	in := randomGrid(20, 20, 3)
	f := NewUniformity(3)
	out := grid.New(20, 20)
	out.Fill(-1)

	ApplyRows(f, in, out, grid.RowRange{Start: 5, End: 9})

	for r := range 20 {
		inside := r >= 5 && r < 9
		for c := 1; c < 19; c++ {
			if touched := out.At(r, c) != -1; touched != inside {
				t.Fatalf("row %d col %d: touched=%v, want %v", r, c, touched, inside)
			}
		}
	}
}

func TestApplyRows_SplitEqualsWhole(t *testing.T) {
	in := randomGrid(33, 47, 4)
	for _, f := range filters(t) {
		whole := grid.New(33, 47)
		ApplyRows(f, in, whole, FullRange(f, in))

		parts := grid.New(33, 47)
		full := FullRange(f, in)
		for start := full.Start; start < full.End; start += 4 {
			ApplyRows(f, in, parts, grid.RowRange{Start: start, End: min(start+4, full.End)})
		}

		for i := range whole.Pixels() {
			if whole.Pixels()[i] != parts.Pixels()[i] {
				t.Fatalf("%s: pixel %d differs: whole %d, parts %d",
					f.Name(), i, whole.Pixels()[i], parts.Pixels()[i])
			}
		}
	}
}

func TestApplyRows_EmptyAndTinyGrids(t *testing.T) {
	f := NewPrewitt(mustPrewitt(t, 7))

	// Smaller than the window: nothing to do, nothing read out of bounds.
	in := randomGrid(5, 5, 5)
	out := grid.New(5, 5)
	ApplyRows(f, in, out, FullRange(f, in))
	for i, p := range out.Pixels() {
		if p != 0 {
			t.Fatalf("pixel %d: got %d, want 0", i, p)
		}
	}

	// Inverted and out-of-range requests are no-ops.
	in = randomGrid(20, 20, 6)
	out = grid.New(20, 20)
	ApplyRows(f, in, out, grid.RowRange{Start: 10, End: 2})
	ApplyRows(f, in, out, grid.RowRange{Start: -50, End: 3})
	ApplyRows(f, in, out, grid.RowRange{Start: 17, End: 500})
	for i, p := range out.Pixels() {
		if p != 0 {
			t.Fatalf("pixel %d: got %d, want 0", i, p)
		}
	}
}

// Filtering a filtered grid again has no defined relationship to the first
// pass; this only checks the second pass stays well formed and does not
// compare the two outputs.
func TestApplyRows_IdempotenceNotDefined(t *testing.T) {
	in := randomGrid(30, 30, 7)
	f := NewPrewitt(mustPrewitt(t, 3))

	once := grid.New(30, 30)
	ApplyRows(f, in, once, FullRange(f, in))
	twice := grid.New(30, 30)
	ApplyRows(f, once, twice, FullRange(f, once))

	for i, p := range twice.Pixels() {
		if p != Edge && p != Background {
			t.Fatalf("pixel %d: got %d, want 0 or 255", i, p)
		}
	}
}

func BenchmarkApplyRows(b *testing.B) {
	in := randomGrid(1024, 1024, 8)
	out := grid.New(1024, 1024)
	for _, f := range filters(b) {
		b.Run(f.Name(), func(b *testing.B) {
			for b.Loop() {
				ApplyRows(f, in, out, FullRange(f, in))
			}
		})
	}
}
