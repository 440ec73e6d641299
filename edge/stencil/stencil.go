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

// Package stencil provides the per-pixel edge classifiers and the row-range
// applier that every execution strategy runs at its leaves.
//
// # Classifiers
//
//	Prewitt(in, k, r, c)   // |Gx| + |Gy| over a k.Size() window
//	Mixed(in, w, r, c)     // window holds both bright and dark pixels
//
// Both read only the input grid and write nothing.
//
// # Applying over rows
//
// ApplyRows runs a Filter over a half-open row range and writes 255/0 into
// the output grid. A call writes only rows inside its range and reads input
// rows at most Half() away from them, so calls over disjoint ranges can run
// concurrently on the same output grid without locking.
//
// # Borders
//
// Rows closer than Half() to the top or bottom edge, and columns closer than
// Half() to the left or right edge, are never written and keep whatever the
// output grid held before (zero for a freshly allocated grid).
package stencil

import (
	"github.com/edgefilter/edgefilter/edge/grid"
	"github.com/edgefilter/edgefilter/edge/kernel"
)

// Threshold is the intensity at or above which a pixel counts as bright and
// a gradient magnitude counts as an edge.
const Threshold = 128

// Output values written by the filters.
const (
	Edge       int32 = 255
	Background int32 = 0
)

// Classify maps a gradient magnitude to Edge or Background.
func Classify(magnitude int32) int32 {
	if magnitude >= Threshold {
		return Edge
	}
	return Background
}

// Prewitt returns the gradient magnitude |Gx| + |Gy| of the k.Size() x
// k.Size() window centered on row r, column c. The window must lie inside in.
func Prewitt(in *grid.Grid, k kernel.Kernel, r, c int) int32 {
	size := k.Size()
	half := size / 2
	width := in.Width()
	px := in.Pixels()

	var gx, gy int32
	for i := range size {
		base := (r-half+i)*width + c - half
		row := px[base : base+size]
		for j, p := range row {
			ki := i*size + j
			gx += p * k.H(ki)
			gy += p * k.V(ki)
		}
	}
	return abs(gx) + abs(gy)
}

// Mixed reports whether the width x width window centered on row r,
// column c holds both a bright pixel (>= Threshold) and a dark one. The
// window must lie inside in.
func Mixed(in *grid.Grid, width, r, c int) bool {
	half := width / 2
	stride := in.Width()
	px := in.Pixels()

	// p becomes 1 on any bright pixel, o becomes 0 on any dark one.
	p, o := int32(0), int32(1)
	for i := range width {
		base := (r-half+i)*stride + c - half
		for _, v := range px[base : base+width] {
			if v >= Threshold {
				p = 1
			} else {
				o = 0
			}
		}
	}
	return abs(p-o) == 1
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
