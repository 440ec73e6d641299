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

// Package grid provides the single-channel intensity buffer the filters
// operate on.
//
// A Grid stores pixels in one flat row-major slice, so pixel (r, c) lives at
// index r*width + c. Rows are not padded: a stencil window that stays inside
// the grid can walk the slice with plain index arithmetic.
//
// Example usage:
//
//	g := grid.New(640, 480)
//	for y := 0; y < g.Height(); y++ {
//	    row := g.Row(y)
//	    // fill row
//	}
package grid

import "fmt"

// Grid is a width x height array of intensities stored row-major.
type Grid struct {
	pixels []int32
	width  int
	height int
}

// New creates a zero-filled grid with the specified dimensions.
// Non-positive dimensions produce an empty 0x0 grid.
func New(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		return &Grid{}
	}
	return &Grid{
		pixels: make([]int32, width*height),
		width:  width,
		height: height,
	}
}

// FromPixels wraps an existing row-major buffer. The grid takes ownership of
// pixels; the caller must not modify it afterwards.
func FromPixels(width, height int, pixels []int32) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %dx%d grid needs %d pixels, got %d",
			ErrDimensions, width, height, width*height, len(pixels))
	}
	return &Grid{pixels: pixels, width: width, height: height}, nil
}

// Width returns the grid width in pixels.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the grid height in pixels.
func (g *Grid) Height() int {
	return g.height
}

// Len returns width*height.
func (g *Grid) Len() int {
	return len(g.pixels)
}

// Pixels returns the backing row-major slice.
func (g *Grid) Pixels() []int32 {
	return g.pixels
}

// Row returns a mutable slice for row y, or nil if y is out of range.
func (g *Grid) Row(y int) []int32 {
	if y < 0 || y >= g.height {
		return nil
	}
	start := y * g.width
	return g.pixels[start : start+g.width]
}

// At returns the value at row r, column c. Out-of-bounds reads return zero.
func (g *Grid) At(r, c int) int32 {
	if r < 0 || r >= g.height || c < 0 || c >= g.width {
		return 0
	}
	return g.pixels[r*g.width+c]
}

// Set writes the value at row r, column c. Out-of-bounds writes are ignored.
func (g *Grid) Set(r, c int, value int32) {
	if r < 0 || r >= g.height || c < 0 || c >= g.width {
		return
	}
	g.pixels[r*g.width+c] = value
}

// SameSize returns true if both grids have the same dimensions.
func SameSize(a, b *Grid) bool {
	return a.width == b.width && a.height == b.height
}

// Clone creates a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	clone := &Grid{
		pixels: make([]int32, len(g.pixels)),
		width:  g.width,
		height: g.height,
	}
	copy(clone.pixels, g.pixels)
	return clone
}

// Clear sets all pixels to zero.
func (g *Grid) Clear() {
	clear(g.pixels)
}

// Fill sets all pixels to the specified value.
func (g *Grid) Fill(value int32) {
	for i := range g.pixels {
		g.pixels[i] = value
	}
}

// Rows returns the range covering every row of the grid.
func (g *Grid) Rows() RowRange {
	return RowRange{Start: 0, End: g.height}
}

// String implements fmt.Stringer.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d)", g.width, g.height)
}
