// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package stencil

import (
	"errors"
	"fmt"

	"github.com/edgefilter/edgefilter/edge/grid"
	"github.com/edgefilter/edgefilter/edge/kernel"
)

// ErrFilter indicates a filter whose window cannot be applied.
var ErrFilter = errors.New("stencil: invalid filter")

// Filter classifies one pixel from its neighborhood in the input grid.
// Implementations must be safe for concurrent use.
type Filter interface {
	// Half is the window radius: rows and columns closer than Half to an
	// edge are not filtered.
	Half() int
	// Pixel returns Edge or Background for row r, column c.
	Pixel(in *grid.Grid, r, c int) int32
	// Name identifies the filter in logs and metrics.
	Name() string
}

// PrewittFilter thresholds the Prewitt gradient magnitude.
type PrewittFilter struct {
	Kernel kernel.Kernel
}

// NewPrewitt returns a PrewittFilter for k.
func NewPrewitt(k kernel.Kernel) PrewittFilter {
	return PrewittFilter{Kernel: k}
}

// Half implements Filter.
func (f PrewittFilter) Half() int { return f.Kernel.Half() }

// Pixel implements Filter.
func (f PrewittFilter) Pixel(in *grid.Grid, r, c int) int32 {
	return Classify(Prewitt(in, f.Kernel, r, c))
}

// Name implements Filter.
func (f PrewittFilter) Name() string { return "prewitt" }

// UniformityFilter marks pixels whose neighborhood is neither all bright
// nor all dark.
type UniformityFilter struct {
	Width int
}

// NewUniformity returns a UniformityFilter with the given window width.
func NewUniformity(width int) UniformityFilter {
	return UniformityFilter{Width: width}
}

// Half implements Filter.
func (f UniformityFilter) Half() int { return f.Width / 2 }

// Pixel implements Filter.
func (f UniformityFilter) Pixel(in *grid.Grid, r, c int) int32 {
	if Mixed(in, f.Width, r, c) {
		return Edge
	}
	return Background
}

// Name implements Filter.
func (f UniformityFilter) Name() string { return "uniformity" }

// Validate checks that f has a usable window: an odd width of at least 3.
func Validate(f Filter) error {
	if f == nil {
		return fmt.Errorf("%w: nil", ErrFilter)
	}
	switch f := f.(type) {
	case PrewittFilter:
		if !f.Kernel.Valid() {
			return fmt.Errorf("%w: %w", ErrFilter, kernel.ErrSize)
		}
	case UniformityFilter:
		if f.Width < 3 || f.Width%2 == 0 {
			return fmt.Errorf("%w: neighborhood width %d", ErrFilter, f.Width)
		}
	}
	return nil
}

// FullRange returns the row range a whole-grid run covers: [0, height-half).
func FullRange(f Filter, in *grid.Grid) grid.RowRange {
	return grid.RowRange{Start: 0, End: in.Height() - f.Half()}
}

// ValidRows clips r to the rows of in that have a complete window,
// [half, height-half).
func ValidRows(f Filter, in *grid.Grid, r grid.RowRange) grid.RowRange {
	half := f.Half()
	return r.Intersect(grid.RowRange{Start: half, End: in.Height() - half})
}

// ApplyRows writes f's classification of every valid pixel in rows r of in
// into out. Rows outside the valid band and the half-wide column borders
// are left untouched. in and out must have the same dimensions.
func ApplyRows(f Filter, in, out *grid.Grid, r grid.RowRange) {
	rows := ValidRows(f, in, r)
	half := f.Half()
	width := in.Width()
	if rows.Empty() || width-half <= half {
		return
	}

	dst := out.Pixels()
	for i := rows.Start; i < rows.End; i++ {
		line := dst[i*width : (i+1)*width]
		for j := half; j < width-half; j++ {
			line[j] = f.Pixel(in, i, j)
		}
	}
}
