// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package grid

import "fmt"

// RowRange is the half-open row interval [Start, End).
type RowRange struct {
	Start int
	End   int
}

// Len returns the number of rows in the range, never negative.
func (r RowRange) Len() int {
	return max(r.End-r.Start, 0)
}

// Empty reports whether the range holds no rows.
func (r RowRange) Empty() bool {
	return r.End <= r.Start
}

// Split halves the range at its midpoint (Start+End)/2.
func (r RowRange) Split() (lo, hi RowRange) {
	mid := (r.Start + r.End) / 2
	return RowRange{Start: r.Start, End: mid}, RowRange{Start: mid, End: r.End}
}

// Intersect returns the rows common to both ranges.
func (r RowRange) Intersect(other RowRange) RowRange {
	return RowRange{Start: max(r.Start, other.Start), End: min(r.End, other.End)}
}

// Offset shifts both ends of the range by n rows.
func (r RowRange) Offset(n int) RowRange {
	return RowRange{Start: r.Start + n, End: r.End + n}
}

// String implements fmt.Stringer.
func (r RowRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
