// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

// Package verify compares filter outputs pixel for pixel.
//
// Every scheduling strategy must reproduce the serial output exactly, so a
// mismatch means a broken strategy, not bad input. It is reported as a
// value, never as an error.
package verify

import (
	"fmt"

	"github.com/edgefilter/edgefilter/edge/grid"
)

// Equal reports whether a and b have the same dimensions and pixels.
func Equal(a, b *grid.Grid) bool {
	return Diff(a, b).Equal()
}

// Mismatch summarizes how two grids differ. The zero value means equal.
type Mismatch struct {
	// SizeDiffers is set when the dimensions differ; no pixels are compared.
	SizeDiffers bool
	// Count is the number of differing pixels.
	Count int
	// Row, Col locate the first differing pixel in row-major order.
	Row, Col int
	// A, B are the values of the first differing pixel.
	A, B int32
}

// Equal reports whether the compared grids were identical.
func (m Mismatch) Equal() bool {
	return !m.SizeDiffers && m.Count == 0
}

// String implements fmt.Stringer.
func (m Mismatch) String() string {
	switch {
	case m.SizeDiffers:
		return "size differs"
	case m.Count == 0:
		return "equal"
	default:
		return fmt.Sprintf("%d pixels differ, first at (%d,%d): %d != %d", m.Count, m.Row, m.Col, m.A, m.B)
	}
}

// Diff compares a and b. A nil grid only equals another nil grid.
func Diff(a, b *grid.Grid) Mismatch {
	if a == nil || b == nil {
		return Mismatch{SizeDiffers: a != b}
	}
	if !grid.SameSize(a, b) {
		return Mismatch{SizeDiffers: true}
	}

	var m Mismatch
	pa, pb := a.Pixels(), b.Pixels()
	for i := range pa {
		if pa[i] == pb[i] {
			continue
		}
		if m.Count == 0 {
			m.Row, m.Col = i/a.Width(), i%a.Width()
			m.A, m.B = pa[i], pb[i]
		}
		m.Count++
	}
	return m
}
