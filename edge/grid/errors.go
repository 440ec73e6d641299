// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensions indicates a pixel buffer or a pair of grids whose sizes
	// do not agree.
	ErrDimensions = errors.New("grid: dimension mismatch")
	// ErrNil indicates a nil grid where one is required.
	ErrNil = errors.New("grid: nil grid")
)

// CheckPair verifies that in and out are non-nil and equally sized.
func CheckPair(in, out *Grid) error {
	if in == nil || out == nil {
		return ErrNil
	}
	if !SameSize(in, out) {
		return fmt.Errorf("%w: input %v, output %v", ErrDimensions, in, out)
	}
	return nil
}
