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

// Package kernel provides the square gradient kernels used by the Prewitt
// filter.
//
// A Kernel is a value: its coefficient tables are private and never written
// after construction, so one Kernel can be shared by any number of goroutines.
//
//	k := kernel.ForSize(5, logger.Warn)
//	h, v := k.At(0, 0)
package kernel

import (
	"errors"
	"fmt"
)

// DefaultSize is the kernel size substituted for unsupported sizes.
const DefaultSize = 3

var (
	// ErrSize indicates a kernel size that is even or smaller than 3.
	ErrSize = errors.New("kernel: size must be odd and >= 3")
	// ErrCoefficients indicates a coefficient table of the wrong length.
	ErrCoefficients = errors.New("kernel: coefficient count must be size*size")
)

// WarnFunc receives non-fatal configuration warnings. Its signature matches
// (*slog.Logger).Warn.
type WarnFunc func(msg string, args ...any)

// Kernel is an immutable size x size pair of horizontal and vertical
// gradient coefficient matrices, stored row-major.
type Kernel struct {
	size       int
	horizontal []int32
	vertical   []int32
}

// New builds a kernel from row-major coefficient tables. The tables are
// copied.
func New(size int, horizontal, vertical []int32) (Kernel, error) {
	if size < 3 || size%2 == 0 {
		return Kernel{}, fmt.Errorf("%w: got %d", ErrSize, size)
	}
	n := size * size
	if len(horizontal) != n || len(vertical) != n {
		return Kernel{}, fmt.Errorf("%w: size %d wants %d, got %d and %d",
			ErrCoefficients, size, n, len(horizontal), len(vertical))
	}
	return Kernel{
		size:       size,
		horizontal: append([]int32(nil), horizontal...),
		vertical:   append([]int32(nil), vertical...),
	}, nil
}

// Size returns the side length of the kernel.
func (k Kernel) Size() int {
	return k.size
}

// Half returns size/2, the number of rows and columns the window extends on
// each side of its center.
func (k Kernel) Half() int {
	return k.size / 2
}

// Valid reports whether the kernel was built by New or Prewitt. The zero
// Kernel is not valid.
func (k Kernel) Valid() bool {
	return k.size >= 3
}

// H returns the horizontal coefficient at flat index i.
func (k Kernel) H(i int) int32 {
	return k.horizontal[i]
}

// V returns the vertical coefficient at flat index i.
func (k Kernel) V(i int) int32 {
	return k.vertical[i]
}

// At returns the horizontal and vertical coefficients at row r, column c.
func (k Kernel) At(r, c int) (h, v int32) {
	i := r*k.size + c
	return k.horizontal[i], k.vertical[i]
}

// String implements fmt.Stringer.
func (k Kernel) String() string {
	return fmt.Sprintf("Kernel(%dx%d)", k.size, k.size)
}
