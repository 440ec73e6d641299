// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package kernel

import "fmt"

// Prewitt coefficient tables, row-major. The 5x5 pair is the weighted
// variant tuned for bitmap scans; 3x3 and 7x7 are the classic operator and
// its extension.
var (
	prewitt3H = [9]int32{
		-1, 0, 1,
		-1, 0, 1,
		-1, 0, 1,
	}
	prewitt3V = [9]int32{
		-1, -1, -1,
		0, 0, 0,
		1, 1, 1,
	}

	prewitt5H = [25]int32{
		9, 9, 9, 9, 9,
		9, 5, 5, 5, 9,
		-7, -3, 0, -3, -7,
		-7, -3, -3, -3, -7,
		-7, -7, -7, -7, -7,
	}
	prewitt5V = [25]int32{
		9, 9, -7, -7, -7,
		9, 5, -3, -3, -7,
		9, 5, 0, -3, -7,
		9, 5, -3, -3, -7,
		9, 9, -7, -7, -7,
	}

	prewitt7H = [49]int32{
		-1, -1, -1, 0, 1, 1, 1,
		-1, -1, -1, 0, 1, 1, 1,
		-1, -1, -1, 0, 1, 1, 1,
		-1, -1, -1, 0, 1, 1, 1,
		-1, -1, -1, 0, 1, 1, 1,
		-1, -1, -1, 0, 1, 1, 1,
		-1, -1, -1, 0, 1, 1, 1,
	}
	prewitt7V = [49]int32{
		-1, -1, -1, -1, -1, -1, -1,
		-1, -1, -1, -1, -1, -1, -1,
		-1, -1, -1, -1, -1, -1, -1,
		0, 0, 0, 0, 0, 0, 0,
		1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1,
	}
)

// Sizes returns the kernel sizes Prewitt supports.
func Sizes() []int {
	return []int{3, 5, 7}
}

// Prewitt returns the built-in Prewitt kernel of the given size.
func Prewitt(size int) (Kernel, error) {
	switch size {
	case 3:
		return New(3, prewitt3H[:], prewitt3V[:])
	case 5:
		return New(5, prewitt5H[:], prewitt5V[:])
	case 7:
		return New(7, prewitt7H[:], prewitt7V[:])
	default:
		return Kernel{}, fmt.Errorf("%w: no Prewitt kernel of size %d", ErrSize, size)
	}
}

// ForSize returns the Prewitt kernel for size, substituting DefaultSize for
// any size other than 3, 5 or 7. The substitution is reported through warn,
// which may be nil.
func ForSize(size int, warn WarnFunc) Kernel {
	k, err := Prewitt(size)
	if err == nil {
		return k
	}
	if warn != nil {
		warn("unsupported filter size, using default", "requested", size, "default", DefaultSize)
	}
	k, _ = Prewitt(DefaultSize)
	return k
}

// NeighborhoodWidth validates the window width of the uniformity detector.
// Even widths and widths below 3 are replaced by DefaultSize and reported
// through warn, which may be nil.
func NeighborhoodWidth(width int, warn WarnFunc) int {
	if width >= 3 && width%2 == 1 {
		return width
	}
	if warn != nil {
		warn("unsupported neighborhood width, using default", "requested", width, "default", DefaultSize)
	}
	return DefaultSize
}
