// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

// Package bmpio loads bitmap files into intensity grids and writes grids
// back out as 8-bit grayscale bitmaps.
//
// Color input is reduced to luminance with the standard library's gray
// model. Every failure wraps ErrIO so callers can tell I/O trouble apart
// from configuration or filter errors:
//
//	in, err := bmpio.Load("photo.bmp")
//	if errors.Is(err, bmpio.ErrIO) { ... }
package bmpio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"golang.org/x/image/bmp"

	"github.com/edgefilter/edgefilter/edge/grid"
)

// ErrIO indicates a bitmap that could not be read, decoded, encoded or
// written.
var ErrIO = errors.New("bmpio: i/o error")

// Load reads the bitmap at path.
func Load(path string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	g, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Decode reads a bitmap from r.
func Decode(r io.Reader) (*grid.Grid, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrIO, err)
	}
	return FromImage(img), nil
}

// FromImage converts any image to a grid of 0..255 luminance values.
func FromImage(img image.Image) *grid.Grid {
	b := img.Bounds()
	g := grid.New(b.Dx(), b.Dy())
	if gray, ok := img.(*image.Gray); ok {
		for y := range g.Height() {
			src := gray.Pix[y*gray.Stride : y*gray.Stride+g.Width()]
			row := g.Row(y)
			for x, v := range src {
				row[x] = int32(v)
			}
		}
		return g
	}
	for y := range g.Height() {
		row := g.Row(y)
		for x := range row {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			row[x] = int32(c.Y)
		}
	}
	return g
}

// ToImage converts g to an 8-bit grayscale image. Values outside 0..255 are
// clamped.
func ToImage(g *grid.Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width(), g.Height()))
	for y := range g.Height() {
		dst := img.Pix[y*img.Stride : y*img.Stride+g.Width()]
		for x, v := range g.Row(y) {
			dst[x] = uint8(min(max(v, 0), 255))
		}
	}
	return img
}

// Encode writes g to w as a grayscale bitmap.
func Encode(w io.Writer, g *grid.Grid) error {
	if g == nil || g.Len() == 0 {
		return fmt.Errorf("%w: encode: empty grid", ErrIO)
	}
	if err := bmp.Encode(w, ToImage(g)); err != nil {
		return fmt.Errorf("%w: encode: %w", ErrIO, err)
	}
	return nil
}

// Save writes g to path as a grayscale bitmap, replacing any existing file.
func Save(g *grid.Grid, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %s: %w", ErrIO, path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := Encode(w, g); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	return nil
}
