// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package verify

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/edgefilter/edgefilter/edge/grid"
)

func TestEqual(t *testing.T) {
	a := grid.New(4, 3)
	a.Fill(255)
	b := a.Clone()

	if !Equal(a, b) {
		t.Error("Equal: clones should be equal")
	}

	b.Set(2, 1, 0)
	if Equal(a, b) {
		t.Error("Equal: one changed pixel should differ")
	}

	if Equal(a, grid.New(3, 4)) {
		t.Error("Equal: transposed dimensions should differ")
	}
}

func TestDiff(t *testing.T) {
	a := grid.New(5, 4)
	b := grid.New(5, 4)
	b.Set(1, 3, 255)
	b.Set(3, 0, 255)

	got := Diff(a, b)
	want := Mismatch{Count: 2, Row: 1, Col: 3, A: 0, B: 255}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
	if got.Equal() {
		t.Error("Mismatch.Equal: got true")
	}
	if s := got.String(); s != "2 pixels differ, first at (1,3): 0 != 255" {
		t.Errorf("String: got %q", s)
	}
}

func TestDiff_SizeAndNil(t *testing.T) {
	cases := []struct {
		name string
		a, b *grid.Grid
		want Mismatch
	}{
		{"BothNil", nil, nil, Mismatch{}},
		{"OneNil", grid.New(2, 2), nil, Mismatch{SizeDiffers: true}},
		{"Size", grid.New(2, 2), grid.New(2, 3), Mismatch{SizeDiffers: true}},
		{"EmptyGrids", grid.New(0, 0), grid.New(0, 0), Mismatch{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Diff(tc.a, tc.b)); diff != "" {
				t.Errorf("Diff mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
