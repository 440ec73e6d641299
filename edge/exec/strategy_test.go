// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package exec

import (
	"errors"
	"testing"
)

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"serial":           Serial,
		"forkjoin":         ForkJoin,
		"fork-join":        ForkJoin,
		"chunked-auto":     ChunkedAuto,
		"CHUNKED_AUTO":     ChunkedAuto,
		" chunked-affinity": ChunkedAffinity,
		"chunked_affinity": ChunkedAffinity,
	}
	for name, want := range cases {
		got, err := ParseStrategy(name)
		if err != nil {
			t.Errorf("ParseStrategy(%q): %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("ParseStrategy(%q): got %v, want %v", name, got, want)
		}
	}

	for _, bad := range []string{"", "parallel", "chunked"} {
		if _, err := ParseStrategy(bad); !errors.Is(err, ErrUnknownStrategy) {
			t.Errorf("ParseStrategy(%q): got %v, want ErrUnknownStrategy", bad, err)
		}
	}
}

func TestStrategyRoundTrip(t *testing.T) {
	for _, s := range Strategies() {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("%v: MarshalText: %v", s, err)
		}
		var back Strategy
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("%v: UnmarshalText: %v", s, err)
		}
		if back != s {
			t.Errorf("round trip: got %v, want %v", back, s)
		}
	}

	if Strategy(9).String() != "unknown" {
		t.Errorf("String of invalid strategy: got %q", Strategy(9).String())
	}
	if _, err := Strategy(-1).MarshalText(); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("MarshalText(-1): got %v, want ErrUnknownStrategy", err)
	}
}
