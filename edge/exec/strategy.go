// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package exec

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how a filter run is scheduled.
type Strategy int

const (
	// Serial runs the whole range on the calling goroutine.
	Serial Strategy = iota

	// ForkJoin recursively halves the range down to the cutoff.
	ForkJoin

	// ChunkedAuto hands chunks to whichever worker is free.
	ChunkedAuto

	// ChunkedAffinity pins chunks to workers and keeps the assignment
	// across runs.
	ChunkedAffinity
)

// ErrUnknownStrategy indicates a strategy name ParseStrategy does not know.
var ErrUnknownStrategy = errors.New("exec: unknown strategy")

var strategyNames = [...]string{
	Serial:          "serial",
	ForkJoin:        "forkjoin",
	ChunkedAuto:     "chunked-auto",
	ChunkedAffinity: "chunked-affinity",
}

// String returns the strategy's configuration name.
func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// Strategies returns every strategy, serial first.
func Strategies() []Strategy {
	return []Strategy{Serial, ForkJoin, ChunkedAuto, ChunkedAffinity}
}

// ParseStrategy maps a configuration name to a Strategy. Matching ignores
// case and surrounding space, and accepts "fork-join" and the underscore
// spellings of the chunked names.
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	if key == "fork-join" {
		key = "forkjoin"
	}
	for i, n := range strategyNames {
		if n == key {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownStrategy, name, strings.Join(strategyNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if s.String() == "unknown" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
