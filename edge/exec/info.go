// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package exec

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Info describes the machine an Executor schedules on.
type Info struct {
	Workers   int
	Cutoff    int
	GOARCH    string
	CacheLine int
	// Features lists the vector extensions the CPU reports. The filters do
	// not use them; they are recorded to make benchmark numbers comparable.
	Features []string
}

// Info reports the executor's configuration and CPU.
func (e *Executor) Info() Info {
	return Info{
		Workers:   e.Workers(),
		Cutoff:    e.cutoff,
		GOARCH:    runtime.GOARCH,
		CacheLine: int(unsafe.Sizeof(cpu.CacheLinePad{})),
		Features:  cpuFeatures(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%d workers, cutoff %d, %s, %d-byte cache lines, features %v",
		i.Workers, i.Cutoff, i.GOARCH, i.CacheLine, i.Features)
}

func cpuFeatures() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return out
}
