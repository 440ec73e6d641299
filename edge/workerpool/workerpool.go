// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides the persistent worker pool shared by every
// parallel filter strategy. A Pool is created once, sized to the available
// hardware parallelism, and reused across many filter runs, so no strategy
// pays for goroutine spawning per call.
//
// The pool offers three ways in:
//
//   - ParallelForAtomicBatched hands out batches of an index space to
//     whichever worker is free (dynamic load balancing).
//   - ParallelForPinned sends each index to a chosen worker's private inbox,
//     so the same worker sees the same piece of work on every call.
//   - Join runs two closures as a fork-join pair. The caller blocks until
//     both finish, executing other queued work while it waits, so nested
//     Joins on a fixed number of workers cannot deadlock.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	pool.ParallelForAtomicBatched(rows, 16, func(worker, start, end int) {
//	    processRows(start, end)
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Pool is a persistent worker pool that can be reused across many parallel
// operations. Workers are spawned once at creation and reused.
type Pool struct {
	numWorkers int
	workC      chan workItem
	inboxes    []chan workItem
	executed   []counter
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem is a unit of work. fn receives the id of the worker running it,
// or -1 when it runs on a goroutine outside the pool.
type workItem struct {
	fn      func(worker int)
	barrier *sync.WaitGroup
}

// counter is padded to its own cache line: every worker bumps its own
// counter on every item.
type counter struct {
	n atomic.Int64
	_ cpu.CacheLinePad
}

// New creates a new worker pool with the specified number of workers.
// Workers are spawned immediately and persist until Close is called.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC:    make(chan workItem, numWorkers*2),
		inboxes:  make([]chan workItem, numWorkers),
		executed: make([]counter, numWorkers),
	}
	for i := range p.inboxes {
		p.inboxes[i] = make(chan workItem, 4)
	}

	for id := range numWorkers {
		go p.worker(id)
	}

	return p
}

// worker is the main loop for each persistent worker goroutine. It serves
// its private inbox and the shared queue until both are closed.
func (p *Pool) worker(id int) {
	inbox, shared := p.inboxes[id], p.workC
	for inbox != nil || shared != nil {
		select {
		case item, ok := <-inbox:
			if !ok {
				inbox = nil
				continue
			}
			p.run(id, item)
		case item, ok := <-shared:
			if !ok {
				shared = nil
				continue
			}
			p.run(id, item)
		}
	}
}

func (p *Pool) run(worker int, item workItem) {
	item.fn(worker)
	if worker >= 0 {
		p.executed[worker].n.Add(1)
	}
	if item.barrier != nil {
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Executed returns how many work items each worker has run so far.
func (p *Pool) Executed() []int64 {
	out := make([]int64, p.numWorkers)
	for i := range p.executed {
		out[i] = p.executed[i].n.Load()
	}
	return out
}

// Close shuts down the worker pool. All pending work will complete.
// Calling Close multiple times is safe. Operations issued after Close run
// sequentially on the calling goroutine.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
		for _, inbox := range p.inboxes {
			close(inbox)
		}
	})
}

// ParallelForAtomicBatched executes fn for batches of indices in [0, n)
// using atomic work stealing: each worker repeatedly grabs the next batch
// until none remain. Blocks until all work completes.
//
// fn receives the executing worker and the (start, end) indices of the
// batch, to be processed as [start, end). batchSize controls how many items
// are grabbed per atomic operation.
//
// Must not be called from a task running on this pool.
func (p *Pool) ParallelForAtomicBatched(n int, batchSize int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}

	if batchSize <= 0 {
		batchSize = 1
	}

	if p.closed.Load() {
		fn(-1, 0, n)
		return
	}

	// Calculate number of batches
	numBatches := (n + batchSize - 1) / batchSize
	workers := min(p.numWorkers, numBatches)

	var nextBatch atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		p.workC <- workItem{
			fn: func(worker int) {
				for {
					batch := int(nextBatch.Add(1)) - 1
					start := batch * batchSize
					if start >= n {
						return
					}
					end := min(start+batchSize, n)
					fn(worker, start, end)
				}
			},
			barrier: &wg,
		}
	}

	wg.Wait()
}

// ParallelForPinned executes fn(worker, i) for each i in [0, n). Index i is
// queued on the private inbox of worker owner(i); indices whose owner is
// outside [0, NumWorkers()) go to the shared queue and run on any worker.
// Blocks until all work completes.
//
// Must not be called from a task running on this pool.
func (p *Pool) ParallelForPinned(n int, owner func(i int) int, fn func(worker, i int)) {
	if n <= 0 {
		return
	}

	if p.closed.Load() {
		for i := range n {
			fn(-1, i)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)

	for i := range n {
		item := workItem{
			fn: func(worker int) {
				fn(worker, i)
			},
			barrier: &wg,
		}
		if w := owner(i); w >= 0 && w < p.numWorkers {
			p.inboxes[w] <- item
		} else {
			p.workC <- item
		}
	}

	wg.Wait()
}

// Join runs left and right as a fork-join pair and returns once both have
// completed. right is offered to the pool and left runs on the calling
// goroutine; if the shared queue is full, right runs inline as well.
//
// While waiting for right, the caller executes other queued work, so Join
// may be nested to any depth from pool tasks.
func (p *Pool) Join(left, right func()) {
	if p.closed.Load() {
		left()
		right()
		return
	}

	done := make(chan struct{})
	item := workItem{
		fn: func(int) {
			defer close(done)
			right()
		},
	}

	select {
	case p.workC <- item:
	default:
		left()
		right()
		return
	}

	left()
	p.help(done)
}

// help runs queued work on the calling goroutine until done is closed.
func (p *Pool) help(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case item, ok := <-p.workC:
			if !ok {
				<-done
				return
			}
			p.run(-1, item)
		}
	}
}
