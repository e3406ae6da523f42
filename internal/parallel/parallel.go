// Package parallel is the shared-memory worker team used by benchmarked
// functions. The team size is a process-wide hint set by the sweep before
// each thread-count block; functions read it when they open a parallel
// region through For or Go.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var numThreads atomic.Int64

func init() {
	numThreads.Store(int64(runtime.GOMAXPROCS(0)))
}

// SetNumThreads sets the team size for subsequent parallel regions.
// Values below 1 are clamped to 1.
func SetNumThreads(n int) {
	if n < 1 {
		n = 1
	}
	numThreads.Store(int64(n))
}

func NumThreads() int {
	return int(numThreads.Load())
}

// For runs body(i) for every i in [0, n), splitting the range into one
// contiguous chunk per team member.
func For(n int, body func(i int)) {
	ForRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			body(i)
		}
	})
}

// ForRange hands each team member a contiguous [lo, hi) chunk of [0, n).
func ForRange(n int, body func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := NumThreads()
	if workers > n {
		workers = n
	}
	if workers == 1 {
		body(0, n)
		return
	}

	chunk := n / workers
	rem := n % workers
	var wg sync.WaitGroup
	lo := 0
	for w := 0; w < workers; w++ {
		size := chunk
		if w < rem {
			size++
		}
		hi := lo + size
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			body(lo, hi)
		}(lo, hi)
		lo = hi
	}
	wg.Wait()
}

// Go runs the tasks with at most NumThreads of them in flight and returns
// the first error.
func Go(tasks ...func() error) error {
	var g errgroup.Group
	g.SetLimit(NumThreads())
	for _, task := range tasks {
		g.Go(task)
	}
	return g.Wait()
}

// Runtime applies the thread-count hint to the team size and to GOMAXPROCS
// so a single-thread block really runs on one OS thread.
type Runtime struct {
	mu       sync.Mutex
	original int
	applied  bool
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

func (r *Runtime) SetThreads(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 1 {
		n = 1
	}
	prev := runtime.GOMAXPROCS(n)
	if !r.applied {
		r.original = prev
		r.applied = true
	}
	SetNumThreads(n)
}

// Restore puts GOMAXPROCS and the team size back to their values before the
// first SetThreads.
func (r *Runtime) Restore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.applied {
		return
	}
	runtime.GOMAXPROCS(r.original)
	SetNumThreads(r.original)
	r.applied = false
}
