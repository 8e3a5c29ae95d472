// Package parallel runs data-parallel loops over large numeric buffers.
//
// A buffer of n elements is cut into disjoint contiguous strides. Elementwise
// loops (For, Each) hand every stride to one worker, so no index is touched
// twice and no locking is needed. Reductions (Reduce) give every stride a
// private accumulator and merge them on the calling goroutine only after all
// strides have finished; the result does not depend on the stride count.
//
// Work runs on a persistent go-highway worker pool shared by the whole
// process, created on first use with GOMAXPROCS workers.
package parallel

import (
	"runtime"
	"sync"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

// DefaultMinStrideLen is the smallest stride handed to a worker by default.
// Shorter buffers run on the calling goroutine.
const DefaultMinStrideLen = 1 << 14

var (
	defaultPool     *workerpool.Pool
	defaultPoolOnce sync.Once
)

// DefaultPool returns the process-wide worker pool.
func DefaultPool() *workerpool.Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = workerpool.New(runtime.GOMAXPROCS(0))
	})

	return defaultPool
}

// Range is the half-open index interval [Lo, Hi).
type Range struct {
	Lo, Hi int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.Hi - r.Lo
}

// Runner partitions loops into strides and executes them on a worker pool.
type Runner struct {
	pool      *workerpool.Pool
	strides   int
	minStride int
}

// NewRunner creates a Runner.
//
// Parameters:
//   - pool: Worker pool; nil selects DefaultPool()
//   - strides: Maximum number of strides per loop; <= 0 uses the pool's worker count
//   - minStride: Minimum stride length; <= 0 is treated as 1
func NewRunner(pool *workerpool.Pool, strides, minStride int) Runner {
	if pool == nil {
		pool = DefaultPool()
	}
	if strides <= 0 {
		strides = pool.NumWorkers()
	}

	return Runner{
		pool:      pool,
		strides:   strides,
		minStride: max(minStride, 1),
	}
}

// Sequential returns a Runner that executes every loop as a single stride on
// the calling goroutine.
func Sequential() Runner {
	return Runner{strides: 1, minStride: 1}
}

// Ranges partitions [0, n) into at most r.strides contiguous strides of at
// least r.minStride elements. Every boundary except n is a multiple of align,
// so two strides never share an aligned block (a 64-bit mask word when align
// is 64).
func (r Runner) Ranges(n, align int) []Range {
	if n <= 0 {
		return nil
	}
	align = max(align, 1)

	k := min(r.strides, (n+r.minStride-1)/r.minStride)
	k = max(k, 1)

	chunk := (n + k - 1) / k
	chunk = (chunk + align - 1) / align * align

	ranges := make([]Range, 0, (n+chunk-1)/chunk)
	for lo := 0; lo < n; lo += chunk {
		ranges = append(ranges, Range{Lo: lo, Hi: min(lo+chunk, n)})
	}

	return ranges
}

// For calls fn once per stride of [0, n) and returns when all calls are done.
func (r Runner) For(n, align int, fn func(lo, hi int)) {
	ranges := r.Ranges(n, align)
	r.run(len(ranges), func(i int) {
		fn(ranges[i].Lo, ranges[i].Hi)
	})
}

// Each calls fn once per range with the range's index and returns when all
// calls are done.
func (r Runner) Each(ranges []Range, fn func(i int, rg Range)) {
	r.run(len(ranges), func(i int) {
		fn(i, ranges[i])
	})
}

func (r Runner) run(k int, fn func(i int)) {
	switch {
	case k == 0:
		return
	case k == 1 || r.pool == nil:
		for i := range k {
			fn(i)
		}
	default:
		r.pool.ParallelForAtomic(k, fn)
	}
}

// Reduce folds [0, n) into a single value.
//
// Every stride starts from its own init() accumulator and is folded by body.
// The per-stride results are merged in stride order after all strides
// completed, starting from a fresh init().
func Reduce[A any](r Runner, n, align int, init func() A, body func(lo, hi int, acc A) A, merge func(dst, src A) A) A {
	ranges := r.Ranges(n, align)
	partial := make([]A, len(ranges))

	r.Each(ranges, func(i int, rg Range) {
		partial[i] = body(rg.Lo, rg.Hi, init())
	})

	result := init()
	for _, p := range partial {
		result = merge(result, p)
	}

	return result
}
