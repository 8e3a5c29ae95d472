package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
	"github.com/stretchr/testify/require"
)

func checkPartition(t *testing.T, ranges []Range, n, align int) {
	t.Helper()

	next := 0
	for i, rg := range ranges {
		require.Equal(t, next, rg.Lo, "stride %d", i)
		require.Greater(t, rg.Hi, rg.Lo, "stride %d", i)
		require.Zero(t, rg.Lo%align, "stride %d", i)
		next = rg.Hi
	}
	require.Equal(t, n, next)
}

func TestRanges(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		r := NewRunner(nil, 4, 1)
		require.Empty(t, r.Ranges(0, 1))
		require.Empty(t, r.Ranges(-3, 1))
	})

	t.Run("covers input for many shapes", func(t *testing.T) {
		for _, strides := range []int{1, 2, 3, 7, 16} {
			r := NewRunner(nil, strides, 1)
			for _, n := range []int{1, 5, 63, 64, 65, 1000, 4097} {
				for _, align := range []int{1, 8, 64} {
					ranges := r.Ranges(n, align)
					require.LessOrEqual(t, len(ranges), strides)
					checkPartition(t, ranges, n, align)
				}
			}
		}
	})

	t.Run("min stride limits stride count", func(t *testing.T) {
		r := NewRunner(nil, 8, 100)
		require.Len(t, r.Ranges(250, 1), 3)
		require.Len(t, r.Ranges(99, 1), 1)
	})

	t.Run("sequential", func(t *testing.T) {
		ranges := Sequential().Ranges(10_000, 64)
		require.Equal(t, []Range{{Lo: 0, Hi: 10_000}}, ranges)
		require.Equal(t, 10_000, ranges[0].Len())
	})
}

func TestFor(t *testing.T) {
	const n = 10_007
	for _, r := range []Runner{Sequential(), NewRunner(nil, 1, 1), NewRunner(nil, 5, 1), NewRunner(nil, 64, 16)} {
		hits := make([]int32, n)
		r.For(n, 64, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.Equal(t, int32(1), h, "index %d", i)
		}
	}
}

func TestEach(t *testing.T) {
	r := NewRunner(nil, 4, 1)
	ranges := r.Ranges(100, 1)
	seen := make([]Range, len(ranges))

	r.Each(ranges, func(i int, rg Range) {
		seen[i] = rg
	})
	require.Equal(t, ranges, seen)
}

func TestReduce(t *testing.T) {
	const n = 12_345
	want := int64(n) * (n - 1) / 2

	for _, strides := range []int{1, 2, 3, 8, 33} {
		r := NewRunner(nil, strides, 1)
		got := Reduce(r, n, 1,
			func() int64 { return 0 },
			func(lo, hi int, acc int64) int64 {
				for i := lo; i < hi; i++ {
					acc += int64(i)
				}
				return acc
			},
			func(dst, src int64) int64 { return dst + src },
		)
		require.Equal(t, want, got, "strides=%d", strides)
	}
}

func TestReduceFlags(t *testing.T) {
	type flags struct{ neg, zero bool }

	data := make([]float64, 5000)
	for i := range data {
		data[i] = float64(i + 1)
	}
	data[4999] = -1
	data[0] = 0

	for _, strides := range []int{1, 2, 7} {
		got := Reduce(NewRunner(nil, strides, 1), len(data), 64,
			func() flags { return flags{} },
			func(lo, hi int, acc flags) flags {
				for _, v := range data[lo:hi] {
					acc.neg = acc.neg || v < 0
					acc.zero = acc.zero || v == 0
				}
				return acc
			},
			func(dst, src flags) flags {
				return flags{neg: dst.neg || src.neg, zero: dst.zero || src.zero}
			},
		)
		require.Equal(t, flags{neg: true, zero: true}, got, "strides=%d", strides)
	}
}

func TestClosedPoolFallsBackToSequential(t *testing.T) {
	pool := workerpool.New(2)
	pool.Close()

	var sum atomic.Int64
	NewRunner(pool, 4, 1).For(1000, 1, func(lo, hi int) {
		sum.Add(int64(hi - lo))
	})
	require.Equal(t, int64(1000), sum.Load())
}

func TestDefaultPool(t *testing.T) {
	require.Same(t, DefaultPool(), DefaultPool())
	require.Positive(t, DefaultPool().NumWorkers())
}
