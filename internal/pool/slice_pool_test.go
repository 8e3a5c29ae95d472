package pool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat64Slice(t *testing.T) {
	t.Run("returns slice with correct size", func(t *testing.T) {
		slice, cleanup := GetFloat64Slice(100)
		defer cleanup()

		require.Len(t, slice, 100)
		require.GreaterOrEqual(t, cap(slice), 100)
	})

	t.Run("reused slice is zeroed", func(t *testing.T) {
		slice1, cleanup1 := GetFloat64Slice(50)
		for i := range slice1 {
			slice1[i] = float64(i) + 1
		}
		cleanup1()

		slice2, cleanup2 := GetFloat64Slice(40)
		defer cleanup2()
		for _, v := range slice2 {
			require.Zero(t, v)
		}
	})

	t.Run("grows when capacity insufficient", func(t *testing.T) {
		_, cleanup1 := GetFloat64Slice(10)
		cleanup1()

		slice, cleanup2 := GetFloat64Slice(1000)
		defer cleanup2()
		require.Len(t, slice, 1000)
	})

	t.Run("zero size", func(t *testing.T) {
		slice, cleanup := GetFloat64Slice(0)
		defer cleanup()
		require.Empty(t, slice)
	})
}

func TestGetIntSlice(t *testing.T) {
	slice1, cleanup1 := GetIntSlice(8)
	for i := range slice1 {
		slice1[i] = 7
	}
	cleanup1()

	slice2, cleanup2 := GetIntSlice(8)
	defer cleanup2()
	require.Equal(t, make([]int, 8), slice2)
}

func TestSlicePoolConcurrency(t *testing.T) {
	var wg sync.WaitGroup
	var dirty atomic.Int64
	for g := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				size := (g*31+i)%64 + 1
				slice, cleanup := GetFloat64Slice(size)
				for j := range slice {
					if slice[j] != 0 {
						dirty.Add(1)
					}
					slice[j] = float64(g + 1)
				}
				cleanup()
			}
		}()
	}
	wg.Wait()
	require.Zero(t, dirty.Load())
}
