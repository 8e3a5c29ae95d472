package pool

import "sync"

// Scratch slice pools for the parallel transforms: per-stride accumulators
// and per-stride counts.
var (
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
	intSlicePool = sync.Pool{
		New: func() any { return &[]int{} },
	}
)

func getSlice[T any](p *sync.Pool, size int) ([]T, func()) {
	ptr, _ := p.Get().(*[]T)
	slice := *ptr

	if cap(slice) < size {
		slice = make([]T, size)
	} else {
		slice = slice[:size]
		clear(slice)
	}
	*ptr = slice

	return slice, func() { p.Put(ptr) }
}

// GetFloat64Slice retrieves a zeroed float64 slice of the given length.
//
// The caller must call the returned cleanup function to return the slice to
// the pool, and must not use the slice afterwards.
//
// Example:
//
//	sums, cleanup := pool.GetFloat64Slice(strides * groups)
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	return getSlice[float64](&float64SlicePool, size)
}

// GetIntSlice retrieves a zeroed int slice of the given length.
//
// The caller must call the returned cleanup function to return the slice to
// the pool.
func GetIntSlice(size int) ([]int, func()) {
	return getSlice[int](&intSlicePool, size)
}
