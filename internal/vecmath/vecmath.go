// Package vecmath provides generic float helpers shared by the transforms:
// in-place SIMD logarithm and exponential, precision detection, and zero-copy
// views between element slices and raw host-order bytes.
package vecmath

import (
	"fmt"
	"unsafe"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/ajroetker/go-highway/hwy/contrib/algo"

	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
)

// ElemSize returns the width of T in bytes.
func ElemSize[T hwy.Floats]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// IsFloat32 reports whether T is a single precision type.
func IsFloat32[T hwy.Floats]() bool {
	return ElemSize[T]() == 4
}

// ElementType returns the wire tag for T.
func ElementType[T hwy.Floats]() format.ElementType {
	if IsFloat32[T]() {
		return format.Float32
	}

	return format.Float64
}

func asFloat32s[T hwy.Floats](s []T) []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(s))), len(s))
}

func asFloat64s[T hwy.Floats](s []T) []float64 {
	return unsafe.Slice((*float64)(unsafe.Pointer(unsafe.SliceData(s))), len(s))
}

// Log replaces every element of s with its natural logarithm.
func Log[T hwy.Floats](s []T) {
	if len(s) == 0 {
		return
	}
	if IsFloat32[T]() {
		f := asFloat32s(s)
		algo.LogTransform(f, f)

		return
	}
	f := asFloat64s(s)
	algo.LogTransform64(f, f)
}

// Exp replaces every element of s with e raised to it.
func Exp[T hwy.Floats](s []T) {
	if len(s) == 0 {
		return
	}
	if IsFloat32[T]() {
		f := asFloat32s(s)
		algo.ExpTransform(f, f)

		return
	}
	f := asFloat64s(s)
	algo.ExpTransform64(f, f)
}

// FromBytes views a host-order raw buffer as elements of type T without
// copying.
//
// Returns:
//   - []T: Elements sharing memory with b
//   - error: ErrLengthMismatch if len(b) is not a multiple of the element
//     size, ErrUnalignedBuffer if b is not suitably aligned
func FromBytes[T hwy.Floats](b []byte) ([]T, error) {
	size := ElemSize[T]()
	if len(b)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of the %d-byte element size",
			errs.ErrLengthMismatch, len(b), size)
	}
	if len(b) == 0 {
		return []T{}, nil
	}
	if uintptr(unsafe.Pointer(unsafe.SliceData(b)))%uintptr(size) != 0 {
		return nil, errs.ErrUnalignedBuffer
	}

	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/size), nil
}

// ToBytes views elements as host-order raw bytes without copying.
func ToBytes[T hwy.Floats](s []T) []byte {
	if len(s) == 0 {
		return []byte{}
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*ElemSize[T]())
}
