// Package mkit conditions floating-point scientific volumes for compression
// and exactly reverses the conditioning afterwards.
//
// Three reversible transforms are provided, each producing a compact,
// self-describing metadata blob that, together with the transformed data, is
// all its inverse needs:
//
//   - SmartLog / SmartExp: natural logarithm of magnitudes; signs and exact
//     zeros are kept in bitmasks.
//   - SliceNorm / InvSliceNorm: zero mean, unit RMS per column (or per slow-axis
//     slice) of a 3D volume.
//   - BitmaskZero / InvBitmaskZero: elides near-zero values into a bitmask.
//
// # Basic Usage
//
//	values := loadTemperature() // []float32, fast axis contiguous
//	m, err := mkit.SmartLog(values)
//	if err != nil {
//	    return err
//	}
//	// ... compress values, store m next to them ...
//	if err := mkit.SmartExp(values, m); err != nil {
//	    return err
//	}
//
// # Raw Buffers
//
// The *Bytes functions accept raw host-order buffers together with a
// format.ElementType tag, for callers that only know the precision at run
// time (file tools, foreign-function boundaries).
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the transform
// package. Use transform directly to reuse metadata slots, and the record
// package to persist metadata with compression and checksums.
package mkit

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy"

	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
	"github.com/arloliu/mkit/internal/hash"
	"github.com/arloliu/mkit/internal/vecmath"
	"github.com/arloliu/mkit/meta"
	"github.com/arloliu/mkit/section"
	"github.com/arloliu/mkit/transform"
)

// Dims are the extents of a 3D volume; Fast is the contiguous axis.
type Dims = transform.Dims

// Option configures a transform call.
type Option = transform.Option

// SmartLog applies the log conditioner to buf in place and returns its
// metadata.
//
// Example:
//
//	m, err := mkit.SmartLog(values, transform.WithWorkers(4))
func SmartLog[T hwy.Floats](buf []T, opts ...Option) ([]byte, error) {
	var m meta.Blob
	if err := transform.SmartLog(buf, &m, opts...); err != nil {
		return nil, err
	}

	return m.Bytes(), nil
}

// SmartExp reverses SmartLog.
func SmartExp[T hwy.Floats](buf []T, m []byte, opts ...Option) error {
	return transform.SmartExp(buf, m, opts...)
}

// SliceNorm normalizes the volume buf in place and returns its metadata.
func SliceNorm[T hwy.Floats](buf []T, dims Dims, opts ...Option) ([]byte, error) {
	var m meta.Blob
	if err := transform.SliceNorm(buf, dims, &m, opts...); err != nil {
		return nil, err
	}

	return m.Bytes(), nil
}

// InvSliceNorm reverses SliceNorm.
func InvSliceNorm[T hwy.Floats](buf []T, dims Dims, m []byte, opts ...Option) error {
	return transform.InvSliceNorm(buf, dims, m, opts...)
}

// BitmaskZero encodes input with near-zero values elided. The returned blob
// holds the whole encoded buffer.
func BitmaskZero[T hwy.Floats](input []T, opts ...Option) ([]byte, error) {
	var m meta.Blob
	if err := transform.BitmaskZero(input, &m, opts...); err != nil {
		return nil, err
	}

	return m.Bytes(), nil
}

// InvBitmaskZero decodes a BitmaskZero blob.
func InvBitmaskZero[T hwy.Floats](m []byte, opts ...Option) ([]T, error) {
	return transform.InvBitmaskZero[T](m, opts...)
}

// withRaw views data as elements of the tagged type and calls the matching
// function.
func withRaw(data []byte, elem format.ElementType, f32 func([]float32) error, f64 func([]float64) error) error {
	switch elem {
	case format.Float32:
		s, err := vecmath.FromBytes[float32](data)
		if err != nil {
			return err
		}

		return f32(s)
	case format.Float64:
		s, err := vecmath.FromBytes[float64](data)
		if err != nil {
			return err
		}

		return f64(s)
	default:
		return fmt.Errorf("%w: element type tag %d", errs.ErrUnsupportedType, uint8(elem))
	}
}

// SmartLogBytes applies the log conditioner to a raw buffer in place.
//
// Parameters:
//   - data: Host-order float32 or float64 values
//   - elem: Precision of data
//   - opts: Transform options
//
// Returns:
//   - []byte: LogMeta blob
//   - error: ErrUnsupportedType for an unknown tag, ErrLengthMismatch or
//     ErrUnalignedBuffer for a buffer that cannot be viewed as elements, or a
//     transform error
func SmartLogBytes(data []byte, elem format.ElementType, opts ...Option) ([]byte, error) {
	var m []byte
	err := withRaw(data, elem,
		func(s []float32) (err error) {
			m, err = SmartLog(s, opts...)

			return err
		},
		func(s []float64) (err error) {
			m, err = SmartLog(s, opts...)

			return err
		},
	)

	return m, err
}

// SmartExpBytes reverses SmartLogBytes in place.
func SmartExpBytes(data []byte, elem format.ElementType, m []byte, opts ...Option) error {
	return withRaw(data, elem,
		func(s []float32) error { return SmartExp(s, m, opts...) },
		func(s []float64) error { return SmartExp(s, m, opts...) },
	)
}

// SliceNormBytes normalizes a raw volume in place.
func SliceNormBytes(data []byte, elem format.ElementType, dims Dims, opts ...Option) ([]byte, error) {
	var m []byte
	err := withRaw(data, elem,
		func(s []float32) (err error) {
			m, err = SliceNorm(s, dims, opts...)

			return err
		},
		func(s []float64) (err error) {
			m, err = SliceNorm(s, dims, opts...)

			return err
		},
	)

	return m, err
}

// InvSliceNormBytes reverses SliceNormBytes in place.
func InvSliceNormBytes(data []byte, elem format.ElementType, dims Dims, m []byte, opts ...Option) error {
	return withRaw(data, elem,
		func(s []float32) error { return InvSliceNorm(s, dims, m, opts...) },
		func(s []float64) error { return InvSliceNorm(s, dims, m, opts...) },
	)
}

// BitmaskZeroBytes encodes a raw buffer with near-zero values elided.
func BitmaskZeroBytes(data []byte, elem format.ElementType, opts ...Option) ([]byte, error) {
	var m []byte
	err := withRaw(data, elem,
		func(s []float32) (err error) {
			m, err = BitmaskZero(s, opts...)

			return err
		},
		func(s []float64) (err error) {
			m, err = BitmaskZero(s, opts...)

			return err
		},
	)

	return m, err
}

// InvBitmaskZeroBytes decodes a BitmaskZero blob into a raw host-order buffer
// of the precision recorded in the blob.
//
// Returns:
//   - []byte: Decoded values
//   - format.ElementType: Their precision
//   - error: Any error of InvBitmaskZero
func InvBitmaskZeroBytes(m []byte, opts ...Option) ([]byte, format.ElementType, error) {
	hdr, err := section.ParseSparseHeader(m)
	if err != nil {
		return nil, 0, err
	}

	if hdr.Precision == format.Float32 {
		out, err := InvBitmaskZero[float32](m, opts...)
		if err != nil {
			return nil, 0, err
		}

		return vecmath.ToBytes(out), format.Float32, nil
	}

	out, err := InvBitmaskZero[float64](m, opts...)
	if err != nil {
		return nil, 0, err
	}

	return vecmath.ToBytes(out), format.Float64, nil
}

// LogMetaLen returns the length of the LogMeta blob starting at m.
func LogMetaLen(m []byte) (uint64, error) {
	return transform.RetrieveLogMetaLen(m)
}

// SliceNormMetaLen returns the length of the NormMeta blob starting at m.
func SliceNormMetaLen(m []byte) (uint32, error) {
	return transform.RetrieveSliceNormMetaLen(m)
}

// BitmaskZeroLen returns the byte length of the SparseMeta blob starting
// at m.
func BitmaskZeroLen(m []byte) (uint64, error) {
	return transform.RetrieveBitmaskZeroBufLen(m)
}

// BitmaskZeroElemCount returns the number of elements encoded in the
// SparseMeta blob m.
func BitmaskZeroElemCount(m []byte) (uint64, error) {
	return transform.RetrieveBitmaskZeroElemCount(m)
}

// VariableID computes the identifier of a variable name, as used for record
// set keys.
//
// Example:
//
//	id := mkit.VariableID("temperature")
func VariableID(name string) uint64 {
	return hash.ID(name)
}
