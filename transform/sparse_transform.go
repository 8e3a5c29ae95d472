package transform

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ajroetker/go-highway/hwy"

	"github.com/arloliu/mkit/bitvec"
	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/internal/parallel"
	"github.com/arloliu/mkit/internal/pool"
	"github.com/arloliu/mkit/internal/vecmath"
	"github.com/arloliu/mkit/meta"
	"github.com/arloliu/mkit/section"
)

// putValue writes v at the start of dst, which has room for one element.
func putValue[T hwy.Floats](dst []byte, v T) {
	engine := endian.GetLittleEndianEngine()
	if vecmath.IsFloat32[T]() {
		endian.AppendFloat32(engine, dst[:0], float32(v))
		return
	}
	endian.AppendFloat64(engine, dst[:0], float64(v))
}

func getValue[T hwy.Floats](src []byte) T {
	engine := endian.GetLittleEndianEngine()
	if vecmath.IsFloat32[T]() {
		return T(endian.Float32(engine, src))
	}

	return T(endian.Float64(engine, src))
}

// exclusiveScan replaces counts with their exclusive prefix sums and returns
// the total.
func exclusiveScan(counts []int) int {
	total := 0
	for i, c := range counts {
		counts[i] = total
		total += c
	}

	return total
}

// BitmaskZero encodes input into slot, eliding every value with |x| <= eps.
//
// The SparseMeta blob holds a mask with a set bit per elided position followed
// by the remaining values in their original order, in the precision of T. NaN
// values are kept. The input is not modified.
//
// Parameters:
//   - input: Values to encode
//   - slot: Empty metadata slot that receives the SparseMeta blob
//   - opts: WithEpsilon, WithWorkers, WithMinStrideLen, WithPool, WithLogger, WithMaxMetaSize
//
// Returns:
//   - error: ErrNilMeta, ErrAlreadyInitialized or ErrAllocationFailure
func BitmaskZero[T hwy.Floats](input []T, slot *meta.Blob, opts ...Option) error {
	if slot == nil {
		return errs.ErrNilMeta
	}
	if !slot.IsEmpty() {
		return errs.ErrAlreadyInitialized
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}

	r := cfg.runner()
	n := len(input)
	eps := cfg.eps
	mask := bitvec.New(n)
	ranges := r.Ranges(n, 64)
	offsets, release := pool.GetIntSlice(len(ranges))
	defer release()

	r.Each(ranges, func(s int, rg parallel.Range) {
		kept := 0
		for i := rg.Lo; i < rg.Hi; i++ {
			if math.Abs(float64(input[i])) <= eps {
				mask.WriteBit(i, true)
			} else {
				kept++
			}
		}
		offsets[s] = kept
	})
	nonZero := exclusiveScan(offsets)

	hdr := section.SparseHeader{
		Precision: vecmath.ElementType[T](),
		Total:     uint64(n),
		NonZero:   uint64(nonZero),
	}
	m, err := cfg.allocMeta(hdr.EncodedLen())
	if err != nil {
		return err
	}
	hdr.AppendBytes(m[:0])
	mask.PutBytes(m[section.SparseHeaderSize:])

	size := vecmath.ElemSize[T]()
	values := m[hdr.ValuesOffset():]
	r.Each(ranges, func(s int, rg parallel.Range) {
		pos := offsets[s] * size
		for i := rg.Lo; i < rg.Hi; i++ {
			if !mask.ReadBit(i) {
				putValue(values[pos:], input[i])
				pos += size
			}
		}
	})

	slot.Set(m)
	cfg.logger.Debug("bitmask zero applied",
		slog.Int("len", n),
		slog.Int("nonzero", nonZero),
		slog.Float64("eps", eps),
		slog.Int("meta_bytes", len(m)))

	return nil
}

// InvBitmaskZero decodes a SparseMeta blob into a freshly allocated buffer.
// Elided positions decode as exactly 0.
//
// Returns:
//   - []T: The decoded values
//   - error: ErrUnsupportedType if the blob was encoded in the other
//     precision, ErrInvalidMetaSize for a truncated blob, ErrCorruptMeta when
//     the mask disagrees with the stored counts, or ErrAllocationFailure
func InvBitmaskZero[T hwy.Floats](m []byte, opts ...Option) ([]T, error) {
	hdr, err := section.ParseSparseHeader(m)
	if err != nil {
		return nil, err
	}
	if want := vecmath.ElementType[T](); hdr.Precision != want {
		return nil, fmt.Errorf("%w: metadata holds %s values, decoding as %s",
			errs.ErrUnsupportedType, hdr.Precision, want)
	}
	if need := hdr.EncodedLen(); uint64(len(m)) < need {
		return nil, fmt.Errorf("%w: sparse metadata needs %d bytes, got %d", errs.ErrInvalidMetaSize, need, len(m))
	}
	if hdr.Total > math.MaxInt {
		return nil, fmt.Errorf("%w: %d elements", errs.ErrAllocationFailure, hdr.Total)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	n := int(hdr.Total)
	var mask bitvec.BitVector
	mask.Resize(n)
	if err := mask.LoadFromBytes(m[section.SparseHeaderSize:]); err != nil {
		return nil, err
	}
	if zeros := uint64(mask.CountOnes()); zeros != hdr.Total-hdr.NonZero {
		return nil, fmt.Errorf("%w: mask flags %d elided values, header implies %d",
			errs.ErrCorruptMeta, zeros, hdr.Total-hdr.NonZero)
	}

	out, err := allocSlice[T](n)
	if err != nil {
		return nil, err
	}

	r := cfg.runner()
	ranges := r.Ranges(n, 64)
	offsets, release := pool.GetIntSlice(len(ranges))
	defer release()

	for s, rg := range ranges {
		offsets[s] = rg.Len() - mask.CountOnesInRange(rg.Lo, rg.Hi)
	}
	exclusiveScan(offsets)

	size := vecmath.ElemSize[T]()
	values := m[hdr.ValuesOffset():]
	r.Each(ranges, func(s int, rg parallel.Range) {
		pos := offsets[s] * size
		for i := rg.Lo; i < rg.Hi; i++ {
			if mask.ReadBit(i) {
				continue
			}
			out[i] = getValue[T](values[pos:])
			pos += size
		}
	})

	return out, nil
}

// RetrieveBitmaskZeroBufLen returns the byte length of the SparseMeta blob
// that starts at m, reading only its header. Persisting exactly that many
// bytes keeps the blob decodable.
func RetrieveBitmaskZeroBufLen(m []byte) (uint64, error) {
	hdr, err := section.ParseSparseHeader(m)
	if err != nil {
		return 0, err
	}

	return hdr.EncodedLen(), nil
}

// RetrieveBitmaskZeroElemCount returns the number of elements encoded in the
// SparseMeta blob m.
func RetrieveBitmaskZeroElemCount(m []byte) (uint64, error) {
	hdr, err := section.ParseSparseHeader(m)
	if err != nil {
		return 0, err
	}

	return hdr.Total, nil
}
