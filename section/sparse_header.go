package section

import (
	"fmt"

	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
)

// maxSparseElements bounds Total so every derived byte length fits in uint64.
const maxSparseElements = 1 << 60

// SparseHeader is the fixed 17-byte prefix of a SparseMeta blob.
//
//	Bytes | Field     | Type
//	------|-----------|------
//	0     | Precision | u8 (0 = float64, 1 = float32)
//	1-8   | Total     | u64
//	9-16  | NonZero   | u64
//	17-   | zero mask (MaskBytes(Total)), then NonZero values
type SparseHeader struct {
	Precision format.ElementType
	Total     uint64
	NonZero   uint64
}

// MaskSize returns the byte size of the near-zero mask.
func (h SparseHeader) MaskSize() uint64 {
	return MaskBytes(h.Total)
}

// ValuesOffset returns the byte offset of the first stored value.
func (h SparseHeader) ValuesOffset() uint64 {
	return SparseHeaderSize + h.MaskSize()
}

// EncodedLen returns the total blob length implied by the header.
func (h SparseHeader) EncodedLen() uint64 {
	return h.ValuesOffset() + h.NonZero*uint64(h.Precision.Size())
}

// Validate checks the precision flag and the element counts.
func (h SparseHeader) Validate() error {
	if !h.Precision.IsValid() {
		return fmt.Errorf("%w: sparse precision flag %d", errs.ErrUnsupportedType, uint8(h.Precision))
	}
	if h.Total > maxSparseElements {
		return fmt.Errorf("%w: sparse element count %d", errs.ErrCorruptMeta, h.Total)
	}
	if h.NonZero > h.Total {
		return fmt.Errorf("%w: %d nonzero values out of %d elements", errs.ErrCorruptMeta, h.NonZero, h.Total)
	}

	return nil
}

// AppendBytes appends the serialised header to dst.
func (h SparseHeader) AppendBytes(dst []byte) []byte {
	engine := endian.GetLittleEndianEngine()
	dst = append(dst, byte(h.Precision))
	dst = engine.AppendUint64(dst, h.Total)

	return engine.AppendUint64(dst, h.NonZero)
}

// ParseSparseHeader parses and validates the header of a SparseMeta blob.
// The payload is not inspected.
//
// Returns:
//   - SparseHeader: Parsed header
//   - error: ErrInvalidMetaSize, ErrUnsupportedType or ErrCorruptMeta
func ParseSparseHeader(data []byte) (SparseHeader, error) {
	if len(data) < SparseHeaderSize {
		return SparseHeader{}, fmt.Errorf("%w: sparse header needs %d bytes, got %d",
			errs.ErrInvalidMetaSize, SparseHeaderSize, len(data))
	}

	engine := endian.GetLittleEndianEngine()
	h := SparseHeader{
		Precision: format.ElementType(data[SparsePrecisionIndex]),
		Total:     engine.Uint64(data[SparseTotalOffset:SparseNonZeroOffset]),
		NonZero:   engine.Uint64(data[SparseNonZeroOffset:SparseHeaderSize]),
	}
	if err := h.Validate(); err != nil {
		return SparseHeader{}, err
	}

	return h, nil
}
