package section

import (
	"fmt"

	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
)

// LogHeader is the fixed 9-byte prefix of a LogMeta blob.
//
//	Bytes | Field     | Type
//	------|-----------|------
//	0-7   | BufLen    | u64
//	8     | Treatment | u8
//	9-    | sign mask (iff negative), then zero mask (iff zero)
type LogHeader struct {
	// BufLen is the number of elements in the conditioned buffer.
	BufLen uint64
	// Treatment records which masks follow the header.
	Treatment Treatment
}

// MaskSize returns the byte size of one mask.
func (h LogHeader) MaskSize() uint64 {
	return MaskBytes(h.BufLen)
}

// MetaLen returns the total blob length implied by the header.
func (h LogHeader) MetaLen() uint64 {
	n := uint64(LogHeaderSize)
	if h.Treatment.HasNegative() {
		n += h.MaskSize()
	}
	if h.Treatment.HasZero() {
		n += h.MaskSize()
	}

	return n
}

// SignMaskOffset returns the byte offset of the sign mask.
func (h LogHeader) SignMaskOffset() uint64 {
	return LogHeaderSize
}

// ZeroMaskOffset returns the byte offset of the zero mask, which follows the
// sign mask when one is present.
func (h LogHeader) ZeroMaskOffset() uint64 {
	if h.Treatment.HasNegative() {
		return LogHeaderSize + h.MaskSize()
	}

	return LogHeaderSize
}

// AppendBytes appends the serialised header to dst.
func (h LogHeader) AppendBytes(dst []byte) []byte {
	dst = endian.GetLittleEndianEngine().AppendUint64(dst, h.BufLen)
	return append(dst, byte(h.Treatment))
}

// ParseLogHeader parses the header at the start of a LogMeta blob.
//
// Only the header is validated; use MetaLen to check the blob length.
//
// Returns:
//   - LogHeader: Parsed header
//   - error: ErrInvalidMetaSize if data is shorter than 9 bytes, or
//     ErrInvalidTreatment for reserved treatment bits
func ParseLogHeader(data []byte) (LogHeader, error) {
	if len(data) < LogHeaderSize {
		return LogHeader{}, fmt.Errorf("%w: log header needs %d bytes, got %d",
			errs.ErrInvalidMetaSize, LogHeaderSize, len(data))
	}

	t, err := ParseTreatment(data[LogTreatmentIndex])
	if err != nil {
		return LogHeader{}, err
	}

	return LogHeader{
		BufLen:    endian.GetLittleEndianEngine().Uint64(data[:LogLenFieldSize]),
		Treatment: t,
	}, nil
}
