package section

import (
	"fmt"
	"math"

	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
)

// NormHeader is the 4-byte length prefix of a NormMeta blob.
//
// Len counts itself, so a degenerate (2D) blob is exactly the value 4 and a
// full blob is 4 + 16 bytes per group of (mean, rms) float64 pairs.
type NormHeader struct {
	Len uint32
}

// NewNormHeader returns the header for a blob holding groups pairs.
//
// Returns:
//   - NormHeader: The header
//   - error: ErrInvalidDims if the blob length does not fit in 32 bits
func NewNormHeader(groups int) (NormHeader, error) {
	n := uint64(NormLenFieldSize) + uint64(groups)*NormPairSize
	if groups < 0 || n > math.MaxUint32 {
		return NormHeader{}, fmt.Errorf("%w: %d groups exceed the normalization header limit",
			errs.ErrInvalidDims, groups)
	}

	return NormHeader{Len: uint32(n)}, nil
}

// Groups returns the number of (mean, rms) pairs that follow the header.
func (h NormHeader) Groups() int {
	return int((h.Len - NormLenFieldSize) / NormPairSize)
}

// IsDegenerate reports whether the blob carries no statistics.
func (h NormHeader) IsDegenerate() bool {
	return h.Len == NormLenFieldSize
}

// Validate checks that Len describes a whole number of pairs.
func (h NormHeader) Validate() error {
	if h.Len < NormLenFieldSize || (h.Len-NormLenFieldSize)%NormPairSize != 0 {
		return fmt.Errorf("%w: normalization header length %d", errs.ErrInvalidMetaSize, h.Len)
	}

	return nil
}

// AppendBytes appends the serialised header to dst.
func (h NormHeader) AppendBytes(dst []byte) []byte {
	return endian.GetLittleEndianEngine().AppendUint32(dst, h.Len)
}

// ParseNormHeader parses and validates the header of a NormMeta blob and
// checks that data holds the whole blob.
//
// Returns:
//   - NormHeader: Parsed header
//   - error: ErrInvalidMetaSize for a malformed or truncated blob
func ParseNormHeader(data []byte) (NormHeader, error) {
	if len(data) < NormLenFieldSize {
		return NormHeader{}, fmt.Errorf("%w: normalization header needs %d bytes, got %d",
			errs.ErrInvalidMetaSize, NormLenFieldSize, len(data))
	}

	h := NormHeader{Len: endian.GetLittleEndianEngine().Uint32(data[:NormLenFieldSize])}
	if err := h.Validate(); err != nil {
		return NormHeader{}, err
	}
	if uint64(len(data)) < uint64(h.Len) {
		return NormHeader{}, fmt.Errorf("%w: normalization blob needs %d bytes, got %d",
			errs.ErrInvalidMetaSize, h.Len, len(data))
	}

	return h, nil
}
