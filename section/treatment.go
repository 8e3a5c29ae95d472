package section

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/mkit/errs"
)

// Treatment is the one-byte descriptor recording which optional sub-transforms
// the log conditioner applied.
//
// Bit 0 is set when the input had negative values (a sign mask follows the
// header), bit 1 when it had exact zeros (a zero mask follows). Bits 2-7 are
// reserved and must be zero.
type Treatment uint8

const (
	TreatmentNegative Treatment = 1 << 0 // TreatmentNegative marks a stored sign mask.
	TreatmentZero     Treatment = 1 << 1 // TreatmentZero marks a stored zero mask.

	treatmentReservedMask = 0xFC
	// legacyTreatmentMask covers descriptors packed most-significant flag first,
	// where the negative flag sits in bit 7 and the zero flag in bit 6.
	legacyTreatmentMask = 0xC0
)

// NewTreatment packs the two conditioning flags into a descriptor.
func NewTreatment(hasNeg, hasZero bool) Treatment {
	return Treatment(Pack8([8]bool{hasNeg, hasZero}))
}

// HasNegative reports whether a sign mask is present.
func (t Treatment) HasNegative() bool {
	return Unpack8(byte(t))[0]
}

// HasZero reports whether a zero mask is present.
func (t Treatment) HasZero() bool {
	return Unpack8(byte(t))[1]
}

// Validate checks that no reserved bit is set.
func (t Treatment) Validate() error {
	if t&treatmentReservedMask != 0 {
		return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidTreatment, uint8(t))
	}

	return nil
}

func (t Treatment) String() string {
	return fmt.Sprintf("Treatment{negative: %t, zero: %t}", t.HasNegative(), t.HasZero())
}

// ParseTreatment decodes a stored descriptor byte.
//
// Descriptors written with the flags packed most-significant first (0x40, 0x80
// and 0xC0) are accepted and mapped onto the current layout.
//
// Returns:
//   - Treatment: The decoded descriptor
//   - error: ErrInvalidTreatment if reserved bits are set
func ParseTreatment(b byte) (Treatment, error) {
	t := Treatment(b)
	if t.Validate() == nil {
		return t, nil
	}
	if b&^legacyTreatmentMask == 0 {
		return Treatment(bits.Reverse8(b)), nil
	}

	return 0, fmt.Errorf("%w: 0x%02x", errs.ErrInvalidTreatment, b)
}
