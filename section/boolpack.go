package section

import (
	"encoding/binary"
	"math/bits"
	"unsafe"
)

const (
	// packMagic places byte j of a multiplicand at bit offset 9j, which lines
	// up one bit of every byte in the top byte of the product.
	packMagic = 0x8040201008040201
	// unpackMask keeps the high bit of every byte after the unpack multiply.
	unpackMask = 0x8080808080808080
)

// Pack8 encodes eight flags into one byte. Bit i of the result is 1 iff
// flags[i] is true.
//
// The multiply gathers the flags most-significant first, so the result is
// bit-reversed to keep flag i at bit i.
func Pack8(flags [8]bool) byte {
	// A Go bool occupies one byte holding 0 or 1.
	raw := (*[8]byte)(unsafe.Pointer(&flags))
	t := binary.LittleEndian.Uint64(raw[:])

	return bits.Reverse8(byte((packMagic * t) >> 56))
}

// Unpack8 decodes a byte produced by Pack8 back into eight flags.
// Unpack8(Pack8(f)) == f and Pack8(Unpack8(b)) == b for every input.
func Unpack8(b byte) [8]bool {
	t := ((packMagic * uint64(bits.Reverse8(b))) & unpackMask) >> 7

	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], t)

	var flags [8]bool
	for i, v := range raw {
		flags[i] = v != 0
	}

	return flags
}
