// Package bitvec provides BitVector, a fixed-length bit store addressed by
// 64-bit words.
//
// BitVector is the mask primitive behind the log conditioner's sign and zero
// masks and the sparse codec's near-zero mask. Bit i lives in word i/64 at bit
// position i%64, and words serialise little-endian, so the in-memory layout is
// exactly the on-disk layout of a mask.
//
// The bit accessors do no range checking of their own; callers size the vector
// before use. Distinct words may be written from distinct goroutines without
// synchronization, which is what the parallel transforms rely on when they
// partition a buffer on 64-element boundaries.
package bitvec

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
)

// BitVector is a fixed-length sequence of bits backed by uint64 words.
type BitVector struct {
	words   []uint64
	numBits int
}

// NumWords returns the number of 64-bit words needed to hold nbits bits.
func NumWords(nbits int) int {
	return (nbits + 63) / 64
}

// NumBytes returns the serialised size in bytes of an nbits-bit vector.
func NumBytes(nbits int) int {
	return NumWords(nbits) * 8
}

// New creates a BitVector of nbits bits, all false.
func New(nbits int) *BitVector {
	bv := &BitVector{}
	bv.Resize(nbits)
	bv.Reset()

	return bv
}

// Len returns the number of bits.
func (bv *BitVector) Len() int {
	return bv.numBits
}

// NumWords returns the number of backing words.
func (bv *BitVector) NumWords() int {
	return len(bv.words)
}

// Resize changes the bit count to nbits.
//
// The word storage is reused when it is large enough. Bit contents after a
// resize are unspecified; call Reset or SetAllTrue before relying on them.
func (bv *BitVector) Resize(nbits int) {
	n := NumWords(nbits)
	if cap(bv.words) >= n {
		bv.words = bv.words[:n]
	} else {
		bv.words = make([]uint64, n)
	}
	bv.numBits = nbits
}

// Reset sets every bit to false.
func (bv *BitVector) Reset() {
	clear(bv.words)
}

// SetAllTrue sets every bit to true, including the padding bits of the last
// word.
func (bv *BitVector) SetAllTrue() {
	for i := range bv.words {
		bv.words[i] = math.MaxUint64
	}
}

// ReadBit returns bit i.
func (bv *BitVector) ReadBit(i int) bool {
	return bv.words[i>>6]&(uint64(1)<<(uint(i)&63)) != 0
}

// WriteBit sets bit i to b.
func (bv *BitVector) WriteBit(i int, b bool) {
	mask := uint64(1) << (uint(i) & 63)
	if b {
		bv.words[i>>6] |= mask
	} else {
		bv.words[i>>6] &^= mask
	}
}

// ReadWord returns word i.
func (bv *BitVector) ReadWord(i int) uint64 {
	return bv.words[i]
}

// WriteWord sets word i to w.
func (bv *BitVector) WriteWord(i int, w uint64) {
	bv.words[i] = w
}

// Words returns the backing words. The caller must not modify the slice.
func (bv *BitVector) Words() []uint64 {
	return bv.words
}

// LoadFromBytes overwrites every word from a little-endian byte stream.
//
// p must hold at least NumWords()*8 bytes; extra trailing bytes are ignored.
//
// Returns:
//   - error: ErrInvalidMetaSize if p is too short
func (bv *BitVector) LoadFromBytes(p []byte) error {
	need := len(bv.words) * 8
	if len(p) < need {
		return fmt.Errorf("%w: mask needs %d bytes, got %d", errs.ErrInvalidMetaSize, need, len(p))
	}
	endian.ReadWords(endian.GetLittleEndianEngine(), bv.words, p[:need])

	return nil
}

// AppendBytes appends the little-endian serialisation of the words to dst.
func (bv *BitVector) AppendBytes(dst []byte) []byte {
	engine := endian.GetLittleEndianEngine()
	for _, w := range bv.words {
		dst = engine.AppendUint64(dst, w)
	}

	return dst
}

// PutBytes writes the little-endian serialisation of the words into dst,
// which must hold at least NumWords()*8 bytes.
func (bv *BitVector) PutBytes(dst []byte) {
	endian.PutWords(endian.GetLittleEndianEngine(), dst, bv.words)
}

// CountOnes returns the number of true bits among the first Len() bits.
// Padding bits past Len() are not counted.
func (bv *BitVector) CountOnes() int {
	if bv.numBits == 0 {
		return 0
	}

	full := bv.numBits >> 6
	count := 0
	for _, w := range bv.words[:full] {
		count += bits.OnesCount64(w)
	}
	if rem := uint(bv.numBits) & 63; rem != 0 {
		count += bits.OnesCount64(bv.words[full] & (uint64(1)<<rem - 1))
	}

	return count
}

// CountOnesInRange returns the number of true bits in [lo, hi).
// lo must be a multiple of 64.
func (bv *BitVector) CountOnesInRange(lo, hi int) int {
	count := 0
	i := lo
	for ; i+64 <= hi; i += 64 {
		count += bits.OnesCount64(bv.words[i>>6])
	}
	if i < hi {
		count += bits.OnesCount64(bv.words[i>>6] & (uint64(1)<<uint(hi-i) - 1))
	}

	return count
}
