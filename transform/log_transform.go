package transform

import (
	"fmt"
	"log/slog"

	"github.com/ajroetker/go-highway/hwy"

	"github.com/arloliu/mkit/bitvec"
	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/internal/parallel"
	"github.com/arloliu/mkit/internal/vecmath"
	"github.com/arloliu/mkit/meta"
	"github.com/arloliu/mkit/section"
)

// signFlags is the accumulator of the treatment scan.
type signFlags struct {
	neg, zero bool
}

func scanSigns[T hwy.Floats](r parallel.Runner, buf []T) signFlags {
	return parallel.Reduce(r, len(buf), 1,
		func() signFlags { return signFlags{} },
		func(lo, hi int, acc signFlags) signFlags {
			for _, v := range buf[lo:hi] {
				if v < 0 {
					acc.neg = true
				} else if v == 0 {
					acc.zero = true
				}
				if acc.neg && acc.zero {
					break
				}
			}

			return acc
		},
		func(dst, src signFlags) signFlags {
			return signFlags{neg: dst.neg || src.neg, zero: dst.zero || src.zero}
		},
	)
}

// SmartLog replaces every element of buf with the natural logarithm of its
// magnitude and records in slot what is needed to undo it.
//
// Negative elements are stored as their absolute value and their positions are
// cleared in a sign mask. Exact zeros (including -0.0) are left as 0 and their
// positions are set in a zero mask. Each mask is only written when the buffer
// contains at least one such element.
//
// Parameters:
//   - buf: Values to condition, modified in place
//   - slot: Empty metadata slot that receives the LogMeta blob
//   - opts: WithWorkers, WithMinStrideLen, WithPool, WithLogger, WithMaxMetaSize
//
// Returns:
//   - error: ErrNilMeta, ErrAlreadyInitialized or ErrAllocationFailure; buf is
//     not modified when an error is returned
func SmartLog[T hwy.Floats](buf []T, slot *meta.Blob, opts ...Option) error {
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
	n := len(buf)
	flags := scanSigns(r, buf)

	hdr := section.LogHeader{
		BufLen:    uint64(n),
		Treatment: section.NewTreatment(flags.neg, flags.zero),
	}
	m, err := cfg.allocMeta(hdr.MetaLen())
	if err != nil {
		return err
	}
	hdr.AppendBytes(m[:0])

	if flags.neg {
		sign := bitvec.New(n)
		sign.SetAllTrue()
		r.For(n, 64, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if buf[i] < 0 {
					sign.WriteBit(i, false)
					buf[i] = -buf[i]
				}
			}
		})
		sign.PutBytes(m[hdr.SignMaskOffset():])
	}

	if flags.zero {
		zero := bitvec.New(n)
		r.For(n, 64, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if buf[i] == 0 {
					zero.WriteBit(i, true)
				}
			}
			vecmath.Log(buf[lo:hi])
			for i := lo; i < hi; i++ {
				if zero.ReadBit(i) {
					buf[i] = 0
				}
			}
		})
		zero.PutBytes(m[hdr.ZeroMaskOffset():])
	} else {
		r.For(n, 1, func(lo, hi int) {
			vecmath.Log(buf[lo:hi])
		})
	}

	slot.Set(m)
	cfg.logger.Debug("smart log applied",
		slog.Int("len", n),
		slog.String("treatment", hdr.Treatment.String()),
		slog.Int("meta_bytes", len(m)))

	return nil
}

// SmartExp reverses SmartLog using the LogMeta blob m.
//
// Returns:
//   - error: ErrLengthMismatch if m describes a buffer of another length,
//     ErrInvalidMetaSize or ErrInvalidTreatment for malformed metadata; buf is
//     not modified when an error is returned
func SmartExp[T hwy.Floats](buf []T, m []byte, opts ...Option) error {
	hdr, err := section.ParseLogHeader(m)
	if err != nil {
		return err
	}
	if hdr.BufLen != uint64(len(buf)) {
		return fmt.Errorf("%w: metadata describes %d elements, buffer holds %d",
			errs.ErrLengthMismatch, hdr.BufLen, len(buf))
	}
	if need := hdr.MetaLen(); uint64(len(m)) < need {
		return fmt.Errorf("%w: log metadata needs %d bytes, got %d", errs.ErrInvalidMetaSize, need, len(m))
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}

	n := len(buf)
	hasNeg, hasZero := hdr.Treatment.HasNegative(), hdr.Treatment.HasZero()

	var sign, zero bitvec.BitVector
	if hasNeg {
		sign.Resize(n)
		if err := sign.LoadFromBytes(m[hdr.SignMaskOffset():]); err != nil {
			return err
		}
	}
	if hasZero {
		zero.Resize(n)
		if err := zero.LoadFromBytes(m[hdr.ZeroMaskOffset():]); err != nil {
			return err
		}
	}

	cfg.runner().For(n, 64, func(lo, hi int) {
		vecmath.Exp(buf[lo:hi])
		if hasZero {
			for i := lo; i < hi; i++ {
				if zero.ReadBit(i) {
					buf[i] = 0
				}
			}
		}
		if hasNeg {
			for i := lo; i < hi; i++ {
				if !sign.ReadBit(i) {
					buf[i] = -buf[i]
				}
			}
		}
	})

	return nil
}

// CalcLogMetaLen returns the LogMeta length for a buffer of bufLen elements
// conditioned with treatment t.
func CalcLogMetaLen(bufLen uint64, t section.Treatment) uint64 {
	return section.LogHeader{BufLen: bufLen, Treatment: t}.MetaLen()
}

// RetrieveLogMetaLen returns the total length of the LogMeta blob that starts
// at m, reading only its header.
func RetrieveLogMetaLen(m []byte) (uint64, error) {
	hdr, err := section.ParseLogHeader(m)
	if err != nil {
		return 0, err
	}

	return hdr.MetaLen(), nil
}
