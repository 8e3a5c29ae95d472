package transform

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ajroetker/go-highway/hwy"

	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
	"github.com/arloliu/mkit/internal/parallel"
	"github.com/arloliu/mkit/meta"
	"github.com/arloliu/mkit/section"
)

// Dims are the extents of a 3D volume. Fast is the contiguous axis.
type Dims struct {
	Fast, Mid, Slow int
}

// Len returns the number of elements in the volume.
func (d Dims) Len() int {
	return d.Fast * d.Mid * d.Slow
}

// Validate checks that every extent is positive and that the volume size is
// representable.
func (d Dims) Validate() error {
	if d.Fast < 1 || d.Mid < 1 || d.Slow < 1 {
		return fmt.Errorf("%w: %dx%dx%d", errs.ErrInvalidDims, d.Fast, d.Mid, d.Slow)
	}
	if d.Mid > math.MaxInt/d.Fast || d.Slow > math.MaxInt/(d.Fast*d.Mid) {
		return fmt.Errorf("%w: %dx%dx%d overflows", errs.ErrInvalidDims, d.Fast, d.Mid, d.Slow)
	}

	return nil
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.Fast, d.Mid, d.Slow)
}

// grouping maps an element index to its normalization group.
type grouping struct {
	gran  format.Granularity
	fast  int
	plane int
}

func newGrouping(d Dims, g format.Granularity) grouping {
	return grouping{gran: g, fast: d.Fast, plane: d.Fast * d.Mid}
}

func (g grouping) groups(d Dims) int {
	if g.gran == format.GranularitySlice {
		return d.Slow
	}

	return d.Fast
}

func (g grouping) index(i int) int {
	if g.gran == format.GranularitySlice {
		return i / g.plane
	}

	return i % g.fast
}

func checkVolume[T hwy.Floats](buf []T, d Dims) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.Len() != len(buf) {
		return fmt.Errorf("%w: volume %s holds %d elements, buffer holds %d",
			errs.ErrLengthMismatch, d, d.Len(), len(buf))
	}

	return nil
}

// groupSums accumulates term(i) per group into out. Every stride sums into a
// private row of slab, which holds len(ranges)*len(out) elements; rows are
// merged in stride order afterwards.
func groupSums(r parallel.Runner, ranges []parallel.Range, slab []float64, g grouping, out []float64, term func(i int) float64) {
	groups := len(out)
	clear(slab)

	r.Each(ranges, func(s int, rg parallel.Range) {
		acc := slab[s*groups : (s+1)*groups]
		for i := rg.Lo; i < rg.Hi; i++ {
			acc[g.index(i)] += term(i)
		}
	})

	clear(out)
	for s := range ranges {
		for k, v := range slab[s*groups : (s+1)*groups] {
			out[k] += v
		}
	}
}

// SliceNorm normalizes a 3D volume in place to zero mean and unit RMS per
// group and records each group's (mean, rms) in slot.
//
// With the default column granularity a group is every element sharing a
// fast-axis index. WithGranularity(format.GranularitySlice) groups by the
// slow-axis index instead. A volume with Slow == 1 is left untouched and gets
// a 4-byte blob without statistics.
//
// Parameters:
//   - buf: Volume data, fast axis contiguous, modified in place
//   - dims: Volume extents; dims.Len() must equal len(buf)
//   - slot: Empty metadata slot that receives the NormMeta blob
//   - opts: WithGranularity, WithWorkers, WithMinStrideLen, WithPool, WithLogger, WithMaxMetaSize
//
// Returns:
//   - error: ErrNilMeta, ErrAlreadyInitialized, ErrInvalidDims,
//     ErrLengthMismatch or ErrAllocationFailure; buf is not modified when an
//     error is returned
func SliceNorm[T hwy.Floats](buf []T, dims Dims, slot *meta.Blob, opts ...Option) error {
	if slot == nil {
		return errs.ErrNilMeta
	}
	if !slot.IsEmpty() {
		return errs.ErrAlreadyInitialized
	}
	if err := checkVolume(buf, dims); err != nil {
		return err
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}

	if dims.Slow == 1 {
		hdr, _ := section.NewNormHeader(0)
		slot.Set(hdr.AppendBytes(make([]byte, 0, section.NormLenFieldSize)))
		cfg.logger.Debug("slice norm skipped for 2D volume", slog.String("dims", dims.String()))

		return nil
	}

	g := newGrouping(dims, cfg.granularity)
	groups := g.groups(dims)
	hdr, err := section.NewNormHeader(groups)
	if err != nil {
		return err
	}
	m, err := cfg.allocMeta(uint64(hdr.Len))
	if err != nil {
		return err
	}

	r := cfg.runner()
	n := len(buf)
	ranges := r.Ranges(n, 1)
	slab, release, err := cfg.allocScratch(uint64(len(ranges)) * uint64(groups))
	if err != nil {
		return err
	}
	defer release()

	count := float64(n / groups)
	mean := make([]float64, groups)
	rms := make([]float64, groups)

	groupSums(r, ranges, slab, g, mean, func(i int) float64 { return float64(buf[i]) })
	for k := range mean {
		mean[k] /= count
	}

	r.For(n, 1, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			buf[i] = T(float64(buf[i]) - mean[g.index(i)])
		}
	})

	groupSums(r, ranges, slab, g, rms, func(i int) float64 {
		v := float64(buf[i])
		return v * v
	})
	for k := range rms {
		rms[k] = math.Sqrt(rms[k] / count)
		if rms[k] == 0 {
			rms[k] = 1
		}
	}

	r.For(n, 1, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			buf[i] = T(float64(buf[i]) / rms[g.index(i)])
		}
	})

	engine := endian.GetLittleEndianEngine()
	out := hdr.AppendBytes(m[:0])
	for k := range groups {
		out = endian.AppendFloat64(engine, out, mean[k])
		out = endian.AppendFloat64(engine, out, rms[k])
	}

	slot.Set(m)
	cfg.logger.Debug("slice norm applied",
		slog.String("dims", dims.String()),
		slog.String("granularity", cfg.granularity.String()),
		slog.Int("groups", groups),
		slog.Int("meta_bytes", len(m)))

	return nil
}

// InvSliceNorm reverses SliceNorm using the NormMeta blob m. The granularity
// option must match the one used by the forward transform.
//
// Returns:
//   - error: ErrInvalidDims, ErrLengthMismatch, or ErrInvalidMetaSize when
//     m does not describe the volume's group count; buf is not modified when
//     an error is returned
func InvSliceNorm[T hwy.Floats](buf []T, dims Dims, m []byte, opts ...Option) error {
	if err := checkVolume(buf, dims); err != nil {
		return err
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}

	hdr, err := section.ParseNormHeader(m)
	if err != nil {
		return err
	}
	if dims.Slow == 1 || hdr.IsDegenerate() {
		if dims.Slow != 1 || !hdr.IsDegenerate() {
			return fmt.Errorf("%w: %d-byte normalization header does not match volume %s",
				errs.ErrInvalidMetaSize, hdr.Len, dims)
		}

		return nil
	}

	g := newGrouping(dims, cfg.granularity)
	groups := g.groups(dims)
	if hdr.Groups() != groups {
		return fmt.Errorf("%w: metadata holds %d groups, %s granularity of %s needs %d",
			errs.ErrInvalidMetaSize, hdr.Groups(), cfg.granularity, dims, groups)
	}

	engine := endian.GetLittleEndianEngine()
	mean := make([]float64, groups)
	rms := make([]float64, groups)
	p := m[section.NormLenFieldSize:]
	for k := range groups {
		mean[k] = endian.Float64(engine, p[k*section.NormPairSize:])
		rms[k] = endian.Float64(engine, p[k*section.NormPairSize+8:])
	}

	cfg.runner().For(len(buf), 1, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			k := g.index(i)
			buf[i] = T(float64(buf[i])*rms[k] + mean[k])
		}
	})

	return nil
}

// RetrieveSliceNormMetaLen returns the total length of the NormMeta blob that
// starts at m, reading only its 4-byte header.
func RetrieveSliceNormMetaLen(m []byte) (uint32, error) {
	if len(m) < section.NormLenFieldSize {
		return 0, fmt.Errorf("%w: normalization header needs %d bytes, got %d",
			errs.ErrInvalidMetaSize, section.NormLenFieldSize, len(m))
	}

	hdr := section.NormHeader{Len: endian.GetLittleEndianEngine().Uint32(m)}
	if err := hdr.Validate(); err != nil {
		return 0, err
	}

	return hdr.Len, nil
}
