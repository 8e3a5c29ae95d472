package transform

import (
	"math"
	"testing"

	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
	"github.com/arloliu/mkit/meta"
	"github.com/arloliu/mkit/section"
	"github.com/stretchr/testify/require"
)

func volume(d Dims) []float64 {
	buf := make([]float64, d.Len())
	for i := range buf {
		x := i % d.Fast
		buf[i] = float64(x*10) + math.Sin(float64(i))*float64(x+1)
	}

	return buf
}

func readPair(t *testing.T, m []byte, k int) (float64, float64) {
	t.Helper()
	require.GreaterOrEqual(t, len(m), section.NormLenFieldSize+(k+1)*section.NormPairSize)
	engine := endian.GetLittleEndianEngine()
	off := section.NormLenFieldSize + k*section.NormPairSize

	return endian.Float64(engine, m[off:]), endian.Float64(engine, m[off+8:])
}

func TestDimsValidate(t *testing.T) {
	require.NoError(t, Dims{1, 1, 1}.Validate())
	require.ErrorIs(t, Dims{0, 1, 1}.Validate(), errs.ErrInvalidDims)
	require.ErrorIs(t, Dims{2, -1, 1}.Validate(), errs.ErrInvalidDims)
	require.ErrorIs(t, Dims{math.MaxInt / 2, 4, 1}.Validate(), errs.ErrInvalidDims)
	require.Equal(t, "4x3x2", Dims{4, 3, 2}.String())
	require.Equal(t, 24, Dims{4, 3, 2}.Len())
}

func TestSliceNormColumns(t *testing.T) {
	d := Dims{Fast: 4, Mid: 3, Slow: 5}
	src := volume(d)
	buf := append([]float64(nil), src...)

	var m meta.Blob
	require.NoError(t, SliceNorm(buf, d, &m))
	require.Equal(t, 4+16*d.Fast, m.Len())

	n, err := RetrieveSliceNormMetaLen(m.Bytes())
	require.NoError(t, err)
	require.Equal(t, uint32(m.Len()), n)

	count := float64(d.Mid * d.Slow)
	for x := range d.Fast {
		var sum, sq float64
		for i := x; i < len(src); i += d.Fast {
			sum += src[i]
		}
		mean := sum / count
		for i := x; i < len(src); i += d.Fast {
			sq += (src[i] - mean) * (src[i] - mean)
		}

		gotMean, gotRMS := readPair(t, m.Bytes(), x)
		require.InDelta(t, mean, gotMean, 1e-9)
		require.InDelta(t, math.Sqrt(sq/count), gotRMS, 1e-9)

		var nsum, nsq float64
		for i := x; i < len(buf); i += d.Fast {
			nsum += buf[i]
			nsq += buf[i] * buf[i]
		}
		require.InDelta(t, 0, nsum/count, 1e-9)
		require.InDelta(t, 1, math.Sqrt(nsq/count), 1e-9)
	}

	require.NoError(t, InvSliceNorm(buf, d, m.Bytes()))
	for i, v := range src {
		require.InDelta(t, v, buf[i], 1e-9, "index %d", i)
	}
}

func TestSliceNormSlices(t *testing.T) {
	d := Dims{Fast: 8, Mid: 4, Slow: 3}
	src := volume(d)
	buf := append([]float64(nil), src...)
	opt := WithGranularity(format.GranularitySlice)

	var m meta.Blob
	require.NoError(t, SliceNorm(buf, d, &m, opt))
	require.Equal(t, 4+16*d.Slow, m.Len())

	plane := d.Fast * d.Mid
	for z := range d.Slow {
		var sum float64
		for _, v := range src[z*plane : (z+1)*plane] {
			sum += v
		}
		gotMean, _ := readPair(t, m.Bytes(), z)
		require.InDelta(t, sum/float64(plane), gotMean, 1e-9)
	}

	err := InvSliceNorm(append([]float64(nil), buf...), d, m.Bytes())
	require.ErrorIs(t, err, errs.ErrInvalidMetaSize, "column inverse of slice metadata")

	require.NoError(t, InvSliceNorm(buf, d, m.Bytes(), opt))
	for i, v := range src {
		require.InDelta(t, v, buf[i], 1e-9, "index %d", i)
	}
}

func TestSliceNormConstantColumn(t *testing.T) {
	d := Dims{Fast: 2, Mid: 2, Slow: 2}
	buf := []float64{5, 1, 5, 2, 5, 3, 5, 4}

	var m meta.Blob
	require.NoError(t, SliceNorm(buf, d, &m))

	mean, rms := readPair(t, m.Bytes(), 0)
	require.Equal(t, 5.0, mean)
	require.Equal(t, 1.0, rms)
	for i := 0; i < len(buf); i += 2 {
		require.Equal(t, 0.0, buf[i])
		require.False(t, math.IsNaN(buf[i+1]))
	}

	require.NoError(t, InvSliceNorm(buf, d, m.Bytes()))
	require.InDeltaSlice(t, []float64{5, 1, 5, 2, 5, 3, 5, 4}, buf, 1e-12)
}

func TestSliceNormDegenerate(t *testing.T) {
	d := Dims{Fast: 3, Mid: 2, Slow: 1}
	buf := []float64{1, 2, 3, 4, 5, 6}

	var m meta.Blob
	require.NoError(t, SliceNorm(buf, d, &m))
	require.Equal(t, []byte{4, 0, 0, 0}, m.Bytes())
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, buf)

	require.NoError(t, InvSliceNorm(buf, d, m.Bytes()))
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, buf)

	err := InvSliceNorm(make([]float64, 12), Dims{3, 2, 2}, m.Bytes())
	require.ErrorIs(t, err, errs.ErrInvalidMetaSize)
}

func TestSliceNormFloat32(t *testing.T) {
	d := Dims{Fast: 16, Mid: 8, Slow: 4}
	src := make([]float32, d.Len())
	for i, v := range volume(d) {
		src[i] = float32(v)
	}
	buf := append([]float32(nil), src...)

	var m meta.Blob
	require.NoError(t, SliceNorm(buf, d, &m, strided()...))
	require.NoError(t, InvSliceNorm(buf, d, m.Bytes(), strided()...))
	for i, v := range src {
		require.InDelta(t, float64(v), float64(buf[i]), 1e-3, "index %d", i)
	}
}

func TestSliceNormStridesMatchSequential(t *testing.T) {
	d := Dims{Fast: 7, Mid: 33, Slow: 9}
	src := volume(d)
	seq := append([]float64(nil), src...)
	par := append([]float64(nil), src...)

	var ms, mp meta.Blob
	require.NoError(t, SliceNorm(seq, d, &ms, WithWorkers(1)))
	require.NoError(t, SliceNorm(par, d, &mp, strided()...))

	require.Equal(t, ms.Len(), mp.Len())
	for k := range d.Fast {
		sm, sr := readPair(t, ms.Bytes(), k)
		pm, pr := readPair(t, mp.Bytes(), k)
		require.InDelta(t, sm, pm, 1e-9)
		require.InDelta(t, sr, pr, 1e-9)
	}
	require.InDeltaSlice(t, seq, par, 1e-9)
}

func TestSliceNormErrors(t *testing.T) {
	buf := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	d := Dims{2, 2, 2}

	require.ErrorIs(t, SliceNorm(buf, d, nil), errs.ErrNilMeta)

	full := meta.FromBytes([]byte{4, 0, 0, 0})
	require.ErrorIs(t, SliceNorm(buf, d, &full), errs.ErrAlreadyInitialized)

	var m meta.Blob
	require.ErrorIs(t, SliceNorm(buf, Dims{2, 2, 3}, &m), errs.ErrLengthMismatch)
	require.ErrorIs(t, SliceNorm(buf, Dims{0, 2, 2}, &m), errs.ErrInvalidDims)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, buf)
	require.True(t, m.IsEmpty())

	require.NoError(t, SliceNorm(buf, d, &m))
	normalized := append([]float64(nil), buf...)

	require.ErrorIs(t, InvSliceNorm(buf, d, m.Bytes()[:10]), errs.ErrInvalidMetaSize)
	require.ErrorIs(t, InvSliceNorm(buf, Dims{4, 1, 2}, m.Bytes()), errs.ErrInvalidMetaSize)
	require.ErrorIs(t, InvSliceNorm(buf[:4], d, m.Bytes()), errs.ErrLengthMismatch)
	require.Equal(t, normalized, buf)

	_, err := RetrieveSliceNormMetaLen([]byte{1})
	require.ErrorIs(t, err, errs.ErrInvalidMetaSize)
	_, err = RetrieveSliceNormMetaLen([]byte{7, 0, 0, 0})
	require.ErrorIs(t, err, errs.ErrInvalidMetaSize)
}

func TestSliceNormScratchLimit(t *testing.T) {
	d := Dims{64, 4, 4}
	metaLen := uint64(section.NormLenFieldSize + 64*section.NormPairSize)

	// Four strides need 4*64 float64 accumulators, more than the limit allows.
	buf := volume(d)
	var m meta.Blob
	opts := append(strided(), WithMaxMetaSize(metaLen))
	require.ErrorIs(t, SliceNorm(buf, d, &m, opts...), errs.ErrAllocationFailure)
	require.Equal(t, volume(d), buf)
	require.True(t, m.IsEmpty())

	// A single stride fits.
	require.NoError(t, SliceNorm(buf, d, &m, WithWorkers(1), WithMaxMetaSize(metaLen)))
	require.Equal(t, int(metaLen), m.Len())
}

func TestSliceNormColumnMatchesYZSlice(t *testing.T) {
	d := Dims{Fast: 5, Mid: 3, Slow: 4}
	src := volume(d)
	buf := append([]float64(nil), src...)

	var m meta.Blob
	require.NoError(t, SliceNorm(buf, d, &m))

	for x := range d.Fast {
		// Gather the YZ slice at fast index x.
		slice := make([]float64, 0, d.Mid*d.Slow)
		for z := range d.Slow {
			for y := range d.Mid {
				slice = append(slice, src[z*d.Fast*d.Mid+y*d.Fast+x])
			}
		}

		var sum, sq float64
		for _, v := range slice {
			sum += v
		}
		mean := sum / float64(len(slice))
		for _, v := range slice {
			sq += (v - mean) * (v - mean)
		}

		gotMean, gotRMS := readPair(t, m.Bytes(), x)
		require.InDelta(t, mean, gotMean, 1e-9, "x=%d", x)
		require.InDelta(t, math.Sqrt(sq/float64(len(slice))), gotRMS, 1e-9, "x=%d", x)
	}
}
