package section

import (
	"math"
	"testing"

	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
	"github.com/stretchr/testify/require"
)

func TestMaskBytes(t *testing.T) {
	require.Equal(t, uint64(0), MaskBytes(0))
	require.Equal(t, uint64(8), MaskBytes(1))
	require.Equal(t, uint64(8), MaskBytes(64))
	require.Equal(t, uint64(16), MaskBytes(65))
	require.Equal(t, uint64(math.MaxUint64/64+1)*8, MaskBytes(math.MaxUint64))
}

func TestLogHeader(t *testing.T) {
	t.Run("lengths and offsets", func(t *testing.T) {
		cases := []struct {
			n          uint64
			neg, zero  bool
			metaLen    uint64
			zeroOffset uint64
		}{
			{0, false, false, 9, 9},
			{100, false, false, 9, 9},
			{100, true, false, 9 + 16, 9 + 16},
			{100, false, true, 9 + 16, 9},
			{100, true, true, 9 + 32, 9 + 16},
			{64, true, true, 9 + 16, 9 + 8},
		}
		for _, tc := range cases {
			h := LogHeader{BufLen: tc.n, Treatment: NewTreatment(tc.neg, tc.zero)}
			require.Equal(t, tc.metaLen, h.MetaLen())
			require.Equal(t, uint64(LogHeaderSize), h.SignMaskOffset())
			require.Equal(t, tc.zeroOffset, h.ZeroMaskOffset())
		}
	})

	t.Run("serialize and parse", func(t *testing.T) {
		h := LogHeader{BufLen: 0x0102030405060708, Treatment: TreatmentZero}
		data := h.AppendBytes(nil)

		require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1, 0x02}, data)

		parsed, err := ParseLogHeader(data)
		require.NoError(t, err)
		require.Equal(t, h, parsed)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ParseLogHeader(make([]byte, 8))
		require.ErrorIs(t, err, errs.ErrInvalidMetaSize)
	})

	t.Run("reserved treatment bits", func(t *testing.T) {
		data := LogHeader{BufLen: 3}.AppendBytes(nil)
		data[LogTreatmentIndex] = 0x10

		_, err := ParseLogHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidTreatment)
	})
}

func TestNormHeader(t *testing.T) {
	t.Run("degenerate", func(t *testing.T) {
		h, err := NewNormHeader(0)
		require.NoError(t, err)
		require.Equal(t, uint32(4), h.Len)
		require.True(t, h.IsDegenerate())
		require.Equal(t, 0, h.Groups())
		require.Equal(t, []byte{4, 0, 0, 0}, h.AppendBytes(nil))
	})

	t.Run("groups", func(t *testing.T) {
		h, err := NewNormHeader(10)
		require.NoError(t, err)
		require.Equal(t, uint32(4+160), h.Len)
		require.Equal(t, 10, h.Groups())
		require.False(t, h.IsDegenerate())
	})

	t.Run("too many groups", func(t *testing.T) {
		_, err := NewNormHeader(math.MaxUint32/16 + 1)
		require.ErrorIs(t, err, errs.ErrInvalidDims)
	})

	t.Run("parse", func(t *testing.T) {
		h, _ := NewNormHeader(2)
		data := append(h.AppendBytes(nil), make([]byte, 32)...)

		parsed, err := ParseNormHeader(data)
		require.NoError(t, err)
		require.Equal(t, h, parsed)

		_, err = ParseNormHeader(data[:20])
		require.ErrorIs(t, err, errs.ErrInvalidMetaSize)

		_, err = ParseNormHeader([]byte{5, 0, 0, 0, 0})
		require.ErrorIs(t, err, errs.ErrInvalidMetaSize)

		_, err = ParseNormHeader([]byte{4, 0})
		require.ErrorIs(t, err, errs.ErrInvalidMetaSize)
	})
}

func TestSparseHeader(t *testing.T) {
	t.Run("lengths", func(t *testing.T) {
		h := SparseHeader{Precision: format.Float32, Total: 100, NonZero: 7}
		require.Equal(t, uint64(16), h.MaskSize())
		require.Equal(t, uint64(17+16), h.ValuesOffset())
		require.Equal(t, uint64(17+16+28), h.EncodedLen())

		h.Precision = format.Float64
		require.Equal(t, uint64(17+16+56), h.EncodedLen())
	})

	t.Run("serialize and parse", func(t *testing.T) {
		h := SparseHeader{Precision: format.Float32, Total: 5, NonZero: 2}
		data := h.AppendBytes(nil)
		require.Len(t, data, SparseHeaderSize)
		require.Equal(t, byte(1), data[0])

		parsed, err := ParseSparseHeader(data)
		require.NoError(t, err)
		require.Equal(t, h, parsed)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseSparseHeader(make([]byte, 16))
		require.ErrorIs(t, err, errs.ErrInvalidMetaSize)

		data := SparseHeader{Precision: 7, Total: 1}.AppendBytes(nil)
		_, err = ParseSparseHeader(data)
		require.ErrorIs(t, err, errs.ErrUnsupportedType)

		data = SparseHeader{Precision: format.Float64, Total: 1, NonZero: 2}.AppendBytes(nil)
		_, err = ParseSparseHeader(data)
		require.ErrorIs(t, err, errs.ErrCorruptMeta)
	})
}

func TestRecordHeader(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		h := NewRecordHeader(format.KindNorm, format.Float32, format.CompressionZstd)
		h.Granularity = format.GranularitySlice
		h.RawLen = 1234
		h.PayloadLen = 99
		h.Checksum = 0xFEEDFACECAFEBEEF

		data := h.Bytes()
		require.Len(t, data, RecordHeaderSize)
		require.Equal(t, []byte{0xD1, 0xC0}, data[:2])

		parsed, err := ParseRecordHeader(data)
		require.NoError(t, err)
		require.Equal(t, h, parsed)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseRecordHeader(make([]byte, 10))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

		_, err = ParseRecordHeader(make([]byte, RecordHeaderSize))
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)

		good := NewRecordHeader(format.KindLog, format.Float64, format.CompressionNone)

		data := good.Bytes()
		data[2] = 9
		_, err = ParseRecordHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidVersion)

		data = good.Bytes()
		data[3] = 0
		_, err = ParseRecordHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidKind)

		data = good.Bytes()
		data[4] = 5
		_, err = ParseRecordHeader(data)
		require.ErrorIs(t, err, errs.ErrUnsupportedType)

		data = good.Bytes()
		data[5] = 0
		_, err = ParseRecordHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidCompression)
	})
}
