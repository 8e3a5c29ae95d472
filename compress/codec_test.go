package compress

import (
	"bytes"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
	"github.com/stretchr/testify/require"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

// maskLike mimics a sign mask: long runs of 0xFF with sparse cleared bits.
func maskLike(n int) []byte {
	rng := rand.New(rand.NewPCG(1, 2))
	data := bytes.Repeat([]byte{0xFF}, n)
	for range n / 50 {
		data[rng.IntN(n)] &^= 1 << rng.IntN(8)
	}

	return data
}

func randomBytes(n int) []byte {
	rng := rand.New(rand.NewPCG(3, 4))
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(rng.Uint32())
	}

	return data
}

func TestGetCodec(t *testing.T) {
	for _, typ := range allTypes {
		codec, err := GetCodec(typ)
		require.NoError(t, err, typ.String())
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
	_, err = GetCodec(format.CompressionType(99))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestCodecRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"header only": {9, 0, 0, 0, 0, 0, 0, 0, 0},
		"mask":        maskLike(64 << 10),
		"random":      randomBytes(4096),
		"single byte": {0x42},
	}

	for _, typ := range allTypes {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		for name, data := range inputs {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(data)
				if typ == format.CompressionLZ4 && err != nil {
					require.ErrorIs(t, err, errs.ErrIncompressible)
					return
				}
				require.NoError(t, err)

				out, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, data, out)

				sized, err := Decompress(codec, compressed, len(data))
				require.NoError(t, err)
				require.Equal(t, data, sized)
			})
		}
	}
}

func TestCodecEmpty(t *testing.T) {
	for _, typ := range allTypes {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		compressed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, compressed)

		out, err := Decompress(codec, compressed, 0)
		require.NoError(t, err, typ.String())
		require.Empty(t, out)
	}
}

func TestMaskCompresses(t *testing.T) {
	data := maskLike(64 << 10)
	for _, typ := range allTypes[1:] {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		compressed, err := codec.Compress(data)
		require.NoError(t, err)

		stats := CompressionStats{Algorithm: typ, OriginalSize: int64(len(data)), CompressedSize: int64(len(compressed))}
		require.Less(t, stats.CompressionRatio(), 0.5, typ.String())
		require.Greater(t, stats.SpaceSavings(), 50.0, typ.String())
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	data := maskLike(4096)
	for _, typ := range allTypes {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		compressed, err := codec.Compress(data)
		require.NoError(t, err)

		_, err = Decompress(codec, compressed, len(data)+1)
		require.Error(t, err, typ.String())
	}
}

func TestDecompressCorrupt(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}
	for _, typ := range []format.CompressionType{format.CompressionZstd, format.CompressionS2} {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		_, err = codec.Decompress(garbage)
		require.Error(t, err, typ.String())
	}
}

func TestLZ4Incompressible(t *testing.T) {
	_, err := NewLZ4Compressor().Compress(randomBytes(256))
	require.ErrorIs(t, err, errs.ErrIncompressible)
}

func TestCompressionStatsZero(t *testing.T) {
	require.Zero(t, CompressionStats{}.CompressionRatio())
}

func TestCodecConcurrent(t *testing.T) {
	data := maskLike(32 << 10)
	for _, typ := range allTypes {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make([][]byte, 8)
		errList := make([]error, 8)
		for i := range results {
			wg.Go(func() {
				compressed, err := codec.Compress(data)
				if err != nil {
					errList[i] = err
					return
				}
				results[i], errList[i] = Decompress(codec, compressed, len(data))
			})
		}
		wg.Wait()

		for i := range results {
			require.NoError(t, errList[i])
			require.Equal(t, data, results[i])
		}
	}
}
