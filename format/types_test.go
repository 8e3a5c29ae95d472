package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElementType(t *testing.T) {
	require.Equal(t, 8, Float64.Size())
	require.Equal(t, 4, Float32.Size())
	require.Equal(t, 0, ElementType(2).Size())

	require.True(t, Float64.IsValid())
	require.True(t, Float32.IsValid())
	require.False(t, ElementType(0xFF).IsValid())

	require.Equal(t, "Float64", Float64.String())
	require.Equal(t, "Float32", Float32.String())
	require.Equal(t, "Unknown", ElementType(9).String())
}

func TestTransformKind(t *testing.T) {
	for _, k := range []TransformKind{KindLog, KindNorm, KindSparse} {
		require.True(t, k.IsValid(), k.String())
	}
	require.False(t, TransformKind(0).IsValid())
	require.False(t, TransformKind(4).IsValid())
	require.Equal(t, "Norm", KindNorm.String())
	require.Equal(t, "Unknown", TransformKind(0).String())
}

func TestGranularity(t *testing.T) {
	require.True(t, GranularityColumn.IsValid())
	require.True(t, GranularitySlice.IsValid())
	require.False(t, Granularity(2).IsValid())
	require.Equal(t, "Column", GranularityColumn.String())
	require.Equal(t, "Slice", GranularitySlice.String())
	require.Equal(t, "Unknown", Granularity(2).String())
}

func TestCompressionType(t *testing.T) {
	for _, c := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		require.True(t, c.IsValid(), c.String())
	}
	require.False(t, CompressionType(0).IsValid())
	require.False(t, CompressionType(5).IsValid())
	require.Equal(t, "LZ4", CompressionLZ4.String())
	require.Equal(t, "Unknown", CompressionType(0).String())
}
