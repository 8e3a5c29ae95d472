package compress

import (
	"fmt"

	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
)

// Compressor compresses a complete metadata payload.
//
// The returned slice is owned by the caller. The input slice is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Implementations validate the input and return an error when the data is
// corrupted or was produced by another algorithm.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// SizedDecompressor is implemented by codecs that decompress faster when the
// decompressed size is known up front. Records always store it.
type SizedDecompressor interface {
	DecompressSized(data []byte, size int) ([]byte, error)
}

// CompressionStats describes the effect of compressing one payload.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression. Small metadata blobs
// often exceed 1.0 because of codec framing.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
// Built-in codecs are safe for concurrent use.
//
// Returns:
//   - Codec: Shared codec instance
//   - error: ErrInvalidCompression for an unknown type
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compressionType)
}

// Decompress decompresses data with codec, using the size hint when the codec
// supports it, and checks that the result is exactly size bytes.
func Decompress(codec Codec, data []byte, size int) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if sd, ok := codec.(SizedDecompressor); ok {
		out, err = sd.DecompressSized(data, size)
	} else {
		out, err = codec.Decompress(data)
	}
	if err != nil {
		return nil, err
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d", errs.ErrCorruptMeta, len(out), size)
	}

	return out, nil
}
