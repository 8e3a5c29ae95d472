package compress

// ZstdCompressor provides Zstandard compression.
//
// Builds with cgo and the gozstd tag use the libzstd bindings; all other
// builds use the pure Go implementation. Both produce standard zstd frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// zstdLevel is the compression level of both implementations.
const zstdLevel = 3

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(meta.Bytes())
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
