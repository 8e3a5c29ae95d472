// Package compress provides the general-purpose codecs applied to persisted
// conditioning metadata.
//
// Metadata blobs are dominated by bitmasks and packed float64 statistics:
// masks of mostly-uniform data compress extremely well, sparse value arrays
// much less. The record package runs one of these codecs over every blob
// before writing it:
//   - None: No compression
//   - Zstd: Best ratio; libzstd via gozstd when built with cgo and the
//     gozstd tag, pure Go otherwise
//   - S2: Balanced compression and speed
//   - LZ4: Fastest decompression
//
// Every codec implements Codec:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	payload, err := codec.Compress(m.Bytes())
//
// Decompress checks the decompressed length against the size stored next to
// the payload, and hands the size to codecs implementing SizedDecompressor so
// they can decode into an exactly sized buffer.
//
// Built-in codecs are stateless values backed by pooled encoders and are safe
// for concurrent use.
package compress
