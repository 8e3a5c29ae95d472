package record

import (
	"errors"
	"fmt"
	"math"

	"github.com/arloliu/mkit/compress"
	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
	"github.com/arloliu/mkit/internal/hash"
	"github.com/arloliu/mkit/internal/pool"
	"github.com/arloliu/mkit/section"
)

// Record is one metadata blob with the information needed to apply its
// inverse transform.
type Record struct {
	// Kind is the transform that produced Meta.
	Kind format.TransformKind
	// ElemType is the precision of the conditioned data.
	ElemType format.ElementType
	// Granularity is the normalization grouping; ignored for other kinds.
	Granularity format.Granularity
	// Meta is the uncompressed metadata blob.
	Meta []byte
}

// Info describes a decoded record header.
type Info struct {
	Header section.RecordHeader
	// Size is the encoded record size, header included.
	Size int
}

// Stats returns the compression statistics of the stored payload.
func (i Info) Stats() compress.CompressionStats {
	return compress.CompressionStats{
		Algorithm:      i.Header.Compression,
		OriginalSize:   int64(i.Header.RawLen), //nolint:gosec // RawLen is bounded by decode
		CompressedSize: int64(i.Header.PayloadLen),
	}
}

// compressPayload compresses meta with c. Payloads the codec cannot shrink
// are stored uncompressed.
func compressPayload(meta []byte, c format.CompressionType) ([]byte, format.CompressionType, error) {
	if c == format.CompressionNone {
		return meta, c, nil
	}

	codec, err := compress.GetCodec(c)
	if err != nil {
		return nil, 0, err
	}
	payload, err := codec.Compress(meta)
	if errors.Is(err, errs.ErrIncompressible) || (err == nil && len(payload) >= len(meta)) {
		return meta, format.CompressionNone, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("compress %s payload: %w", c, err)
	}

	return payload, c, nil
}

func encode(r Record, c format.CompressionType) ([]byte, error) {
	if !r.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidKind, uint8(r.Kind))
	}
	if !r.ElemType.IsValid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedType, uint8(r.ElemType))
	}

	payload, used, err := compressPayload(r.Meta, c)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d-byte payload does not fit in a record", errs.ErrInvalidMetaSize, len(payload))
	}

	hdr := section.NewRecordHeader(r.Kind, r.ElemType, used)
	if r.Kind == format.KindNorm {
		hdr.Granularity = r.Granularity
	}
	hdr.RawLen = uint64(len(r.Meta))
	hdr.PayloadLen = uint32(len(payload))
	hdr.Checksum = hash.Checksum(r.Meta)

	bb := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(bb)

	bb.Grow(section.RecordHeaderSize + len(payload))
	_, _ = bb.Write(hdr.Bytes())
	_, _ = bb.Write(payload)

	return append([]byte(nil), bb.Bytes()...), nil
}

// Encode serializes r.
//
// Parameters:
//   - r: Record to encode; r.Meta is not retained
//   - opts: WithCompression
//
// Returns:
//   - []byte: Encoded record
//   - error: ErrInvalidKind, ErrUnsupportedType, or a compression error
func Encode(r Record, opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return encode(r, cfg.compression)
}

// ReadInfo parses the header of the record at the start of data without
// decompressing the payload.
func ReadInfo(data []byte) (Info, error) {
	hdr, err := section.ParseRecordHeader(data)
	if err != nil {
		return Info{}, err
	}

	if hdr.RawLen > math.MaxInt64 {
		return Info{}, fmt.Errorf("%w: raw length %d", errs.ErrCorruptMeta, hdr.RawLen)
	}

	size := uint64(section.RecordHeaderSize) + uint64(hdr.PayloadLen)
	if uint64(len(data)) < size {
		return Info{}, fmt.Errorf("%w: record needs %d bytes, got %d", errs.ErrInvalidMetaSize, size, len(data))
	}

	return Info{Header: hdr, Size: int(size)}, nil
}

// Decode parses the record at the start of data, decompresses its payload
// and verifies the checksum. Trailing bytes after the record are ignored.
//
// Returns:
//   - Record: Decoded record; Meta never aliases data
//   - error: ErrInvalidHeaderSize, ErrInvalidMagicNumber, ErrInvalidMetaSize,
//     ErrCorruptMeta or ErrChecksumMismatch
func Decode(data []byte) (Record, error) {
	info, err := ReadInfo(data)
	if err != nil {
		return Record{}, err
	}
	hdr := info.Header
	if hdr.RawLen > math.MaxInt {
		return Record{}, fmt.Errorf("%w: %d-byte metadata", errs.ErrAllocationFailure, hdr.RawLen)
	}

	codec, err := compress.GetCodec(hdr.Compression)
	if err != nil {
		return Record{}, err
	}
	payload := data[section.RecordHeaderSize:info.Size]
	meta, err := compress.Decompress(codec, payload, int(hdr.RawLen))
	if err != nil {
		return Record{}, fmt.Errorf("decode %s record: %w", hdr.Kind, err)
	}
	if hash.Checksum(meta) != hdr.Checksum {
		return Record{}, errs.ErrChecksumMismatch
	}
	if hdr.Compression == format.CompressionNone {
		meta = append([]byte(nil), meta...)
	}

	return Record{
		Kind:        hdr.Kind,
		ElemType:    hdr.ElemType,
		Granularity: hdr.Granularity,
		Meta:        meta,
	}, nil
}
