package section

import (
	"fmt"

	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/format"
)

// RecordHeader is the fixed 32-byte header of a persisted metadata record.
//
//	Bytes | Field       | Type
//	------|-------------|------
//	0-1   | Magic       | u16 (0xC0D1)
//	2     | Version     | u8
//	3     | Kind        | u8
//	4     | ElemType    | u8
//	5     | Compression | u8
//	6     | Granularity | u8 (normalization records only)
//	7     | reserved    | u8
//	8-15  | RawLen      | u64, metadata length before compression
//	16-19 | PayloadLen  | u32, stored payload length
//	20-23 | reserved    | u32
//	24-31 | Checksum    | u64, xxHash64 of the uncompressed metadata
type RecordHeader struct {
	Version     uint8
	Kind        format.TransformKind
	ElemType    format.ElementType
	Compression format.CompressionType
	Granularity format.Granularity
	RawLen      uint64
	PayloadLen  uint32
	Checksum    uint64
}

// NewRecordHeader creates a header for the current record version.
func NewRecordHeader(kind format.TransformKind, elem format.ElementType, comp format.CompressionType) RecordHeader {
	return RecordHeader{
		Version:     RecordVersion,
		Kind:        kind,
		ElemType:    elem,
		Compression: comp,
	}
}

// Validate checks the enumerated fields.
func (h RecordHeader) Validate() error {
	if h.Version != RecordVersion {
		return fmt.Errorf("%w: %d", errs.ErrInvalidVersion, h.Version)
	}
	if !h.Kind.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidKind, uint8(h.Kind))
	}
	if !h.ElemType.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedType, uint8(h.ElemType))
	}
	if !h.Compression.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidCompression, uint8(h.Compression))
	}

	return nil
}

// Bytes serializes the header into a new 32-byte slice.
func (h RecordHeader) Bytes() []byte {
	b := make([]byte, RecordHeaderSize)
	engine := endian.GetLittleEndianEngine()

	engine.PutUint16(b[0:2], RecordMagic)
	b[2] = h.Version
	b[3] = byte(h.Kind)
	b[4] = byte(h.ElemType)
	b[5] = byte(h.Compression)
	b[6] = byte(h.Granularity)
	engine.PutUint64(b[8:16], h.RawLen)
	engine.PutUint32(b[16:20], h.PayloadLen)
	engine.PutUint64(b[24:32], h.Checksum)

	return b
}

// ParseRecordHeader parses a RecordHeader from the start of data.
//
// Returns:
//   - RecordHeader: Parsed header
//   - error: ErrInvalidHeaderSize, ErrInvalidMagicNumber or a field validation error
func ParseRecordHeader(data []byte) (RecordHeader, error) {
	if len(data) < RecordHeaderSize {
		return RecordHeader{}, errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()
	if engine.Uint16(data[0:2]) != RecordMagic {
		return RecordHeader{}, errs.ErrInvalidMagicNumber
	}

	h := RecordHeader{
		Version:     data[2],
		Kind:        format.TransformKind(data[3]),
		ElemType:    format.ElementType(data[4]),
		Compression: format.CompressionType(data[5]),
		Granularity: format.Granularity(data[6]),
		RawLen:      engine.Uint64(data[8:16]),
		PayloadLen:  engine.Uint32(data[16:20]),
		Checksum:    engine.Uint64(data[24:32]),
	}
	if err := h.Validate(); err != nil {
		return RecordHeader{}, err
	}

	return h, nil
}
