package section

import (
	"fmt"

	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
)

// RecordIndexEntry locates one named record inside a record set.
// It is a fixed size of 16 bytes.
//
//	Bytes | Field  | Type
//	------|--------|------
//	0-7   | ID     | u64, xxHash64 of the record name
//	8-11  | Offset | u32, from the start of the data section
//	12-15 | Length | u32, name prefix plus encoded record
type RecordIndexEntry struct {
	// ID is the xxHash64 hash of the record name. Entries are sorted by ID.
	ID uint64
	// Offset is the byte offset of the entry's data from the start of the
	// data section.
	Offset uint32
	// Length is the byte length of the entry's data.
	Length uint32
}

// End returns the offset just past the entry's data.
func (e RecordIndexEntry) End() uint64 {
	return uint64(e.Offset) + uint64(e.Length)
}

// WriteToSlice writes the entry at data[offset:] and returns the next
// position. data must have room for 16 bytes at offset.
func (e RecordIndexEntry) WriteToSlice(data []byte, offset int) int {
	engine := endian.GetLittleEndianEngine()
	engine.PutUint64(data[offset:offset+8], e.ID)
	engine.PutUint32(data[offset+8:offset+12], e.Offset)
	engine.PutUint32(data[offset+12:offset+16], e.Length)

	return offset + RecordIndexEntrySize
}

// ParseRecordIndexEntry parses a RecordIndexEntry from the start of data.
//
// Returns:
//   - RecordIndexEntry: Parsed index entry
//   - error: ErrInvalidHeaderSize if data is shorter than 16 bytes
func ParseRecordIndexEntry(data []byte) (RecordIndexEntry, error) {
	if len(data) < RecordIndexEntrySize {
		return RecordIndexEntry{}, fmt.Errorf("%w: index entry needs %d bytes, got %d",
			errs.ErrInvalidHeaderSize, RecordIndexEntrySize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	return RecordIndexEntry{
		ID:     engine.Uint64(data[0:8]),
		Offset: engine.Uint32(data[8:12]),
		Length: engine.Uint32(data[12:16]),
	}, nil
}

// RecordSetHeader is the fixed 8-byte header of a record set.
//
//	Bytes | Field    | Type
//	------|----------|------
//	0-1   | Magic    | u16 (0xC0D2)
//	2     | Version  | u8
//	3     | reserved | u8
//	4-7   | Count    | u32, number of index entries
type RecordSetHeader struct {
	Version uint8
	Count   uint32
}

// Bytes serializes the header into a new 8-byte slice.
func (h RecordSetHeader) Bytes() []byte {
	b := make([]byte, RecordSetHeaderSize)
	engine := endian.GetLittleEndianEngine()
	engine.PutUint16(b[0:2], RecordSetMagic)
	b[2] = h.Version
	engine.PutUint32(b[4:8], h.Count)

	return b
}

// IndexSize returns the byte size of the index that follows the header.
func (h RecordSetHeader) IndexSize() uint64 {
	return uint64(h.Count) * RecordIndexEntrySize
}

// ParseRecordSetHeader parses and validates a record set header.
func ParseRecordSetHeader(data []byte) (RecordSetHeader, error) {
	if len(data) < RecordSetHeaderSize {
		return RecordSetHeader{}, errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()
	if engine.Uint16(data[0:2]) != RecordSetMagic {
		return RecordSetHeader{}, errs.ErrInvalidMagicNumber
	}
	if data[2] != RecordVersion {
		return RecordSetHeader{}, fmt.Errorf("%w: %d", errs.ErrInvalidVersion, data[2])
	}

	return RecordSetHeader{Version: data[2], Count: engine.Uint32(data[4:8])}, nil
}
