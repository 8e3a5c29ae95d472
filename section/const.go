package section

// Fixed field sizes and offsets of the metadata layouts, in bytes.
const (
	LogLenFieldSize   = 8                   // buf_len field of LogMeta
	LogHeaderSize     = LogLenFieldSize + 1 // buf_len + treatment byte
	LogTreatmentIndex = LogLenFieldSize     // byte offset of the treatment byte

	NormLenFieldSize = 4  // header_len field of NormMeta
	NormPairSize     = 16 // one (mean float64, rms float64) pair

	SparsePrecisionIndex = 0  // byte offset of the precision flag
	SparseTotalOffset    = 1  // byte offset of total_element_count
	SparseNonZeroOffset  = 9  // byte offset of nonzero_count
	SparseHeaderSize     = 17 // precision + total + nonzero

	RecordHeaderSize = 32     // fixed record header size
	RecordMagic      = 0xC0D1 // first two bytes of every record, little-endian
	RecordVersion    = 1      // current record layout version

	RecordSetHeaderSize  = 8      // magic + version + reserved + count
	RecordSetMagic       = 0xC0D2 // first two bytes of every record set, little-endian
	RecordIndexEntrySize = 16     // id + offset + length
	RecordNameLenSize    = 2      // u16 name length prefix of a record set entry
)

// MaskBytes returns the serialised size of an n-bit mask: ceil(n/64) words of
// 8 bytes each.
func MaskBytes(n uint64) uint64 {
	words := n / 64
	if n%64 != 0 {
		words++
	}

	return words * 8
}
