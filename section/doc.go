// Package section defines the low-level binary structures of the mkit metadata
// formats.
//
// Every conditioning transform emits a self-describing blob that starts with a
// small fixed header. This package owns those headers, the one-byte treatment
// descriptor and the boolean packer behind it. Payload handling (masks, value
// arrays, statistics) lives in the transform package.
//
// All multi-byte fields are little-endian.
//
// # LogMeta
//
//	┌───────────────────────────────────────────────┐
//	│ buf_len (8 bytes, u64)                        │
//	│ treatment (1 byte)                            │
//	├───────────────────────────────────────────────┤
//	│ sign mask (W bytes, iff treatment bit 0)      │
//	├───────────────────────────────────────────────┤
//	│ zero mask (W bytes, iff treatment bit 1)      │
//	└───────────────────────────────────────────────┘
//
// W = ceil(buf_len/64) * 8.
//
// # NormMeta
//
//	┌───────────────────────────────────────────────┐
//	│ header_len (4 bytes, u32) = 4 + 16 * groups   │
//	├───────────────────────────────────────────────┤
//	│ (mean f64, rms f64) * groups                  │
//	└───────────────────────────────────────────────┘
//
// A 2D volume (slow extent 1) stores only the header, whose value is 4.
//
// # SparseMeta
//
//	┌───────────────────────────────────────────────┐
//	│ precision (1 byte, 0 = float64, 1 = float32)  │
//	│ total (8 bytes, u64)                          │
//	│ nonzero (8 bytes, u64)                        │
//	├───────────────────────────────────────────────┤
//	│ near-zero mask (ceil(total/64) * 8 bytes)     │
//	├───────────────────────────────────────────────┤
//	│ nonzero values, in positional order           │
//	└───────────────────────────────────────────────┘
//
// # Record
//
// RecordHeader prefixes a persisted metadata blob with its kind, element type,
// compression and an xxHash64 checksum; see the record package.
//
// # Record set
//
//	┌───────────────────────────────────────────────┐
//	│ RecordSetHeader (8 bytes)                     │
//	├───────────────────────────────────────────────┤
//	│ RecordIndexEntry (16 bytes) * count           │
//	│   sorted by ID                                │
//	├───────────────────────────────────────────────┤
//	│ name_len (u16) | name | record, per entry     │
//	└───────────────────────────────────────────────┘
package section
