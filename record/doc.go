// Package record persists conditioning metadata.
//
// A record wraps one metadata blob with a 32-byte header naming the transform
// that produced it, the element precision, the normalization granularity and
// the codec applied to the stored payload. An xxHash64 checksum of the
// uncompressed metadata is verified on decode.
//
//	data, err := record.Encode(record.Record{
//	    Kind:     format.KindLog,
//	    ElemType: format.Float32,
//	    Meta:     m.Bytes(),
//	}, record.WithCompression(format.CompressionZstd))
//
// A Set holds the records of several variables of one dataset, keyed by name.
// Set.Encode compresses the records concurrently and writes them behind a
// sorted index, so DecodeSet followed by Get decodes only the requested
// record.
package record
