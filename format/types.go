package format

type (
	ElementType     uint8
	TransformKind   uint8
	Granularity     uint8
	CompressionType uint8
)

// Element types match the precision byte of SparseMeta and the is_float tag of
// the type-erased boundary.
const (
	Float64 ElementType = 0x0 // Float64 represents IEEE 754 double precision elements.
	Float32 ElementType = 0x1 // Float32 represents IEEE 754 single precision elements.
)

const (
	KindLog    TransformKind = 0x1 // KindLog is the smart log / smart exp pair.
	KindNorm   TransformKind = 0x2 // KindNorm is the slice normalization pair.
	KindSparse TransformKind = 0x3 // KindSparse is the bitmask zero pair.
)

const (
	// GranularityColumn groups elements sharing a fast-axis index.
	GranularityColumn Granularity = 0x0
	// GranularitySlice groups elements sharing a slow-axis index.
	GranularitySlice Granularity = 0x1
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// Size returns the element width in bytes, or 0 for an unknown type.
func (e ElementType) Size() int {
	switch e {
	case Float64:
		return 8
	case Float32:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether e is a supported element type.
func (e ElementType) IsValid() bool {
	return e.Size() != 0
}

func (e ElementType) String() string {
	switch e {
	case Float64:
		return "Float64"
	case Float32:
		return "Float32"
	default:
		return "Unknown"
	}
}

// IsValid reports whether k names a known transform.
func (k TransformKind) IsValid() bool {
	return k >= KindLog && k <= KindSparse
}

func (k TransformKind) String() string {
	switch k {
	case KindLog:
		return "Log"
	case KindNorm:
		return "Norm"
	case KindSparse:
		return "Sparse"
	default:
		return "Unknown"
	}
}

// IsValid reports whether g is a known granularity.
func (g Granularity) IsValid() bool {
	return g == GranularityColumn || g == GranularitySlice
}

func (g Granularity) String() string {
	switch g {
	case GranularityColumn:
		return "Column"
	case GranularitySlice:
		return "Slice"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is a known compression type.
func (c CompressionType) IsValid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
