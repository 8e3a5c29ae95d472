// Package errs defines the sentinel errors returned by mkit.
//
// Every error is recoverable and deterministic: a caller that receives one has
// either passed an invalid argument or handed over corrupted metadata. Retrying
// the same call yields the same error. Callers should compare with errors.Is,
// since most call sites wrap these values with additional context.
package errs

import "errors"

// Transform preconditions.
var (
	// ErrAlreadyInitialized is returned when a forward transform receives a
	// metadata slot that already holds a blob.
	ErrAlreadyInitialized = errors.New("metadata slot already initialized")
	// ErrNilMeta is returned when a forward transform receives a nil slot.
	ErrNilMeta = errors.New("metadata slot is nil")
	// ErrLengthMismatch is returned when a buffer length disagrees with the
	// length recorded in metadata or implied by the volume dimensions.
	ErrLengthMismatch = errors.New("buffer length mismatch")
	// ErrUnsupportedType is returned for an element type tag or precision flag
	// that is neither float32 nor float64.
	ErrUnsupportedType = errors.New("unsupported element type")
	// ErrAllocationFailure is returned when backing storage for a metadata blob
	// or a scratch buffer cannot be obtained.
	ErrAllocationFailure = errors.New("allocation failure")
	// ErrInvalidDims is returned for a volume with a zero extent or with a
	// group count that cannot be described by the metadata header.
	ErrInvalidDims = errors.New("invalid volume dimensions")
)

// Metadata decoding.
var (
	ErrInvalidMetaSize  = errors.New("invalid metadata size")
	ErrInvalidTreatment = errors.New("invalid treatment descriptor")
	ErrCorruptMeta      = errors.New("corrupt metadata")
)

// Record container.
var (
	ErrInvalidHeaderSize  = errors.New("invalid record header size")
	ErrInvalidMagicNumber = errors.New("invalid record magic number")
	ErrInvalidVersion     = errors.New("unsupported record version")
	ErrInvalidKind        = errors.New("invalid transform kind")
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrChecksumMismatch   = errors.New("record checksum mismatch")
	ErrRecordNotFound     = errors.New("record not found")
	ErrDuplicateRecord    = errors.New("duplicate record name")
	ErrInvalidRecordName  = errors.New("invalid record name")
	// ErrHashCollision is returned when two distinct record names hash to the
	// same identifier. Records are looked up by identifier, so the set cannot
	// hold both.
	ErrHashCollision = errors.New("record name hash collision")
)

// Type-erased buffers.
var (
	// ErrUnalignedBuffer is returned when a raw byte buffer cannot be viewed as
	// elements because its address is not a multiple of the element size.
	ErrUnalignedBuffer = errors.New("raw buffer is not aligned to the element size")
)

// Compression.
var (
	// ErrIncompressible is returned by a codec that cannot shrink its input.
	ErrIncompressible = errors.New("input is not compressible")
)
