// Package endian provides the byte order helpers used by every mkit wire format.
//
// All conditioning metadata is stored little-endian regardless of the host, so
// blobs written on one machine can be inverted on another. The raw element
// buffers handed to the type-erased boundary, on the other hand, are in host
// order, exactly as a simulation code writes them to disk. This package exposes
// both views.
//
// # Basic Usage
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, bufLen)
//	buf = endian.AppendFloat64(engine, buf, mean)
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine values are immutable and stateless.
package endian

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. A little-endian host stores the LSB (0x00) first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
//
// When it is, a little-endian word stream is copied byte for byte instead of
// being encoded or decoded word by word.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

var nativeLittle = IsNativeLittleEndian()

// wordBytes views words as their host-order bytes.
func wordBytes(words []uint64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(words)*8)
}

// isHostOrder reports whether engine matches the host byte order.
func isHostOrder(engine EndianEngine) bool {
	if nativeLittle {
		return engine == binary.LittleEndian
	}

	return engine == binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine, the byte order of all
// mkit metadata.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// AppendFloat64 appends the IEEE 754 bits of v to buf.
func AppendFloat64(engine EndianEngine, buf []byte, v float64) []byte {
	return engine.AppendUint64(buf, math.Float64bits(v))
}

// AppendFloat32 appends the IEEE 754 bits of v to buf.
func AppendFloat32(engine EndianEngine, buf []byte, v float32) []byte {
	return engine.AppendUint32(buf, math.Float32bits(v))
}

// Float64 decodes a float64 from the first 8 bytes of b.
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}

// Float32 decodes a float32 from the first 4 bytes of b.
func Float32(engine EndianEngine, b []byte) float32 {
	return math.Float32frombits(engine.Uint32(b))
}

// PutWords writes words into dst in the engine's byte order.
// dst must hold at least len(words)*8 bytes.
func PutWords(engine EndianEngine, dst []byte, words []uint64) {
	if isHostOrder(engine) {
		copy(dst[:len(words)*8], wordBytes(words))
		return
	}
	for i, w := range words {
		engine.PutUint64(dst[i*8:], w)
	}
}

// ReadWords fills words from src in the engine's byte order.
// src must hold at least len(words)*8 bytes.
func ReadWords(engine EndianEngine, words []uint64, src []byte) {
	if isHostOrder(engine) {
		copy(wordBytes(words), src[:len(words)*8])
		return
	}
	for i := range words {
		words[i] = engine.Uint64(src[i*8:])
	}
}
