// Package meta provides Blob, the owned container for conditioning metadata.
//
// A forward transform fills an empty Blob; the caller owns it from then on,
// persists Bytes() wherever the conditioned data goes, and hands the bytes back
// to the matching inverse transform. The core never retains a Blob across
// calls.
//
//	var m meta.Blob
//	if err := transform.SmartLog(values, &m); err != nil {
//	    return err
//	}
//	store(m.Bytes())
//	m.Release()
package meta

// Blob is a metadata slot owning a byte slice with an explicit length.
//
// The zero value is an empty slot, ready for a forward transform.
type Blob struct {
	b []byte
}

// FromBytes wraps persisted metadata. The blob takes ownership of b.
func FromBytes(b []byte) Blob {
	return Blob{b: b}
}

// Bytes returns the metadata. The caller must not modify the slice while the
// blob is in use.
func (m *Blob) Bytes() []byte {
	return m.b
}

// Len returns the metadata length in bytes.
func (m *Blob) Len() int {
	return len(m.b)
}

// IsEmpty reports whether the slot holds no metadata.
func (m *Blob) IsEmpty() bool {
	return m.b == nil
}

// Set stores b in an empty slot. It reports false, leaving the slot
// untouched, when the slot already holds metadata.
func (m *Blob) Set(b []byte) bool {
	if m.b != nil {
		return false
	}
	if b == nil {
		b = []byte{}
	}
	m.b = b

	return true
}

// Release drops the metadata and returns the slot to the empty state.
func (m *Blob) Release() {
	m.b = nil
}

// Clone returns an independent copy of the blob.
func (m *Blob) Clone() Blob {
	if m.b == nil {
		return Blob{}
	}

	return Blob{b: append([]byte(nil), m.b...)}
}
