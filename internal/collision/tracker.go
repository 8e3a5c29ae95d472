package collision

import (
	"github.com/arloliu/mkit/errs"
)

// Tracker tracks record names and their hashes while a record set is built.
// A set addresses records by name hash only, so a hash shared by two distinct
// names cannot be stored and is reported instead.
type Tracker struct {
	names map[uint64]string // Hash → name mapping for collision detection
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64]string),
	}
}

// Track records name under its hash.
//
// Returns:
//   - error: ErrInvalidRecordName for an empty name, ErrDuplicateRecord if the
//     same name was tracked before, ErrHashCollision if a different name
//     already owns hash
func (t *Tracker) Track(name string, hash uint64) error {
	if name == "" {
		return errs.ErrInvalidRecordName
	}

	if existing, exists := t.names[hash]; exists {
		if existing == name {
			return errs.ErrDuplicateRecord
		}

		return errs.ErrHashCollision
	}

	t.names[hash] = name

	return nil
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.names)
}
