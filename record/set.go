package record

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/mkit/endian"
	"github.com/arloliu/mkit/errs"
	"github.com/arloliu/mkit/internal/collision"
	"github.com/arloliu/mkit/internal/hash"
	"github.com/arloliu/mkit/internal/pool"
	"github.com/arloliu/mkit/section"
)

const maxNameLen = math.MaxUint16

type setEntry struct {
	id     uint64
	name   string
	record Record
}

// Set collects the records of several named variables.
//
// A Set is not safe for concurrent mutation.
type Set struct {
	entries []setEntry
	names   *collision.Tracker
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{names: collision.NewTracker()}
}

// Add stores r under name.
//
// Returns:
//   - error: ErrInvalidRecordName for an empty or oversized name,
//     ErrDuplicateRecord if name is already present, ErrHashCollision if
//     another name with the same hash is
func (s *Set) Add(name string, r Record) error {
	if len(name) > maxNameLen {
		return fmt.Errorf("%w: %d bytes exceeds %d", errs.ErrInvalidRecordName, len(name), maxNameLen)
	}

	id := hash.ID(name)
	if err := s.names.Track(name, id); err != nil {
		return fmt.Errorf("%w: %q", err, name)
	}
	s.entries = append(s.entries, setEntry{id: id, name: name, record: r})

	return nil
}

// Len returns the number of records.
func (s *Set) Len() int {
	return s.names.Count()
}

// Encode serializes the set.
//
// Records are compressed concurrently, bounded by WithConcurrency, and laid
// out in ascending name-hash order behind a fixed-size index.
//
// Parameters:
//   - ctx: Cancels encoding between records
//   - opts: WithCompression, WithConcurrency
//
// Returns:
//   - []byte: Encoded set
//   - error: The first record encoding error, or ctx.Err()
func (s *Set) Encode(ctx context.Context, opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(s.entries)
	slices.SortFunc(sorted, func(a, b setEntry) int {
		return cmp.Compare(a.id, b.id)
	})

	encoded := make([][]byte, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, e := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := encode(e.record, cfg.compression)
			if err != nil {
				return fmt.Errorf("record %q: %w", e.name, err)
			}
			encoded[i] = data

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return layoutSet(sorted, encoded)
}

func layoutSet(sorted []setEntry, encoded [][]byte) ([]byte, error) {
	if uint64(len(sorted)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d records", errs.ErrInvalidHeaderSize, len(sorted))
	}

	hdr := section.RecordSetHeader{Version: section.RecordVersion, Count: uint32(len(sorted))}
	index := make([]byte, hdr.IndexSize())

	bb := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(bb)

	engine := endian.GetLittleEndianEngine()
	var lenPrefix [section.RecordNameLenSize]byte
	pos := 0
	for i, e := range sorted {
		offset := uint64(bb.Len())
		length := uint64(section.RecordNameLenSize + len(e.name) + len(encoded[i]))
		if offset+length > math.MaxUint32 {
			return nil, fmt.Errorf("%w: record set data exceeds 4GiB", errs.ErrInvalidMetaSize)
		}

		engine.PutUint16(lenPrefix[:], uint16(len(e.name)))
		_, _ = bb.Write(lenPrefix[:])
		_, _ = bb.Write([]byte(e.name))
		_, _ = bb.Write(encoded[i])

		entry := section.RecordIndexEntry{ID: e.id, Offset: uint32(offset), Length: uint32(length)}
		pos = entry.WriteToSlice(index, pos)
	}

	out := make([]byte, 0, section.RecordSetHeaderSize+len(index)+bb.Len())
	out = append(out, hdr.Bytes()...)
	out = append(out, index...)

	return append(out, bb.Bytes()...), nil
}

// DecodedSet is a read-only view of an encoded record set. Records are
// decoded on demand.
type DecodedSet struct {
	index []section.RecordIndexEntry
	data  []byte
}

// DecodeSet parses the header and index of an encoded set. The returned view
// references data, which must not be modified while the view is in use.
//
// Returns:
//   - *DecodedSet: View over the set
//   - error: ErrInvalidHeaderSize, ErrInvalidMagicNumber, ErrInvalidVersion or
//     ErrCorruptMeta for an index pointing outside the data
func DecodeSet(data []byte) (*DecodedSet, error) {
	hdr, err := section.ParseRecordSetHeader(data)
	if err != nil {
		return nil, err
	}

	indexEnd := uint64(section.RecordSetHeaderSize) + hdr.IndexSize()
	if uint64(len(data)) < indexEnd {
		return nil, fmt.Errorf("%w: index of %d entries is truncated", errs.ErrInvalidHeaderSize, hdr.Count)
	}

	body := data[indexEnd:]
	index := make([]section.RecordIndexEntry, hdr.Count)
	for i := range index {
		off := section.RecordSetHeaderSize + i*section.RecordIndexEntrySize
		entry, err := section.ParseRecordIndexEntry(data[off:])
		if err != nil {
			return nil, err
		}
		if entry.End() > uint64(len(body)) || entry.Length < section.RecordNameLenSize {
			return nil, fmt.Errorf("%w: index entry %d points outside the set", errs.ErrCorruptMeta, i)
		}
		if i > 0 && entry.ID <= index[i-1].ID {
			return nil, fmt.Errorf("%w: index is not sorted", errs.ErrCorruptMeta)
		}
		index[i] = entry
	}

	return &DecodedSet{index: index, data: body}, nil
}

// Len returns the number of records.
func (d *DecodedSet) Len() int {
	return len(d.index)
}

func (d *DecodedSet) entry(i int) (string, []byte, error) {
	e := d.index[i]
	chunk := d.data[e.Offset:e.End()]
	nameLen := int(endian.GetLittleEndianEngine().Uint16(chunk))
	if section.RecordNameLenSize+nameLen > len(chunk) {
		return "", nil, fmt.Errorf("%w: name of entry %d overruns its data", errs.ErrCorruptMeta, i)
	}
	rest := chunk[section.RecordNameLenSize:]

	return string(rest[:nameLen]), rest[nameLen:], nil
}

// Names returns the record names in index order.
func (d *DecodedSet) Names() ([]string, error) {
	names := make([]string, len(d.index))
	for i := range d.index {
		name, _, err := d.entry(i)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}

	return names, nil
}

// Info returns the header of the record stored under name.
func (d *DecodedSet) Info(name string) (Info, error) {
	data, err := d.lookup(name)
	if err != nil {
		return Info{}, err
	}

	return ReadInfo(data)
}

// Get decodes the record stored under name.
//
// Returns:
//   - Record: Decoded record
//   - error: ErrRecordNotFound, or any error of Decode
func (d *DecodedSet) Get(name string) (Record, error) {
	data, err := d.lookup(name)
	if err != nil {
		return Record{}, err
	}

	return Decode(data)
}

func (d *DecodedSet) lookup(name string) ([]byte, error) {
	id := hash.ID(name)
	i, ok := slices.BinarySearchFunc(d.index, id, func(e section.RecordIndexEntry, id uint64) int {
		return cmp.Compare(e.ID, id)
	})
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrRecordNotFound, name)
	}

	stored, data, err := d.entry(i)
	if err != nil {
		return nil, err
	}
	if stored != name {
		return nil, fmt.Errorf("%w: %q", errs.ErrRecordNotFound, name)
	}

	return data, nil
}
