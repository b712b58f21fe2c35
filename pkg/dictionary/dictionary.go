// Package dictionary implements the immutable, borrowed view over a BEJ
// schema or annotation dictionary blob: header parsing, typed entry
// decoding, subset iteration, and name/sequence lookup. Grounded on
// bej_dictionary.c/.h in the C reference.
package dictionary

import (
	"encoding/binary"
	"fmt"

	"github.com/contrub/bej-parser/pkg/bejerr"
	"github.com/contrub/bej-parser/pkg/consts"
)

// Dictionary is a read-only view over a dictionary byte blob. The blob is
// retained by reference; Entry values returned by this type carry a copy
// of their Name taken from it.
type Dictionary struct {
	blob       []byte
	entryCount uint16
}

// Open validates and wraps a dictionary blob. It fails when the blob is
// shorter than the 12-byte header or when the entry table would overrun
// the blob.
func Open(blob []byte) (*Dictionary, error) {
	if len(blob) < consts.DictionaryHeaderSize {
		return nil, fmt.Errorf("%w: blob of %d bytes shorter than %d-byte header", bejerr.ErrMalformedDictionary, len(blob), consts.DictionaryHeaderSize)
	}

	entryCount := binary.LittleEndian.Uint16(blob[2:4])
	entriesEnd := consts.DictionaryHeaderSize + int(entryCount)*consts.DictionaryEntrySize
	if entriesEnd > len(blob) {
		return nil, fmt.Errorf("%w: entry table of %d entries overruns %d-byte blob", bejerr.ErrMalformedDictionary, entryCount, len(blob))
	}

	return &Dictionary{blob: blob, entryCount: entryCount}, nil
}

// EntryCount returns the number of entries declared in the dictionary
// header.
func (d *Dictionary) EntryCount() uint16 {
	return d.entryCount
}

// RootEntry returns the entry at index 0, the conventional root of a
// schema dictionary.
func (d *Dictionary) RootEntry() (Entry, error) {
	if d.entryCount == 0 {
		return Entry{}, fmt.Errorf("%w: dictionary has no entries", bejerr.ErrMalformedDictionary)
	}
	return d.readEntryAt(consts.DictionaryHeaderSize)
}

// readEntryAt decodes the 10-byte entry at the given absolute byte offset.
func (d *Dictionary) readEntryAt(offset int) (Entry, error) {
	if offset < 0 || offset+consts.DictionaryEntrySize > len(d.blob) {
		return Entry{}, fmt.Errorf("%w: entry at offset %d overruns blob", bejerr.ErrMalformedDictionary, offset)
	}

	raw := d.blob[offset : offset+consts.DictionaryEntrySize]
	formatFlags := raw[0]

	entry := Entry{
		Format:       consts.Format(formatFlags >> 4),
		Flags:        formatFlags & 0x0F,
		Sequence:     binary.LittleEndian.Uint16(raw[1:3]),
		ChildPointer: binary.LittleEndian.Uint16(raw[3:5]),
		ChildCount:   binary.LittleEndian.Uint16(raw[5:7]),
	}

	nameLen := raw[7]
	nameOffset := binary.LittleEndian.Uint16(raw[8:10])
	if nameLen > 0 {
		if int(nameOffset) >= len(d.blob) {
			return Entry{}, fmt.Errorf("%w: entry at offset %d has name offset %d outside %d-byte blob", bejerr.ErrMalformedDictionary, offset, nameOffset, len(d.blob))
		}
		entry.Name = d.readName(int(nameOffset))
	}

	return entry, nil
}

// readName reads a null-terminated UTF-8 string starting at offset. If no
// terminator is found before the end of the blob, the remainder of the
// blob is returned as-is; callers that require a terminator should treat
// a name reaching the blob boundary with suspicion, but this view does
// not itself reject it (mirroring the permissive C reference).
func (d *Dictionary) readName(offset int) string {
	end := offset
	for end < len(d.blob) && d.blob[end] != 0x00 {
		end++
	}
	return string(d.blob[offset:end])
}

// Iterator walks a bounded or wildcard-bounded run of dictionary entries.
// Grounded on bej_dict_stream_t.
type Iterator struct {
	dict     *Dictionary
	index    int
	wildcard bool
	count    int
	seen     int
}

// IterAll returns an iterator over every entry in the dictionary's entry
// table, starting at offset 12.
func (d *Dictionary) IterAll() *Iterator {
	return &Iterator{dict: d, index: consts.DictionaryHeaderSize, count: int(d.entryCount)}
}

// IterSubset returns an iterator over childCount entries starting at the
// absolute byte offset childPointer. When childCount is the wildcard
// value 0xFFFF, iteration instead proceeds until the end of the blob.
func (d *Dictionary) IterSubset(childPointer, childCount uint16) *Iterator {
	if childCount == consts.ChildCountWildcard {
		return &Iterator{dict: d, index: int(childPointer), wildcard: true}
	}
	return &Iterator{dict: d, index: int(childPointer), count: int(childCount)}
}

// HasNext reports whether another entry remains.
func (it *Iterator) HasNext() bool {
	if it.wildcard {
		return it.index+consts.DictionaryEntrySize <= len(it.dict.blob)
	}
	return it.seen < it.count
}

// Next decodes and returns the next entry in the subset.
func (it *Iterator) Next() (Entry, error) {
	if !it.HasNext() {
		return Entry{}, fmt.Errorf("%w: iterator exhausted", bejerr.ErrMalformedDictionary)
	}
	entry, err := it.dict.readEntryAt(it.index)
	if err != nil {
		return Entry{}, err
	}
	it.index += consts.DictionaryEntrySize
	it.seen++
	return entry, nil
}

// FindByName performs a linear scan of the subset [childPointer,
// childCount) for an entry whose name exactly matches name, returning the
// first match. Grounded on bej_dict_find_child_by_name.
func (d *Dictionary) FindByName(childPointer, childCount uint16, name string) (Entry, bool, error) {
	it := d.IterSubset(childPointer, childCount)
	for it.HasNext() {
		entry, err := it.Next()
		if err != nil {
			return Entry{}, false, err
		}
		if entry.Name == name {
			return entry, true, nil
		}
	}
	return Entry{}, false, nil
}

// FindBySequence performs a linear scan of the subset [childPointer,
// childCount) for an entry whose sequence number equals seq, returning
// the first match. Entries are sorted by sequence ascending, but this
// scan does not rely on that for correctness, only (potentially) for an
// early exit an implementation might add later.
func (d *Dictionary) FindBySequence(childPointer, childCount uint16, seq uint64) (Entry, bool, error) {
	it := d.IterSubset(childPointer, childCount)
	for it.HasNext() {
		entry, err := it.Next()
		if err != nil {
			return Entry{}, false, err
		}
		if uint64(entry.Sequence) == seq {
			return entry, true, nil
		}
	}
	return Entry{}, false, nil
}
