package dictionary

import (
	"encoding/binary"
	"testing"

	"github.com/contrub/bej-parser/pkg/consts"
	"github.com/stretchr/testify/require"
)

// buildEntry appends one 10-byte dictionary entry to buf.
func buildEntry(buf []byte, format consts.Format, flags uint8, seq, childPtr, childCount uint16, nameOffset uint16, nameLen uint8) []byte {
	entry := make([]byte, consts.DictionaryEntrySize)
	entry[0] = byte(format)<<4 | flags&0x0F
	binary.LittleEndian.PutUint16(entry[1:3], seq)
	binary.LittleEndian.PutUint16(entry[3:5], childPtr)
	binary.LittleEndian.PutUint16(entry[5:7], childCount)
	entry[7] = nameLen
	binary.LittleEndian.PutUint16(entry[8:10], nameOffset)
	return append(buf, entry...)
}

// s1Dictionary builds the S1 scenario dictionary from the base spec: a
// root SET with a single child "Ok" at sequence 0, format BOOLEAN.
func s1Dictionary(t *testing.T) *Dictionary {
	t.Helper()

	header := make([]byte, consts.DictionaryHeaderSize)
	header[0] = 1 // version
	binary.LittleEndian.PutUint16(header[2:4], 2) // entry_count = root + "Ok"

	buf := append([]byte{}, header...)
	// Entry 0: root SET, child at offset 22 (12 + 10), 1 child.
	buf = buildEntry(buf, consts.FormatSet, 0, 0, consts.DictionaryHeaderSize+consts.DictionaryEntrySize, 1, 0, 0)
	// Entry 1: "Ok" BOOLEAN, no children, name at the name table start.
	nameOffset := uint16(consts.DictionaryHeaderSize + 2*consts.DictionaryEntrySize)
	buf = buildEntry(buf, consts.FormatBoolean, 0, 0, 0, 0, nameOffset, 2)
	buf = append(buf, []byte("Ok\x00")...)

	dict, err := Open(buf)
	require.NoError(t, err)
	return dict
}

func TestOpenRejectsShortBlob(t *testing.T) {
	_, err := Open([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestOpenRejectsOverrunEntryTable(t *testing.T) {
	header := make([]byte, consts.DictionaryHeaderSize)
	binary.LittleEndian.PutUint16(header[2:4], 5) // claims 5 entries but blob has none
	_, err := Open(header)
	require.Error(t, err)
}

func TestRootEntry(t *testing.T) {
	dict := s1Dictionary(t)
	root, err := dict.RootEntry()
	require.NoError(t, err)
	require.Equal(t, consts.FormatSet, root.Format)
	require.Equal(t, uint16(1), root.ChildCount)
}

func TestFindByNameAndSequence(t *testing.T) {
	dict := s1Dictionary(t)
	root, err := dict.RootEntry()
	require.NoError(t, err)

	child, ok, err := dict.FindByName(root.ChildPointer, root.ChildCount, "Ok")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, consts.FormatBoolean, child.Format)

	byName, ok, err := dict.FindBySequence(root.ChildPointer, root.ChildCount, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Ok", byName.Name)

	_, ok, err = dict.FindByName(root.ChildPointer, root.ChildCount, "Missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIterAllCoversEveryEntry(t *testing.T) {
	dict := s1Dictionary(t)
	it := dict.IterAll()
	count := 0
	for it.HasNext() {
		_, err := it.Next()
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 2, count)
}

func TestIterSubsetWildcard(t *testing.T) {
	// A wildcard subset iterates until the end of the blob.
	dict := s1Dictionary(t)
	it := dict.IterSubset(consts.DictionaryHeaderSize, consts.ChildCountWildcard)
	count := 0
	for it.HasNext() {
		_, err := it.Next()
		require.NoError(t, err)
		count++
	}
	require.GreaterOrEqual(t, count, 1)
}

func TestChecksumDeterministic(t *testing.T) {
	dict := s1Dictionary(t)
	require.Equal(t, dict.Checksum(), dict.Checksum())
	require.True(t, dict.VerifyChecksum(dict.Checksum()))
}
