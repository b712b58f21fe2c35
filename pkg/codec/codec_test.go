package codec

import (
	"encoding/binary"
	"testing"

	"github.com/contrub/bej-parser/pkg/consts"
	"github.com/contrub/bej-parser/pkg/dictionary"
	"github.com/contrub/bej-parser/pkg/value"
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

func header(entryCount uint16) []byte {
	h := make([]byte, consts.DictionaryHeaderSize)
	h[0] = 1
	binary.LittleEndian.PutUint16(h[2:4], entryCount)
	return h
}

// singleChildDict builds a root SET with exactly one named child of the
// given format, for the S1-S3 scenarios.
func singleChildDict(t *testing.T, childName string, childFormat consts.Format) *dictionary.Dictionary {
	t.Helper()
	const rootOffset = consts.DictionaryHeaderSize
	const childOffset = rootOffset + consts.DictionaryEntrySize
	nameOffset := uint16(childOffset + consts.DictionaryEntrySize)

	buf := header(2)
	buf = buildEntry(buf, consts.FormatSet, 0, 0, childOffset, 1, 0, 0)
	buf = buildEntry(buf, childFormat, 0, 0, 0, 0, nameOffset, uint8(len(childName)))
	buf = append(buf, append([]byte(childName), 0x00)...)

	dict, err := dictionary.Open(buf)
	require.NoError(t, err)
	return dict
}

func rootEntry(t *testing.T, dict *dictionary.Dictionary) dictionary.Entry {
	t.Helper()
	root, err := dict.RootEntry()
	require.NoError(t, err)
	return root
}

// TestS1Boolean encodes and decodes {"Ok": true} against a single BOOLEAN
// child, per scenario S1.
func TestS1Boolean(t *testing.T) {
	dict := singleChildDict(t, "Ok", consts.FormatBoolean)
	root := rootEntry(t, dict)

	obj := value.Object(value.Member{Key: "Ok", Value: value.Bool(true)})
	encoded, err := EncodeRootPayload(obj, root, dict, nil, DefaultOptions())
	require.NoError(t, err)

	decoded, err := DecodeRootPayload(encoded, root, dict, nil, DefaultOptions())
	require.NoError(t, err)
	require.True(t, value.Equal(obj, decoded))
}

// TestS2NegativeInteger exercises scenario S2: {"N": -1} must encode as
// a one-byte two's-complement payload of 0xFF.
func TestS2NegativeInteger(t *testing.T) {
	dict := singleChildDict(t, "N", consts.FormatInteger)
	root := rootEntry(t, dict)

	obj := value.Object(value.Member{Key: "N", Value: value.Number(-1)})
	encoded, err := EncodeRootPayload(obj, root, dict, nil, DefaultOptions())
	require.NoError(t, err)

	// nnint(1 prop) | SFL(seq0,INTEGER,len3) | nnint(1) | 0xFF
	require.Contains(t, string(encoded), string([]byte{0x01, 0xFF}))

	decoded, err := DecodeRootPayload(encoded, root, dict, nil, DefaultOptions())
	require.NoError(t, err)
	require.True(t, value.Equal(obj, decoded))
}

// TestS3String exercises scenario S3: {"S": "hi"}.
func TestS3String(t *testing.T) {
	dict := singleChildDict(t, "S", consts.FormatString)
	root := rootEntry(t, dict)

	obj := value.Object(value.Member{Key: "S", Value: value.String("hi")})
	encoded, err := EncodeRootPayload(obj, root, dict, nil, DefaultOptions())
	require.NoError(t, err)
	require.Contains(t, string(encoded), string([]byte{0x68, 0x69, 0x00}))

	decoded, err := DecodeRootPayload(encoded, root, dict, nil, DefaultOptions())
	require.NoError(t, err)
	require.True(t, value.Equal(obj, decoded))
}

// TestS4Enum exercises scenario S4: an ENUM property resolving the string
// "Disabled" to its dictionary sequence number (1) and back.
func TestS4Enum(t *testing.T) {
	const rootOffset = consts.DictionaryHeaderSize
	const stateOffset = rootOffset + consts.DictionaryEntrySize
	const enabledOffset = stateOffset + consts.DictionaryEntrySize
	const disabledOffset = enabledOffset + consts.DictionaryEntrySize
	stateNameOff := uint16(disabledOffset + consts.DictionaryEntrySize)
	enabledNameOff := stateNameOff + uint16(len("State\x00"))
	disabledNameOff := enabledNameOff + uint16(len("Enabled\x00"))

	buf := header(4)
	buf = buildEntry(buf, consts.FormatSet, 0, 0, stateOffset, 1, 0, 0)
	buf = buildEntry(buf, consts.FormatEnum, 0, 0, enabledOffset, 2, stateNameOff, uint8(len("State")))
	buf = buildEntry(buf, consts.FormatEnum, 0, 0, 0, 0, enabledNameOff, uint8(len("Enabled")))
	buf = buildEntry(buf, consts.FormatEnum, 0, 1, 0, 0, disabledNameOff, uint8(len("Disabled")))
	buf = append(buf, []byte("State\x00Enabled\x00Disabled\x00")...)

	dict, err := dictionary.Open(buf)
	require.NoError(t, err)
	root := rootEntry(t, dict)

	obj := value.Object(value.Member{Key: "State", Value: value.String("Disabled")})
	encoded, err := EncodeRootPayload(obj, root, dict, nil, DefaultOptions())
	require.NoError(t, err)

	decoded, err := DecodeRootPayload(encoded, root, dict, nil, DefaultOptions())
	require.NoError(t, err)
	require.True(t, value.Equal(obj, decoded))
}

// TestS5Array exercises scenario S5: {"Xs":[0,1,2]} against an ARRAY of
// an INTEGER element template.
func TestS5Array(t *testing.T) {
	const rootOffset = consts.DictionaryHeaderSize
	const xsOffset = rootOffset + consts.DictionaryEntrySize
	const elemOffset = xsOffset + consts.DictionaryEntrySize
	xsNameOff := uint16(elemOffset + consts.DictionaryEntrySize)

	buf := header(3)
	buf = buildEntry(buf, consts.FormatSet, 0, 0, xsOffset, 1, 0, 0)
	buf = buildEntry(buf, consts.FormatArray, 0, 0, elemOffset, consts.ChildCountWildcard, xsNameOff, uint8(len("Xs")))
	buf = buildEntry(buf, consts.FormatInteger, 0, 0, 0, consts.ChildCountWildcard, 0, 0)
	buf = append(buf, []byte("Xs\x00")...)

	dict, err := dictionary.Open(buf)
	require.NoError(t, err)
	root := rootEntry(t, dict)

	obj := value.Object(value.Member{Key: "Xs", Value: value.Array(
		value.Number(0), value.Number(1), value.Number(2),
	)})
	encoded, err := EncodeRootPayload(obj, root, dict, nil, DefaultOptions())
	require.NoError(t, err)

	decoded, err := DecodeRootPayload(encoded, root, dict, nil, DefaultOptions())
	require.NoError(t, err)
	require.True(t, value.Equal(obj, decoded))
}

// TestS6Annotation exercises scenario S6: a top-level "@"-prefixed key
// resolved against the annotation dictionary from its own root, with the
// selector bit set on the wire.
func TestS6Annotation(t *testing.T) {
	schema := singleChildDict(t, "Ok", consts.FormatBoolean)
	root := rootEntry(t, schema)

	annotNameOff := uint16(consts.DictionaryHeaderSize + consts.DictionaryEntrySize)
	annotBuf := header(1)
	annotBuf = buildEntry(annotBuf, consts.FormatString, 0, 0, 0, 0, annotNameOff, uint8(len("@odata.type")))
	annotBuf = append(annotBuf, []byte("@odata.type\x00")...)
	annot, err := dictionary.Open(annotBuf)
	require.NoError(t, err)

	obj := value.Object(
		value.Member{Key: "Ok", Value: value.Bool(true)},
		value.Member{Key: "@odata.type", Value: value.String("#T.v1_0_0.T")},
	)
	encoded, err := EncodeRootPayload(obj, root, schema, annot, DefaultOptions())
	require.NoError(t, err)

	decoded, err := DecodeRootPayload(encoded, root, schema, annot, DefaultOptions())
	require.NoError(t, err)
	require.True(t, value.Equal(obj, decoded))
}

// TestEncodeStrictRejectsUnknownKey exercises Open Question 1: the
// default strict option must reject a key absent from the dictionary.
func TestEncodeStrictRejectsUnknownKey(t *testing.T) {
	dict := singleChildDict(t, "Ok", consts.FormatBoolean)
	root := rootEntry(t, dict)

	obj := value.Object(value.Member{Key: "Missing", Value: value.Bool(true)})
	_, err := EncodeRootPayload(obj, root, dict, nil, DefaultOptions())
	require.Error(t, err)
}

// TestEncodeLenientDropsUnknownKey verifies that disabling strict mode
// silently drops an unresolvable key instead of failing.
func TestEncodeLenientDropsUnknownKey(t *testing.T) {
	dict := singleChildDict(t, "Ok", consts.FormatBoolean)
	root := rootEntry(t, dict)

	obj := value.Object(value.Member{Key: "Missing", Value: value.Bool(true)})
	encoded, err := EncodeRootPayload(obj, root, dict, nil, Options{StrictUnknownKeys: false})
	require.NoError(t, err)

	decoded, err := DecodeRootPayload(encoded, root, dict, nil, DefaultOptions())
	require.NoError(t, err)
	require.True(t, value.Equal(value.Object(), decoded))
}

// TestEmptyObjectRoundTrips covers the boundary case of a root SET with
// zero properties.
func TestEmptyObjectRoundTrips(t *testing.T) {
	dict := singleChildDict(t, "Ok", consts.FormatBoolean)
	root := rootEntry(t, dict)

	obj := value.Object()
	encoded, err := EncodeRootPayload(obj, root, dict, nil, DefaultOptions())
	require.NoError(t, err)

	decoded, err := DecodeRootPayload(encoded, root, dict, nil, DefaultOptions())
	require.NoError(t, err)
	require.True(t, value.Equal(obj, decoded))
}

// TestDecodeUnrecognizedFormatYieldsNull resolves Open Question 3: a
// well-framed but unrecognized format byte decodes to JSON null rather
// than being silently skipped with no emitted token.
func TestDecodeUnrecognizedFormatYieldsNull(t *testing.T) {
	dict := singleChildDict(t, "Ok", consts.FormatBoolean)
	root, err := dict.RootEntry()
	require.NoError(t, err)

	child, ok, err := dict.FindByName(root.ChildPointer, root.ChildCount, "Ok")
	require.NoError(t, err)
	require.True(t, ok)

	v, err := decodeValue(nil, child, consts.Format(0x0F), dict, nil, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, value.KindNull, v.Kind)
}
