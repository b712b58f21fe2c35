package codec

import (
	"fmt"

	"github.com/contrub/bej-parser/pkg/bejerr"
	"github.com/contrub/bej-parser/pkg/consts"
	"github.com/contrub/bej-parser/pkg/dictionary"
	"github.com/contrub/bej-parser/pkg/nnint"
	"github.com/contrub/bej-parser/pkg/sfl"
	"github.com/contrub/bej-parser/pkg/value"
)

// DecodeRootPayload decodes a root SET payload (as produced by
// EncodeRootPayload) back into a JSON object, resolving property sequence
// numbers against rootEntry. Grounded on the payload half of
// bej_decode_stream_internal.
func DecodeRootPayload(data []byte, rootEntry dictionary.Entry, schema, annot *dictionary.Dictionary, opts Options) (value.Value, error) {
	obj, _, err := decodeProperties(data, rootEntry, schema, annot, opts)
	return obj, err
}

// decodeProperties reads nnint(count) resolved properties from the front
// of data and returns the assembled JSON object plus bytes consumed.
// Grounded on decode_set in bej_decode.c.
func decodeProperties(data []byte, parent dictionary.Entry, schema, annot *dictionary.Dictionary, opts Options) (value.Value, int, error) {
	count, n, err := nnint.Decode(data)
	if err != nil {
		return value.Value{}, 0, fmt.Errorf("decode properties: %w", err)
	}
	pos := n

	var members []value.Member
	for i := uint64(0); i < count; i++ {
		member, consumed, err := decodeOneProperty(data[pos:], parent, schema, annot, opts)
		if err != nil {
			return value.Value{}, 0, err
		}
		members = append(members, member)
		pos += consumed
	}

	return value.Object(members...), pos, nil
}

// decodeOneProperty reads one SFL-framed property and resolves it to a
// named JSON member by looking its sequence number up in the appropriate
// dictionary, selected by the SFL's selector bit.
func decodeOneProperty(data []byte, parent dictionary.Entry, schema, annot *dictionary.Dictionary, opts Options) (value.Member, int, error) {
	frame, n, err := sfl.Unpack(data)
	if err != nil {
		return value.Member{}, 0, err
	}

	if n+int(frame.Length) > len(data) {
		return value.Member{}, 0, fmt.Errorf("%w: property payload of %d bytes overruns %d remaining", bejerr.ErrMalformedStream, frame.Length, len(data)-n)
	}
	payload := data[n : n+int(frame.Length)]

	var dict *dictionary.Dictionary
	var childPtr, childCount uint16
	if frame.Selector == consts.SelectorAnnotation {
		dict = annot
		if dict != nil {
			childPtr, childCount = consts.DictionaryHeaderSize, dict.EntryCount()
		}
	} else {
		dict = schema
		childPtr, childCount = parent.ChildPointer, parent.ChildCount
	}

	if dict == nil {
		return value.Member{}, 0, fmt.Errorf("%w: property references the %s dictionary, which was not supplied", bejerr.ErrSchemaMismatch, dictKind(frame.Selector == consts.SelectorAnnotation))
	}

	entry, ok, err := dict.FindBySequence(childPtr, childCount, frame.Sequence)
	if err != nil {
		return value.Member{}, 0, err
	}
	if !ok {
		return value.Member{}, 0, fmt.Errorf("%w: sequence %d not found in dictionary", bejerr.ErrSchemaMismatch, frame.Sequence)
	}

	val, err := decodeValue(payload, entry, frame.Format, schema, annot, opts)
	if err != nil {
		return value.Member{}, 0, err
	}

	return value.Member{Key: entry.Name, Value: val}, n + int(frame.Length), nil
}

// decodeValue interprets payload according to wireFormat (the format byte
// actually observed on the wire, which may legitimately differ from the
// dictionary-declared format for a PROPERTY_ANNOTATION wrapper). Grounded
// on decode_value in bej_decode.c.
func decodeValue(payload []byte, entry dictionary.Entry, wireFormat consts.Format, schema, annot *dictionary.Dictionary, opts Options) (value.Value, error) {
	switch wireFormat {
	case consts.FormatSet:
		obj, _, err := decodeProperties(payload, entry, schema, annot, opts)
		return obj, err
	case consts.FormatArray:
		return decodeArrayPayload(payload, entry, schema, annot, opts)
	case consts.FormatInteger:
		n, err := decodeInteger(payload)
		if err != nil {
			return value.Value{}, err
		}
		return value.Number(float64(n)), nil
	case consts.FormatString:
		s, err := decodeString(payload)
		return value.String(s), err
	case consts.FormatBoolean:
		b, err := decodeBoolean(payload)
		return value.Bool(b), err
	case consts.FormatEnum:
		dict := schema
		if entry.IsAnnotation() {
			dict = annot
		}
		return decodeEnum(payload, dict, entry)
	case consts.FormatNull:
		return value.Null(), nil
	default:
		// Open Question 3: an unrecognized format still consumes exactly
		// its declared length (already sliced by the caller) but decodes
		// to JSON null rather than being silently skipped with no token,
		// which is what the C reference does.
		return value.Null(), nil
	}
}

// decodeArrayPayload reads nnint(count) elements, each resolved against
// the array entry's single wildcard element template rather than by
// per-element sequence lookup. Grounded on decode_array in bej_decode.c.
func decodeArrayPayload(data []byte, arrayEntry dictionary.Entry, schema, annot *dictionary.Dictionary, opts Options) (value.Value, error) {
	count, n, err := nnint.Decode(data)
	if err != nil {
		return value.Value{}, fmt.Errorf("decode array: %w", err)
	}
	pos := n

	dictForChildren := schema
	if arrayEntry.IsAnnotation() {
		dictForChildren = annot
	}
	if dictForChildren == nil {
		return value.Value{}, fmt.Errorf("%w: ARRAY property %q has no dictionary for its element template", bejerr.ErrSchemaMismatch, arrayEntry.Name)
	}

	template, ok, err := firstSubsetEntry(dictForChildren, arrayEntry.ChildPointer, arrayEntry.ChildCount)
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		return value.Value{}, fmt.Errorf("%w: ARRAY property %q has no element template", bejerr.ErrSchemaMismatch, arrayEntry.Name)
	}

	elements := make([]value.Value, 0, count)
	for i := uint64(0); i < count; i++ {
		frame, fn, err := sfl.Unpack(data[pos:])
		if err != nil {
			return value.Value{}, err
		}
		if fn+int(frame.Length) > len(data)-pos {
			return value.Value{}, fmt.Errorf("%w: array element payload overruns buffer", bejerr.ErrMalformedStream)
		}
		elemPayload := data[pos+fn : pos+fn+int(frame.Length)]

		elem, err := decodeValue(elemPayload, template, frame.Format, schema, annot, opts)
		if err != nil {
			return value.Value{}, err
		}
		elements = append(elements, elem)
		pos += fn + int(frame.Length)
	}

	return value.Array(elements...), nil
}

// decodeInteger reverse-maps pack_integer_value: an nnint length prefix
// followed by that many two's-complement little-endian value bytes,
// sign-extended to 64 bits. Grounded on unpack_integer_value in
// bej_decode.c, which calls unpack_nnint before reading the value bytes.
func decodeInteger(payload []byte) (int64, error) {
	n, consumed, err := nnint.Decode(payload)
	if err != nil {
		return 0, fmt.Errorf("decode integer length: %w", err)
	}
	if consumed+int(n) > len(payload) {
		return 0, fmt.Errorf("%w: integer payload truncated", bejerr.ErrMalformedStream)
	}
	raw := payload[consumed : consumed+int(n)]

	if len(raw) == 0 {
		return 0, nil
	}

	var u uint64
	for i, b := range raw {
		u |= uint64(b) << (8 * uint(i))
	}

	// Sign-extend from the highest bit of the last value byte.
	if raw[len(raw)-1]&0x80 != 0 {
		for i := len(raw); i < 8; i++ {
			u |= uint64(0xFF) << (8 * uint(i))
		}
	}
	return int64(u), nil
}

// decodeString reverse-maps pack_string_value: nnint(len+1) bytes of
// UTF-8 text followed by a trailing NUL, here represented directly as the
// payload with its terminator stripped.
func decodeString(payload []byte) (string, error) {
	n, consumed, err := nnint.Decode(payload)
	if err != nil {
		return "", fmt.Errorf("decode string length: %w", err)
	}
	if n == 0 {
		return "", nil
	}
	if consumed+int(n) > len(payload) {
		return "", fmt.Errorf("%w: string payload truncated", bejerr.ErrMalformedStream)
	}
	raw := payload[consumed : consumed+int(n)]
	if len(raw) > 0 && raw[len(raw)-1] == 0x00 {
		raw = raw[:len(raw)-1]
	}
	return string(raw), nil
}

// decodeBoolean reverse-maps pack_boolean_value: nnint(1) followed by a
// single 0x00/0x01 byte.
func decodeBoolean(payload []byte) (bool, error) {
	_, consumed, err := nnint.Decode(payload)
	if err != nil {
		return false, fmt.Errorf("decode boolean length: %w", err)
	}
	if consumed >= len(payload) {
		return false, fmt.Errorf("%w: boolean value byte missing", bejerr.ErrMalformedStream)
	}
	return payload[consumed] != 0x00, nil
}

// decodeEnum reverse-maps pack_enum_value: an outer nnint length wrapping
// an inner nnint sequence number, resolved against entry's children.
// Grounded on unpack_enum_value.
func decodeEnum(payload []byte, dict *dictionary.Dictionary, entry dictionary.Entry) (value.Value, error) {
	if dict == nil {
		return value.Value{}, fmt.Errorf("%w: ENUM property %q has no dictionary to resolve its value", bejerr.ErrSchemaMismatch, entry.Name)
	}

	_, consumed, err := nnint.Decode(payload)
	if err != nil {
		return value.Value{}, fmt.Errorf("decode enum outer length: %w", err)
	}

	seq, _, err := nnint.Decode(payload[consumed:])
	if err != nil {
		return value.Value{}, fmt.Errorf("decode enum sequence: %w", err)
	}

	child, ok, err := dict.FindBySequence(entry.ChildPointer, entry.ChildCount, seq)
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		return value.Value{}, fmt.Errorf("%w: enum sequence %d not found for property %q", bejerr.ErrSchemaMismatch, seq, entry.Name)
	}

	return value.String(child.Name), nil
}
