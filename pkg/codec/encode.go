// Package codec implements the BEJ encoder and decoder: the recursive
// walkers that co-navigate a JSON value tree and a dictionary view to
// produce or consume the framed binary format. Grounded on bej_encode.c
// and bej_decode.c in the C reference.
package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/contrub/bej-parser/pkg/bejerr"
	"github.com/contrub/bej-parser/pkg/consts"
	"github.com/contrub/bej-parser/pkg/dictionary"
	"github.com/contrub/bej-parser/pkg/nnint"
	"github.com/contrub/bej-parser/pkg/sfl"
	"github.com/contrub/bej-parser/pkg/value"
	"golang.org/x/text/unicode/norm"
)

// EncodeRootPayload encodes the root JSON object's properties against
// rootEntry and returns the completed SET payload (property count plus
// each encoded property), ready to be wrapped in the root SFL by the
// caller. Grounded on the payload half of bej_encode_stream.
func EncodeRootPayload(root value.Value, rootEntry dictionary.Entry, schema, annot *dictionary.Dictionary, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeProperties(&buf, root, rootEntry, schema, annot, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeProperties writes an object's resolved property count followed by
// each resolved property's full SFL+payload, in JSON input order.
// Grounded on encode_properties in bej_encode.c.
func encodeProperties(buf *bytes.Buffer, obj value.Value, parent dictionary.Entry, schema, annot *dictionary.Dictionary, opts Options) error {
	if obj.Kind != value.KindObject {
		return fmt.Errorf("%w: expected JSON object for SET, got %s", bejerr.ErrSchemaMismatch, obj.Kind)
	}

	type resolved struct {
		entry    dictionary.Entry
		selector uint8
		val      value.Value
	}

	var props []resolved
	for _, member := range obj.Object {
		isAnnotation := strings.HasPrefix(member.Key, "@")

		var dict *dictionary.Dictionary
		var childPtr, childCount uint16
		if isAnnotation {
			dict = annot
			if dict != nil {
				childPtr, childCount = consts.DictionaryHeaderSize, dict.EntryCount()
			}
		} else {
			dict = schema
			childPtr, childCount = parent.ChildPointer, parent.ChildCount
		}

		if dict == nil {
			if opts.StrictUnknownKeys {
				return fmt.Errorf("%w: key %q requires the %s dictionary, which was not supplied", bejerr.ErrSchemaMismatch, member.Key, dictKind(isAnnotation))
			}
			continue
		}

		child, ok, err := dict.FindByName(childPtr, childCount, member.Key)
		if err != nil {
			return err
		}
		if !ok {
			if opts.StrictUnknownKeys {
				return fmt.Errorf("%w: key %q not found in dictionary", bejerr.ErrSchemaMismatch, member.Key)
			}
			continue
		}

		selector := consts.SelectorSchema
		if isAnnotation {
			selector = consts.SelectorAnnotation
		}
		props = append(props, resolved{entry: child, selector: selector, val: member.Value})
	}

	buf.Write(nnint.Encode(uint64(len(props))))
	for _, p := range props {
		encoded, err := encodeValue(p.entry, p.selector, p.val, schema, annot, opts)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	}
	return nil
}

func dictKind(isAnnotation bool) string {
	if isAnnotation {
		return "annotation"
	}
	return "schema"
}

// encodeValue builds and returns the complete SFL+payload for one
// property. Grounded on encode_value in bej_encode.c.
func encodeValue(entry dictionary.Entry, selector uint8, val value.Value, schema, annot *dictionary.Dictionary, opts Options) ([]byte, error) {
	var payload bytes.Buffer

	switch entry.Format {
	case consts.FormatSet:
		if err := encodeProperties(&payload, val, entry, schema, annot, opts); err != nil {
			return nil, err
		}
	case consts.FormatArray:
		if err := encodeArrayPayload(&payload, entry, val, schema, annot, opts); err != nil {
			return nil, err
		}
	case consts.FormatInteger:
		if val.Kind != value.KindNumber {
			return nil, fmt.Errorf("%w: INTEGER property %q requires a JSON number, got %s", bejerr.ErrSchemaMismatch, entry.Name, val.Kind)
		}
		encodeInteger(&payload, int64(val.Number))
	case consts.FormatString:
		if val.Kind != value.KindString {
			return nil, fmt.Errorf("%w: STRING property %q requires a JSON string, got %s", bejerr.ErrSchemaMismatch, entry.Name, val.Kind)
		}
		s := val.String
		if opts.NormalizeStrings {
			s = norm.NFC.String(s)
		}
		encodeString(&payload, s)
	case consts.FormatBoolean:
		if val.Kind != value.KindBool {
			return nil, fmt.Errorf("%w: BOOLEAN property %q requires a JSON boolean, got %s", bejerr.ErrSchemaMismatch, entry.Name, val.Kind)
		}
		encodeBoolean(&payload, val.Bool)
	case consts.FormatEnum:
		if val.Kind != value.KindString {
			return nil, fmt.Errorf("%w: ENUM property %q requires a JSON string, got %s", bejerr.ErrSchemaMismatch, entry.Name, val.Kind)
		}
		dict := schema
		if selector == consts.SelectorAnnotation {
			dict = annot
		}
		if err := encodeEnum(&payload, dict, entry, val.String); err != nil {
			return nil, err
		}
	case consts.FormatNull:
		// Empty payload.
	default:
		return nil, fmt.Errorf("%w: format %s cannot be encoded", bejerr.ErrUnsupported, entry.Format)
	}

	var out bytes.Buffer
	sfl.Pack(&out, sfl.SeqWithSelector(uint64(entry.Sequence), selector), entry.Format, uint64(payload.Len()))
	out.Write(payload.Bytes())
	return out.Bytes(), nil
}

// encodeArrayPayload writes an ARRAY payload: nnint(count) followed by
// each element, keyed positionally by index rather than by the template
// entry's declared sequence. Grounded on encode_array_payload.
func encodeArrayPayload(buf *bytes.Buffer, arrayEntry dictionary.Entry, val value.Value, schema, annot *dictionary.Dictionary, opts Options) error {
	if val.Kind != value.KindArray {
		return fmt.Errorf("%w: ARRAY property %q requires a JSON array, got %s", bejerr.ErrSchemaMismatch, arrayEntry.Name, val.Kind)
	}

	dictForChildren := schema
	if arrayEntry.IsAnnotation() {
		dictForChildren = annot
	}
	if dictForChildren == nil {
		return fmt.Errorf("%w: ARRAY property %q has no dictionary for its element template", bejerr.ErrSchemaMismatch, arrayEntry.Name)
	}

	template, ok, err := firstSubsetEntry(dictForChildren, arrayEntry.ChildPointer, arrayEntry.ChildCount)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: ARRAY property %q has no element template", bejerr.ErrSchemaMismatch, arrayEntry.Name)
	}

	buf.Write(nnint.Encode(uint64(len(val.Array))))

	selector := consts.SelectorSchema
	if arrayEntry.IsAnnotation() {
		selector = consts.SelectorAnnotation
	}

	for i, elem := range val.Array {
		template.Sequence = uint16(i)
		encoded, err := encodeValue(template, selector, elem, schema, annot, opts)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	}
	return nil
}

// firstSubsetEntry returns the first entry of the named subset, used to
// fetch an ARRAY's single element template.
func firstSubsetEntry(dict *dictionary.Dictionary, childPointer, childCount uint16) (dictionary.Entry, bool, error) {
	it := dict.IterSubset(childPointer, childCount)
	if !it.HasNext() {
		return dictionary.Entry{}, false, nil
	}
	entry, err := it.Next()
	if err != nil {
		return dictionary.Entry{}, false, err
	}
	return entry, true, nil
}

// encodeInteger writes the minimal two's-complement nnint-length-prefixed
// payload for an INTEGER value. Grounded on pack_integer_value.
func encodeInteger(buf *bytes.Buffer, v int64) {
	u := uint64(v)
	var raw [8]byte
	for i := 0; i < 8; i++ {
		raw[i] = byte(u >> (8 * uint(i)))
	}

	n := 8
	for n > 1 {
		msbNext := raw[n-1]
		msb := raw[n-2]
		if (v >= 0 && msbNext == 0x00 && msb&0x80 == 0) ||
			(v < 0 && msbNext == 0xFF && msb&0x80 != 0) {
			n--
		} else {
			break
		}
	}

	buf.Write(nnint.Encode(uint64(n)))
	buf.Write(raw[:n])
}

// encodeString writes nnint(len+1) followed by the UTF-8 bytes and a
// trailing NUL terminator. Grounded on pack_string_value.
func encodeString(buf *bytes.Buffer, s string) {
	buf.Write(nnint.Encode(uint64(len(s) + 1)))
	buf.WriteString(s)
	buf.WriteByte(0x00)
}

// encodeBoolean writes nnint(1) followed by a single 0x00/0x01 byte.
// Grounded on pack_boolean_value.
func encodeBoolean(buf *bytes.Buffer, b bool) {
	buf.Write(nnint.Encode(1))
	if b {
		buf.WriteByte(0x01)
	} else {
		buf.WriteByte(0x00)
	}
}

// encodeEnum resolves enumName to its sequence number under entry's
// children and writes an outer length prefix followed by the inner
// nnint-encoded value. Grounded on pack_enum_value.
func encodeEnum(buf *bytes.Buffer, dict *dictionary.Dictionary, entry dictionary.Entry, enumName string) error {
	if dict == nil {
		return fmt.Errorf("%w: ENUM property %q has no dictionary to resolve %q", bejerr.ErrSchemaMismatch, entry.Name, enumName)
	}

	child, ok, err := dict.FindByName(entry.ChildPointer, entry.ChildCount, enumName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: enum value %q not found for property %q", bejerr.ErrSchemaMismatch, enumName, entry.Name)
	}

	inner := nnint.Encode(uint64(child.Sequence))
	buf.Write(nnint.Encode(uint64(len(inner))))
	buf.Write(inner)
	return nil
}
