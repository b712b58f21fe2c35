// Package jsontext bridges the textual JSON the CLI reads and writes to
// the ordered pkg/value tree the codec operates on. encoding/json's
// Unmarshal into map[string]any would discard member order, which the
// encoder needs (the wire format's "Ordering guarantee" preserves
// whatever order properties were presented in), so this package instead
// drives encoding/json.Decoder's token stream directly.
package jsontext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/contrub/bej-parser/pkg/value"
)

// Decode reads exactly one JSON text value from r and returns it as a
// pkg/value.Value tree, preserving object member order.
func Decode(r io.Reader) (value.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return value.Value{}, fmt.Errorf("jsontext: decode: %w", err)
	}
	return v, nil
}

// DecodeBytes is a convenience wrapper over Decode for an in-memory buffer.
func DecodeBytes(data []byte) (value.Value, error) {
	return Decode(bytes.NewReader(data))
}

func decodeValue(dec *json.Decoder) (value.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return value.Value{}, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (value.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return value.Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case nil:
		return value.Null(), nil
	case bool:
		return value.Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return value.Value{}, fmt.Errorf("number %q: %w", t, err)
		}
		return value.Number(f), nil
	case string:
		return value.String(t), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported token type %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (value.Value, error) {
	var members []value.Member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return value.Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("expected object key, got %T", keyTok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return value.Value{}, err
		}
		members = append(members, value.Member{Key: key, Value: val})
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return value.Value{}, err
	}
	return value.Object(members...), nil
}

func decodeArray(dec *json.Decoder) (value.Value, error) {
	var items []value.Value
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, val)
	}

	if _, err := dec.Token(); err != nil {
		return value.Value{}, err
	}
	return value.Array(items...), nil
}

// Encode writes v to w as indented JSON text, preserving object member
// order exactly as stored; encoding/json has no hook for member order on
// a plain struct, so the tree is rendered compactly by hand and then
// reindented through json.Indent, which is order-preserving because it
// operates on already-serialized bytes rather than re-marshaling.
func Encode(w io.Writer, v value.Value) error {
	compact, err := marshalOrdered(v)
	if err != nil {
		return fmt.Errorf("jsontext: encode: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "  "); err != nil {
		return fmt.Errorf("jsontext: indent: %w", err)
	}
	pretty.WriteByte('\n')

	_, err = w.Write(pretty.Bytes())
	return err
}

// marshalOrdered renders v as compact JSON text, preserving object
// member order.
func marshalOrdered(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeOrdered(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeOrdered(buf *bytes.Buffer, v value.Value) error {
	switch v.Kind {
	case value.KindNull:
		buf.WriteString("null")
	case value.KindBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case value.KindNumber:
		raw, err := json.Marshal(v.Number)
		if err != nil {
			return err
		}
		buf.Write(raw)
	case value.KindString:
		raw, err := json.Marshal(v.String)
		if err != nil {
			return err
		}
		buf.Write(raw)
	case value.KindArray:
		buf.WriteByte('[')
		for i, elem := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeOrdered(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case value.KindObject:
		buf.WriteByte('{')
		for i, m := range v.Object {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyRaw, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(keyRaw)
			buf.WriteByte(':')
			if err := writeOrdered(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("jsontext: unknown value kind %d", v.Kind)
	}
	return nil
}
