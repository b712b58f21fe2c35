// Package value implements the JSON document model the codec reads from
// and writes to: null, boolean, number, string, ordered array, and
// ordered object. It is grounded on the tagged union in the C reference's
// json.h (JSON_NULL .. JSON_OBJECT), re-expressed as an idiomatic Go sum
// type. Object member order is preserved for encoding convenience but is
// not significant to Equal.
package value

import "fmt"

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a single key/value pair of an Object, in insertion order.
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON value tree node. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  float64
	String  string
	Array   []Value
	Object  []Member
}

// Null returns the JSON null value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a JSON boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Number returns a JSON numeric value.
func Number(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// String returns a JSON string value.
func String(s string) Value { return Value{Kind: KindString, String: s} }

// Array returns a JSON array value over the given elements.
func Array(items ...Value) Value { return Value{Kind: KindArray, Array: items} }

// Object returns a JSON object value over the given members, preserving
// the order they're given in.
func Object(members ...Member) Value { return Value{Kind: KindObject, Object: members} }

// Get returns the value for key and true if the object has a member with
// that key, using the first match in insertion order. It panics if v is
// not an object.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindObject {
		panic(fmt.Sprintf("value: Get called on %s, not object", v.Kind))
	}
	for _, m := range v.Object {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal performs a deep comparison of two JSON values, grounded on
// json_compare in the C reference: object keys are compared without
// regard to order, but arrays are compared positionally.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindString:
		return a.String == b.String
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.Object) != len(b.Object) {
			return false
		}
		for _, am := range a.Object {
			bv, ok := b.Get(am.Key)
			if !ok || !Equal(am.Value, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
