// Package consts holds the wire-level constants shared by the dictionary,
// SFL, and codec packages.
package consts

// Format identifies the BEJ encoding used for a dictionary entry or an
// encoded value. It occupies the upper 4 bits of a dictionary entry's
// first byte and of an SFL's format byte.
type Format uint8

const (
	FormatSet                Format = 0x00
	FormatArray              Format = 0x01
	FormatNull               Format = 0x02
	FormatInteger            Format = 0x03
	FormatEnum               Format = 0x04
	FormatString             Format = 0x05
	FormatReal               Format = 0x06
	FormatBoolean            Format = 0x07
	FormatPropertyAnnotation Format = 0x0A
	FormatResourceLink       Format = 0x0E
)

func (f Format) String() string {
	switch f {
	case FormatSet:
		return "SET"
	case FormatArray:
		return "ARRAY"
	case FormatNull:
		return "NULL"
	case FormatInteger:
		return "INTEGER"
	case FormatEnum:
		return "ENUM"
	case FormatString:
		return "STRING"
	case FormatReal:
		return "REAL"
	case FormatBoolean:
		return "BOOLEAN"
	case FormatPropertyAnnotation:
		return "PROPERTY_ANNOTATION"
	case FormatResourceLink:
		return "RESOURCE_LINK"
	default:
		return "UNKNOWN"
	}
}

// Dictionary entry flags occupy the lower 4 bits of the entry's first byte.
const (
	FlagDeferred                 uint8 = 1 << 0
	FlagNestedTopLevelAnnotation uint8 = 1 << 1
)

// Selector distinguishes the schema dictionary (0) from the annotation
// dictionary (1) when resolving a sequence number.
const (
	SelectorSchema     uint8 = 0
	SelectorAnnotation uint8 = 1
)

const (
	// DictionaryHeaderSize is the fixed size, in bytes, of a dictionary blob's header.
	DictionaryHeaderSize = 12
	// DictionaryEntrySize is the fixed size, in bytes, of one dictionary entry.
	DictionaryEntrySize = 10
	// ChildCountWildcard marks a single dictionary entry as an array-element template.
	ChildCountWildcard uint16 = 0xFFFF
)

// BEJHeader is the fixed 7-byte header that precedes every BEJ stream: a
// 4-byte magic number, 2 reserved flag bytes, and a 1-byte schema class.
var BEJHeader = [7]byte{0x00, 0xF0, 0xF1, 0xF1, 0x00, 0x00, 0x00}

// BEJHeaderSize is len(BEJHeader).
const BEJHeaderSize = 7
