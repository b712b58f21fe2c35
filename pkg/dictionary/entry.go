package dictionary

import "github.com/contrub/bej-parser/pkg/consts"

// Entry is a by-value decoding of one 10-byte dictionary record. Its Name
// is a string copied out of the dictionary blob, so an Entry stays valid
// independently of the Dictionary it was read from. Grounded on
// bej_dict_entry_t in the C reference (bej_dictionary.h).
type Entry struct {
	Format       consts.Format
	Flags        uint8
	Sequence     uint16
	ChildPointer uint16
	ChildCount   uint16
	Name         string
}

// IsArrayElementTemplate reports whether this entry is the wildcard
// single-child template of an ARRAY entry (ChildCount == 0xFFFF).
func (e Entry) IsArrayElementTemplate() bool {
	return e.ChildCount == consts.ChildCountWildcard
}

// IsAnnotation reports whether the entry's name begins with '@', which
// selects the annotation dictionary as the lookup context for its
// children during encode and decode.
func (e Entry) IsAnnotation() bool {
	return len(e.Name) > 0 && e.Name[0] == '@'
}
