// Package sfl implements the Sequence-Format-Length frame that precedes
// every BEJ-encoded value: an nnint sequence+selector, one format byte,
// and an nnint payload length. Grounded on pack_sfl/unpack_sfl in the C
// reference (bej_encode.c, bej_decode.c).
package sfl

import (
	"bytes"
	"fmt"

	"github.com/contrub/bej-parser/pkg/bejerr"
	"github.com/contrub/bej-parser/pkg/consts"
	"github.com/contrub/bej-parser/pkg/nnint"
)

// Frame is a decoded SFL header.
type Frame struct {
	// Sequence is the plain sequence number with the selector bit already
	// split out (seq >> 1 of the raw wire value).
	Sequence uint64
	// Selector is 0 for the schema dictionary, 1 for the annotation
	// dictionary.
	Selector uint8
	// Format is the upper nibble of the format/flags byte.
	Format consts.Format
	// Length is the payload length in bytes, covering exactly the bytes
	// that follow until the next SFL or the end of the containing payload.
	Length uint64
}

// SeqWithSelector packs sequence and selector back into the single nnint
// value carried on the wire.
func SeqWithSelector(sequence uint64, selector uint8) uint64 {
	return (sequence << 1) | uint64(selector&1)
}

// Pack writes an SFL header (sequence+selector, format, length) to buf.
// Flags are always written as 0; this core never sets the DEFERRED or
// NESTED_TOP_LEVEL_ANNOTATION bits on output.
func Pack(buf *bytes.Buffer, seqWithSelector uint64, format consts.Format, length uint64) {
	buf.Write(nnint.Encode(seqWithSelector))
	buf.WriteByte(byte(format) << 4)
	buf.Write(nnint.Encode(length))
}

// Unpack reads one SFL header from the front of data and returns it along
// with the number of bytes consumed.
func Unpack(data []byte) (Frame, int, error) {
	seqRaw, n1, err := nnint.Decode(data)
	if err != nil {
		return Frame{}, 0, fmt.Errorf("sfl: sequence: %w", err)
	}

	if len(data) < n1+1 {
		return Frame{}, 0, fmt.Errorf("%w: sfl format byte missing", bejerr.ErrMalformedStream)
	}
	formatByte := data[n1]

	length, n2, err := nnint.Decode(data[n1+1:])
	if err != nil {
		return Frame{}, 0, fmt.Errorf("sfl: length: %w", err)
	}

	frame := Frame{
		Sequence: seqRaw >> 1,
		Selector: uint8(seqRaw & 1),
		Format:   consts.Format(formatByte >> 4),
		Length:   length,
	}
	return frame, n1 + 1 + n2, nil
}
