// Package nnint implements the BEJ non-negative integer wire format: one
// leading length byte n (0..8) followed by n little-endian value bytes.
// Grounded on pack_nnint/unpack_nnint in the C reference (bej_encode.c,
// bej_decode.c).
package nnint

import (
	"fmt"

	"github.com/contrub/bej-parser/pkg/bejerr"
)

// MaxLen is the largest legal length byte: eight bytes hold a full uint64.
const MaxLen = 8

// Encode returns the minimal nnint wire form of value. Zero always encodes
// as the two bytes {0x01, 0x00}; a zero-length encoding is never produced,
// even though the decoder accepts one (see Decode).
func Encode(value uint64) []byte {
	if value == 0 {
		return []byte{0x01, 0x00}
	}

	var tmp [MaxLen]byte
	n := 0
	v := value
	for v != 0 {
		tmp[n] = byte(v & 0xFF)
		v >>= 8
		n++
	}

	out := make([]byte, n+1)
	out[0] = byte(n)
	copy(out[1:], tmp[:n])
	return out
}

// Decode reads an nnint from the front of data and returns its value along
// with the number of bytes consumed. A length byte of 0 is accepted and
// decodes to the value 0 (no value bytes follow), matching the reference
// decoder; encoders never produce this form, always emitting {0x01, 0x00}
// for zero instead (see Encode).
func Decode(data []byte) (value uint64, consumed int, err error) {
	if len(data) < 1 {
		return 0, 0, fmt.Errorf("%w: nnint length byte missing", bejerr.ErrMalformedStream)
	}

	n := int(data[0])
	if n > MaxLen {
		return 0, 0, fmt.Errorf("%w: nnint length %d exceeds %d", bejerr.ErrMalformedStream, n, MaxLen)
	}
	if len(data) < 1+n {
		return 0, 0, fmt.Errorf("%w: nnint truncated, need %d bytes, have %d", bejerr.ErrMalformedStream, n, len(data)-1)
	}

	for i := 0; i < n; i++ {
		value |= uint64(data[1+i]) << (8 * uint(i))
	}
	return value, 1 + n, nil
}
