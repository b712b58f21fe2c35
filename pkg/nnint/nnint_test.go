package nnint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeZero(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x00}, Encode(0))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xFF, 0x100, 0xFFFF, 0x10000, 0xFFFFFFFF, 0x100000000, 0xFFFFFFFFFFFFFFFF}
	for _, v := range values {
		encoded := Encode(v)
		decoded, consumed, err := Decode(encoded)
		require.NoError(t, err)
		require.Equal(t, v, decoded)
		require.Equal(t, len(encoded), consumed)
	}
}

func TestEncodeMinimalLength(t *testing.T) {
	// No trailing zero byte beyond what's needed to hold the value.
	encoded := Encode(0xFF)
	require.Equal(t, []byte{0x01, 0xFF}, encoded)

	encoded = Encode(0x100)
	require.Equal(t, []byte{0x02, 0x00, 0x01}, encoded)
}

func TestDecodeMaxUint64(t *testing.T) {
	data := []byte{8, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	value, consumed, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), value)
	require.Equal(t, 9, consumed)
}

func TestDecodeZeroLength(t *testing.T) {
	value, consumed, err := Decode([]byte{0, 0xAA})
	require.NoError(t, err)
	require.Equal(t, uint64(0), value)
	require.Equal(t, 1, consumed)
}

func TestDecodeLengthTooLarge(t *testing.T) {
	_, _, err := Decode([]byte{9, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	require.Error(t, err)
}

func TestDecodeTruncated(t *testing.T) {
	_, _, err := Decode([]byte{4, 1, 2})
	require.Error(t, err)
}

func TestDecodeEmptyBuffer(t *testing.T) {
	_, _, err := Decode(nil)
	require.Error(t, err)
}
