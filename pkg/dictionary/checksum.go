package dictionary

import "golang.org/x/crypto/blake2b"

// Checksum returns the BLAKE2b-256 digest of the dictionary's raw bytes.
// Dictionaries are distributed out of band from the BEJ streams they
// interpret; this lets a caller confirm that the dictionary loaded on
// disk is the one a stream's producer used, without needing a full
// re-encode round trip. Not part of the original wire format.
func (d *Dictionary) Checksum() [32]byte {
	return blake2b.Sum256(d.blob)
}

// VerifyChecksum reports whether the dictionary's current checksum
// matches want.
func (d *Dictionary) VerifyChecksum(want [32]byte) bool {
	return d.Checksum() == want
}
