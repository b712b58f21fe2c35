package codec

// Options controls encode/decode behavior at points the base wire format
// leaves to the implementation (see SPEC_FULL.md's Open Question
// resolutions).
type Options struct {
	// StrictUnknownKeys makes Encode fail when an object key has no
	// matching dictionary child, instead of silently dropping it. Default
	// true, resolving Open Question 1 in favor of strict behavior.
	StrictUnknownKeys bool

	// NormalizeStrings applies Unicode NFC normalization to STRING-format
	// payloads before encoding. Default false.
	NormalizeStrings bool
}

// DefaultOptions returns the codec's default behavior: strict unknown-key
// handling, no string normalization.
func DefaultOptions() Options {
	return Options{StrictUnknownKeys: true}
}
