// Package bejerr defines the error kinds the codec surfaces, grounded on
// the error taxonomy implied by the C reference's boolean return codes:
// malformed dictionaries, truncated/overrun streams, schema mismatches,
// and unsupported formats. Callers use errors.Is against the sentinels
// below; wrapped context is added with fmt.Errorf("...: %w", ...).
package bejerr

import "errors"

// Sentinel error kinds. Wrap one of these with fmt.Errorf to add context;
// never return them bare where context is available.
var (
	// ErrMalformedDictionary covers a dictionary blob that is too short for
	// its header, whose entry table overruns the blob, or whose name
	// offsets point outside the blob.
	ErrMalformedDictionary = errors.New("malformed dictionary")

	// ErrMalformedStream covers a truncated nnint, an nnint length byte
	// greater than 8, an SFL read past the end of its buffer, or a payload
	// that overruns its declared length. A payload whose decoded content is
	// shorter than its declared length is not reported; the unread bytes
	// are skipped.
	ErrMalformedStream = errors.New("malformed bej stream")

	// ErrSchemaMismatch covers a selector-0 sequence not found among a
	// parent's children, an enum value not found, or a JSON value whose
	// type is incompatible with the dictionary's declared format.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnsupported covers a recognized-but-unimplemented format (REAL,
	// RESOURCE_LINK, PROPERTY_ANNOTATION as a primary encode format).
	ErrUnsupported = errors.New("unsupported bej format")
)
