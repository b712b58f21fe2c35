// Package bej is the root of the BEJ codec: it composes the dictionary,
// nnint, SFL, and codec packages into the two operations a caller
// actually needs, Encode and Decode, each responsible for the 7-byte
// stream header and the root SFL (sequence 0, selector 0, format SET)
// that together wrap every BEJ payload. Grounded on iso.go's top-level
// Open/Create in the teacher, and on bej_encode_stream/bej_decode_stream
// in the C reference for what the root framing owns.
package bej

import (
	"bytes"
	"fmt"
	"io"

	"github.com/contrub/bej-parser/internal/logging"
	"github.com/contrub/bej-parser/pkg/bejerr"
	"github.com/contrub/bej-parser/pkg/codec"
	"github.com/contrub/bej-parser/pkg/consts"
	"github.com/contrub/bej-parser/pkg/dictionary"
	"github.com/contrub/bej-parser/pkg/sfl"
	"github.com/contrub/bej-parser/pkg/value"
	"github.com/go-logr/logr"
)

// Options controls codec behavior, plus the logger used for diagnostic
// output. Mirrors the shape of iso.Options/Option in the teacher.
type Options struct {
	logger  logr.Logger
	codec   codec.Options
	checksum *[32]byte
}

// Option configures an Options value.
type Option func(*Options)

// WithLogger sets the logger used during encode/decode.
func WithLogger(logger logr.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// WithStrictUnknownKeys controls whether Encode fails on an object key
// absent from the relevant dictionary (true, the default) or silently
// drops it (false).
func WithStrictUnknownKeys(strict bool) Option {
	return func(o *Options) {
		o.codec.StrictUnknownKeys = strict
	}
}

// WithNormalizeStrings enables Unicode NFC normalization of STRING-format
// payloads before encoding.
func WithNormalizeStrings(enabled bool) Option {
	return func(o *Options) {
		o.codec.NormalizeStrings = enabled
	}
}

// WithChecksum supplies a dictionary checksum that the schema dictionary
// passed to Encode/Decode must match, as an integrity check independent
// of the BEJ stream itself.
func WithChecksum(want [32]byte) Option {
	return func(o *Options) {
		o.checksum = &want
	}
}

func defaultOptions() Options {
	return Options{logger: logr.Discard(), codec: codec.DefaultOptions()}
}

// Encode serializes v as a complete BEJ stream: the 7-byte header, the
// root SFL, and the root SET payload, written to w. schema is required;
// annot may be nil if v has no "@"-prefixed members at any depth.
func Encode(v value.Value, schema, annot *dictionary.Dictionary, w io.Writer, opts ...Option) error {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	log := logging.NewLogger(options.logger)

	if schema == nil {
		return fmt.Errorf("%w: schema dictionary is required", bejerr.ErrSchemaMismatch)
	}
	if err := checkChecksum(schema, options); err != nil {
		return err
	}

	root, err := schema.RootEntry()
	if err != nil {
		return fmt.Errorf("bej: encode: %w", err)
	}

	log.Debug("encoding root payload", "schemaEntries", schema.EntryCount())
	payload, err := codec.EncodeRootPayload(v, root, schema, annot, options.codec)
	if err != nil {
		return fmt.Errorf("bej: encode: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(consts.BEJHeader[:])
	sfl.Pack(&buf, sfl.SeqWithSelector(0, 0), consts.FormatSet, uint64(len(payload)))
	buf.Write(payload)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("bej: write stream: %w", err)
	}
	log.Info("encoded bej stream", "bytes", buf.Len())
	return nil
}

// Decode reads a complete BEJ stream from r and returns its root object
// as a JSON value tree. schema is required; annot may be nil if the
// stream is known to carry no annotation properties.
func Decode(r io.Reader, schema, annot *dictionary.Dictionary, opts ...Option) (value.Value, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	log := logging.NewLogger(options.logger)

	if schema == nil {
		return value.Value{}, fmt.Errorf("%w: schema dictionary is required", bejerr.ErrSchemaMismatch)
	}
	if err := checkChecksum(schema, options); err != nil {
		return value.Value{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return value.Value{}, fmt.Errorf("bej: read stream: %w", err)
	}
	if len(data) < consts.BEJHeaderSize {
		return value.Value{}, fmt.Errorf("%w: stream of %d bytes shorter than %d-byte header", bejerr.ErrMalformedStream, len(data), consts.BEJHeaderSize)
	}
	rest := data[consts.BEJHeaderSize:]

	frame, n, err := sfl.Unpack(rest)
	if err != nil {
		return value.Value{}, fmt.Errorf("bej: decode root SFL: %w", err)
	}
	if frame.Format != consts.FormatSet {
		return value.Value{}, fmt.Errorf("%w: root SFL format %#x is not SET", bejerr.ErrSchemaMismatch, frame.Format)
	}
	if n+int(frame.Length) > len(rest) {
		return value.Value{}, fmt.Errorf("%w: root payload of %d bytes overruns %d remaining", bejerr.ErrMalformedStream, frame.Length, len(rest)-n)
	}
	payload := rest[n : n+int(frame.Length)]

	root, err := schema.RootEntry()
	if err != nil {
		return value.Value{}, fmt.Errorf("bej: decode: %w", err)
	}

	log.Debug("decoding root payload", "payloadBytes", len(payload))
	v, err := codec.DecodeRootPayload(payload, root, schema, annot, options.codec)
	if err != nil {
		return value.Value{}, fmt.Errorf("bej: decode: %w", err)
	}
	log.Info("decoded bej stream", "members", len(v.Object))
	return v, nil
}

func checkChecksum(schema *dictionary.Dictionary, options Options) error {
	if options.checksum == nil {
		return nil
	}
	if !schema.VerifyChecksum(*options.checksum) {
		return fmt.Errorf("%w: schema dictionary checksum mismatch", bejerr.ErrMalformedDictionary)
	}
	return nil
}
