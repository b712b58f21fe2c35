// Command bejdecode converts a BEJ-encoded binary stream back into JSON
// text against a schema dictionary (and, optionally, an annotation
// dictionary). Grounded on cli_decode.c in the C reference and on
// cmd/isoview's usage/spinner wiring in the teacher.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/bgrewell/usage"
	"github.com/contrub/bej-parser"
	"github.com/contrub/bej-parser/internal/jsontext"
	"github.com/contrub/bej-parser/internal/logging"
	"github.com/contrub/bej-parser/pkg/dictionary"
	"github.com/go-logr/logr"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

func main() {
	u := usage.NewUsage(
		usage.WithApplicationName("bejdecode"),
		usage.WithApplicationDescription("bejdecode converts a BEJ-encoded binary stream into JSON text against a schema dictionary."),
	)

	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print diagnostic logging while decoding", "optional", nil)
	schemaPath := u.AddOption("s", "schema", "", "Path to the schema dictionary (required)", "required", nil)
	annotPath := u.AddOption("a", "annotation", "", "Path to the annotation dictionary", "optional", nil)
	outputPath := u.AddOption("o", "output", "", "Path to write the decoded JSON (defaults to stdout)", "optional", nil)
	checksum := u.AddOption("checksum", "checksum", "", "Expected hex-encoded BLAKE2b-256 checksum of the schema dictionary", "optional", nil)
	inputPath := u.AddArgument(1, "input", "Path to the BEJ stream to decode", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}
	if *help {
		u.PrintUsage()
		os.Exit(0)
	}
	if inputPath == nil || *inputPath == "" || *schemaPath == "" {
		u.PrintError(fmt.Errorf("an input file and -s <schema> are required"))
		os.Exit(1)
	}

	var logger logr.Logger
	if *verbose {
		logger = logging.NewSimpleLogger(os.Stderr, logging.LevelDebug, term.IsTerminal(int(os.Stderr.Fd())))
	} else {
		logger = logr.Discard()
	}

	spinner := newSpinner("loading dictionaries")
	schema, err := dictionary.LoadMap(*schemaPath)
	if err != nil {
		stopSpinner(spinner)
		u.PrintError(fmt.Errorf("loading schema dictionary: %w", err))
		os.Exit(1)
	}

	var annot *dictionary.Dictionary
	if *annotPath != "" {
		annot, err = dictionary.LoadMap(*annotPath)
		if err != nil {
			stopSpinner(spinner)
			u.PrintError(fmt.Errorf("loading annotation dictionary: %w", err))
			os.Exit(1)
		}
	}
	stopSpinner(spinner)

	opts := []bej.Option{bej.WithLogger(logger)}
	if *checksum != "" {
		sum, err := parseChecksum(*checksum)
		if err != nil {
			u.PrintError(fmt.Errorf("parsing -checksum: %w", err))
			os.Exit(1)
		}
		opts = append(opts, bej.WithChecksum(sum))
	}

	input, err := os.Open(*inputPath)
	if err != nil {
		u.PrintError(fmt.Errorf("opening input file: %w", err))
		os.Exit(1)
	}
	defer input.Close()

	doc, err := bej.Decode(input, schema, annot, opts...)
	if err != nil {
		u.PrintError(fmt.Errorf("decoding: %w", err))
		os.Exit(1)
	}

	out := os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			u.PrintError(fmt.Errorf("creating output file: %w", err))
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := jsontext.Encode(out, doc); err != nil {
		u.PrintError(fmt.Errorf("writing JSON output: %w", err))
		os.Exit(1)
	}
}

func parseChecksum(hexStr string) ([32]byte, error) {
	var sum [32]byte
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return sum, err
	}
	if len(decoded) != len(sum) {
		return sum, fmt.Errorf("checksum must be %d hex bytes, got %d", len(sum), len(decoded))
	}
	copy(sum[:], decoded)
	return sum, nil
}

func newSpinner(msg string) *yacspin.Spinner {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	cfg := yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[9],
		Suffix:          " " + msg,
		SuffixAutoColon: true,
		Writer:          os.Stderr,
	}
	s, err := yacspin.New(cfg)
	if err != nil {
		return nil
	}
	_ = s.Start()
	return s
}

func stopSpinner(s *yacspin.Spinner) {
	if s == nil {
		return
	}
	_ = s.Stop()
}
