// Command bejencode converts a JSON text file into a BEJ-encoded binary
// stream against a schema dictionary (and, optionally, an annotation
// dictionary for "@"-prefixed properties). Grounded on cli_encode.c in
// the C reference and on cmd/isoview's usage/spinner wiring in the
// teacher.
package main

import (
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
		usage.WithApplicationName("bejencode"),
		usage.WithApplicationDescription("bejencode converts a JSON document into a BEJ-encoded binary stream against a schema dictionary."),
	)

	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print diagnostic logging while encoding", "optional", nil)
	lenient := u.AddBooleanOption("l", "lenient", false, "Silently drop JSON keys absent from the dictionary instead of failing", "optional", nil)
	normalize := u.AddBooleanOption("n", "normalize", false, "Apply Unicode NFC normalization to string values before encoding", "optional", nil)
	schemaPath := u.AddOption("s", "schema", "", "Path to the schema dictionary (required)", "required", nil)
	annotPath := u.AddOption("a", "annotation", "", "Path to the annotation dictionary", "optional", nil)
	outputPath := u.AddOption("o", "output", "", "Path to write the encoded stream (defaults to stdout)", "optional", nil)
	inputPath := u.AddArgument(1, "input", "Path to the JSON document to encode", "")
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
		level := logging.LevelDebug
		logger = logging.NewSimpleLogger(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd())))
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

	input, err := os.Open(*inputPath)
	if err != nil {
		u.PrintError(fmt.Errorf("opening input file: %w", err))
		os.Exit(1)
	}
	defer input.Close()

	doc, err := jsontext.Decode(input)
	if err != nil {
		u.PrintError(fmt.Errorf("parsing JSON input: %w", err))
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

	err = bej.Encode(doc, schema, annot, out,
		bej.WithLogger(logger),
		bej.WithStrictUnknownKeys(!*lenient),
		bej.WithNormalizeStrings(*normalize),
	)
	if err != nil {
		u.PrintError(fmt.Errorf("encoding: %w", err))
		os.Exit(1)
	}
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
