package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads path and opens it as a dictionary blob.
func LoadFile(path string) (*Dictionary, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dictionary: read %s: %w", path, err)
	}
	return Open(blob)
}

// LoadMap loads a dictionary, honoring the .map/.bin sibling convention
// from §6.1: if path ends in ".map", the sibling file with the same base
// name and a ".bin" extension is opened instead. Any other extension
// (including ".bin" itself) is opened as given. Grounded on
// bej_dictionary_load_map in the C reference.
func LoadMap(path string) (*Dictionary, error) {
	if strings.EqualFold(filepath.Ext(path), ".map") {
		binPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".bin"
		return LoadFile(binPath)
	}
	return LoadFile(path)
}
