package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/docrank/internal/parser"
)

// Input is one document handed to a run: its display name and raw bytes.
type Input struct {
	Name string
	Data []byte
}

// Discover reads every supported regular file directly under dir, in
// lexicographic filename order.
func Discover(dir string) ([]Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	// os.ReadDir returns entries sorted by filename.
	var inputs []Input
	for _, e := range entries {
		if !e.Type().IsRegular() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, &DecodeError{Document: e.Name(), Err: err}
		}
		inputs = append(inputs, Input{Name: e.Name(), Data: data})
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoInputDocuments)
	}
	return inputs, nil
}
