package parser

import (
	"io"

	"github.com/dgallion1/docrank/internal/doctree"
)

// TextParser handles plain text files. Form feeds separate pages; no line
// carries emphasis.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &doctree.Document{Name: filename, Pages: textPages(string(data))}, nil
}
