package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// Parser decodes raw document bytes into pages of styled lines.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".txt":      true,
	".csv":      true,
}

// Options tunes decoder behavior.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// appendRun adds text to runs, merging it into the last run when the
// emphasis matches.
func appendRun(runs []doctree.Run, text string, emphasized bool) []doctree.Run {
	if text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Emphasized == emphasized {
		runs[n-1].Text += text
		return runs
	}
	return append(runs, doctree.Run{Text: text, Emphasized: emphasized})
}

func plainLine(text string) doctree.Line {
	return doctree.Line{Runs: []doctree.Run{{Text: text}}}
}

// textPages splits plain text into pages on form feeds and lines on newlines.
func textPages(text string) []doctree.Page {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(text, "\f")
	pages := make([]doctree.Page, 0, len(raw))
	for i, pg := range raw {
		page := doctree.Page{Number: i + 1}
		pg = strings.TrimSuffix(pg, "\n")
		if pg != "" {
			for _, line := range strings.Split(pg, "\n") {
				page.Lines = append(page.Lines, plainLine(line))
			}
		}
		pages = append(pages, page)
	}
	return pages
}
