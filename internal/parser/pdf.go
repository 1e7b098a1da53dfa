package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It reads styled rows with the Go library
// and, if enabled, falls back to pdftotext (losing emphasis) when that fails.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := extractPDFPages(data)
	if err != nil && p.FallbackPdftotext {
		var text string
		if text, err = extractPdftotext(data); err == nil {
			pages = textPages(strings.TrimSuffix(text, "\f"))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return &doctree.Document{Name: filename, Pages: pages}, nil
}

// extractPDFPages turns each page's text rows into lines.
func extractPDFPages(data []byte) (pages []doctree.Page, err error) {
	// The library panics on some malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages = make([]doctree.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := doctree.Page{Number: i}
		pg := reader.Page(i)
		if pg.V.IsNull() {
			pages = append(pages, page)
			continue
		}
		rows, err := pg.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			page.Lines = append(page.Lines, rowLine(row.Content))
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// rowLine folds one text row into a line. Consecutive glyphs set in the
// same font form one run.
func rowLine(texts []pdflib.Text) doctree.Line {
	var runs []doctree.Run
	font := ""
	for j, t := range texts {
		if j > 0 && t.Font == font {
			runs[len(runs)-1].Text += t.S
			continue
		}
		font = t.Font
		runs = append(runs, doctree.Run{Text: t.S, Emphasized: isBoldFont(t.Font)})
	}
	return doctree.Line{Runs: runs}
}

var boldMarkers = []string{"bold", "black", "heavy", "semibold", "demi"}

// isBoldFont infers weight from the style part of the base font name, the
// text after the last '-' or ',' as in "ABCDEF+Arial-BoldMT" or "Arial,Bold".
func isBoldFont(font string) bool {
	i := strings.LastIndexAny(font, "-,")
	if i < 0 {
		return false
	}
	style := strings.ToLower(font[i+1:])
	for _, m := range boldMarkers {
		if strings.Contains(style, m) {
			return true
		}
	}
	return false
}
