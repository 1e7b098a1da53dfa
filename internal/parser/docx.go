package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Word has no fixed pagination, so the body
// is one page; each paragraph is a line and bold runs are emphasized.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	page := doctree.Page{Number: 1}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		page.Lines = append(page.Lines, docxLine(para))
	}

	return &doctree.Document{Name: filename, Pages: []doctree.Page{page}}, nil
}

// docxLine flattens a paragraph's text runs into one line.
func docxLine(para *docx.Paragraph) doctree.Line {
	heading := isDocxHeading(para)
	var runs []doctree.Run
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		bold := heading || (run.RunProperties != nil && boldOn(run.RunProperties.Bold))
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				runs = appendRun(runs, t.Text, bold)
			}
		}
	}
	return doctree.Line{Runs: runs}
}

// boldOn reports whether a <w:b> element switches bold on. A bare element
// means on; w:val="0", "false" or "off" switches it off.
func boldOn(b *docx.Bold) bool {
	if b == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(b.Val)) {
	case "0", "false", "off":
		return false
	}
	return true
}

// isDocxHeading reports whether the paragraph uses a heading or title style.
func isDocxHeading(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	return strings.HasPrefix(style, "heading") || style == "title"
}
