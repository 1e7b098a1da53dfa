package section

import (
	"context"
	"fmt"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/textnorm"
)

// onTitle applies a title line to the accumulator. A non-empty accumulator
// is returned as closed and a fresh one for the same page takes the title;
// otherwise the title overwrites whatever title the accumulator had.
func onTitle(acc doctree.Section, title string) (closed *doctree.Section, next doctree.Section) {
	if acc.Text != "" {
		done := acc
		closed = &done
		acc = doctree.Section{Document: acc.Document, Page: acc.Page}
	}
	acc.Title = title
	return closed, acc
}

// onBody appends a body line plus newline to the accumulator.
func onBody(acc doctree.Section, text string) doctree.Section {
	acc.Text += text + "\n"
	return acc
}

// Builder accumulates sections for one document. The zero value is not
// usable; create one with NewBuilder.
type Builder struct {
	document string
	current  doctree.Section
	closed   []doctree.Section
	open     bool
}

func NewBuilder(document string) *Builder {
	return &Builder{document: document}
}

// StartPage seeds an empty, untitled accumulator for page number n.
func (b *Builder) StartPage(n int) {
	b.current = doctree.Section{Document: b.document, Page: n}
	b.open = true
}

// Feed classifies one line and applies the matching transition.
func (b *Builder) Feed(line doctree.Line) {
	if !b.open {
		b.StartPage(1)
	}
	text := line.Text()
	if IsTitleLine(line) {
		closed, next := onTitle(b.current, textnorm.TrimSpace(text))
		if closed != nil {
			b.closed = append(b.closed, *closed)
		}
		b.current = next
		return
	}
	b.current = onBody(b.current, text)
}

// EndPage closes the accumulator if it holds body text.
func (b *Builder) EndPage() {
	if b.open && b.current.Text != "" {
		b.closed = append(b.closed, b.current)
	}
	b.current = doctree.Section{}
	b.open = false
}

// Sections closes any residual accumulator and returns the sections built
// so far in encounter order.
func (b *Builder) Sections() []doctree.Section {
	b.EndPage()
	return b.closed
}

// Build scans every page of src and returns its sections. Sections whose
// body is empty are never returned.
func Build(ctx context.Context, document string, src doctree.PageSource) ([]doctree.Section, error) {
	b := NewBuilder(document)
	for i := range src.PageCount() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := src.Page(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		b.StartPage(i + 1)
		for _, line := range page.Lines {
			b.Feed(line)
		}
		b.EndPage()
	}
	sections := b.Sections()
	for i := range sections {
		sections[i].RawText = sections[i].Text
	}
	return sections, nil
}
