package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. The whole file is
// one page; headings become emphasized lines and **strong** spans become
// emphasized runs.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	page := doctree.Page{Number: 1}

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch node := n.(type) {
		case *ast.Heading:
			page.Lines = append(page.Lines, doctree.Line{Runs: []doctree.Run{
				{Text: string(node.Text(src)), Emphasized: true},
			}})
		case *ast.Paragraph, *ast.TextBlock:
			page.Lines = append(page.Lines, inlineLines(n, src)...)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				page.Lines = append(page.Lines, plainLine(strings.TrimRight(string(seg.Value(src)), "\n")))
			}
		default:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				walk(c)
			}
		}
	}
	walk(doc)

	return &doctree.Document{Name: filename, Pages: []doctree.Page{page}}, nil
}

// inlineLines flattens a block's inline children into lines, breaking at
// soft and hard line breaks.
func inlineLines(block ast.Node, src []byte) []doctree.Line {
	var lines []doctree.Line
	var runs []doctree.Run

	var walk func(n ast.Node, strong bool)
	walk = func(n ast.Node, strong bool) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch in := c.(type) {
			case *ast.Text:
				runs = appendRun(runs, string(in.Segment.Value(src)), strong)
				if in.SoftLineBreak() || in.HardLineBreak() {
					lines = append(lines, doctree.Line{Runs: runs})
					runs = nil
				}
			case *ast.String:
				runs = appendRun(runs, string(in.Value), strong)
			case *ast.Emphasis:
				walk(in, strong || in.Level >= 2)
			default:
				walk(c, strong)
			}
		}
	}
	walk(block, false)

	if len(runs) > 0 {
		lines = append(lines, doctree.Line{Runs: runs})
	}
	return lines
}
