package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. The body is one page; h1-h6 become
// emphasized lines, and b/strong inside text blocks become emphasized runs.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	page := doctree.Page{Number: 1}
	var runs []doctree.Run
	flush := func() {
		if len(runs) > 0 {
			page.Lines = append(page.Lines, doctree.Line{Runs: runs})
			runs = nil
		}
	}

	var walk func(n *html.Node, strong bool)
	walk = func(n *html.Node, strong bool) {
		switch n.Type {
		case html.TextNode:
			runs = appendRun(runs, collapseSpace(n.Data), strong)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "noscript":
				return
			case "br":
				flush()
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				flush()
				page.Lines = append(page.Lines, doctree.Line{Runs: []doctree.Run{
					{Text: textContent(n), Emphasized: true},
				}})
				return
			case "b", "strong":
				strong = true
			}
		}

		block := n.Type == html.ElementNode && isBlock(n.Data)
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, strong)
		}
		if block {
			flush()
		}
	}

	if body := findBody(doc); body != nil {
		walk(body, false)
	} else {
		walk(doc, false)
	}
	flush()

	// Drop lines that are whitespace between block tags.
	lines := page.Lines[:0]
	for _, l := range page.Lines {
		if strings.TrimSpace(l.Text()) != "" {
			lines = append(lines, l)
		}
	}
	page.Lines = lines

	return &doctree.Document{Name: filename, Pages: []doctree.Page{page}}, nil
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "ul", "ol", "td", "th", "tr", "table",
		"blockquote", "pre", "section", "article", "main", "dd", "dt":
		return true
	}
	return false
}

// collapseSpace folds HTML source whitespace into single spaces.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == '\f' {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(collapseSpace(buf.String()))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
