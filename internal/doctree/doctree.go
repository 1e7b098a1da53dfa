package doctree

// Run is a contiguous piece of text on one line with a single emphasis state.
type Run struct {
	Text       string
	Emphasized bool // Bold or equivalent, as reported by the decoder.
}

// Line is an ordered sequence of runs rendered on one visual line.
type Line struct {
	Runs []Run
}

// Text concatenates the line's runs verbatim, with no separator.
func (l Line) Text() string {
	switch len(l.Runs) {
	case 0:
		return ""
	case 1:
		return l.Runs[0].Text
	}
	n := 0
	for _, r := range l.Runs {
		n += len(r.Text)
	}
	b := make([]byte, 0, n)
	for _, r := range l.Runs {
		b = append(b, r.Text...)
	}
	return string(b)
}

// Page holds the lines of one page in reading order.
type Page struct {
	Number int // 1-indexed
	Lines  []Line
}

// PageSource yields a document's pages one at a time. Decoders that read
// lazily can report a per-page failure through the error.
type PageSource interface {
	PageCount() int
	Page(i int) (Page, error) // i is 0-indexed
}

// Document is a fully decoded document.
type Document struct {
	Name  string // File name, used as the document identity in reports
	Pages []Page
}

func (d *Document) PageCount() int { return len(d.Pages) }

func (d *Document) Page(i int) (Page, error) { return d.Pages[i], nil }

// Section is a titled run of body text found while scanning a document.
type Section struct {
	Document  string
	Title     string // Empty when no title line preceded the body
	Text      string // Accumulated body; normalized before ranking
	RawText   string // Body as accumulated, before normalization
	Page      int
	Relevance float64
	Rank      int // 1-based importance rank, set by ranking
}

// Subsection is one paragraph of a ranked section's body.
type Subsection struct {
	Document    string
	RefinedText string // Normalized paragraph, truncated
	Paragraph   string // Untruncated paragraph text handed to the scorer
	Page        int
	Relevance   float64
}
