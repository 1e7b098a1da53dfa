package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// csvRowsPerPage groups data rows into pages so long tables still split
// into several sections.
const csvRowsPerPage = 20

// CSVParser handles CSV files. The header row is an emphasized line at the
// top of every page; each data row becomes a "header: value" line.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &doctree.Document{Name: filename}
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]
	title := doctree.Line{Runs: []doctree.Run{{Text: strings.Join(headers, ", "), Emphasized: true}}}
	rows := records[1:]

	for i := 0; i < len(rows); i += csvRowsPerPage {
		end := min(i+csvRowsPerPage, len(rows))
		page := doctree.Page{Number: len(doc.Pages) + 1, Lines: []doctree.Line{title}}
		for _, row := range rows[i:end] {
			cells := make([]string, len(row))
			for j, cell := range row {
				if j < len(headers) {
					cells[j] = headers[j] + ": " + cell
				} else {
					cells[j] = cell
				}
			}
			page.Lines = append(page.Lines, plainLine(strings.Join(cells, ", ")))
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}
