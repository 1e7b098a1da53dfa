// Package report shapes ranked sections into the final output document.
package report

import (
	"time"

	"github.com/dgallion1/docrank/internal/doctree"
)

// DefaultTopK is how many sections and sub-sections a report keeps.
const DefaultTopK = 5

// TimestampLayout is ISO-8601 in UTC with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Report is the analysis result. It is not modified after Assemble.
type Report struct {
	Metadata    Metadata            `json:"metadata"`
	Sections    []ExtractedSection  `json:"extracted_sections"`
	Subsections []SubsectionSummary `json:"sub_section_analysis"`
}

type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

type ExtractedSection struct {
	Document       string `json:"document"`
	PageNumber     int    `json:"page_number"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
}

type SubsectionSummary struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Input carries everything Assemble needs.
type Input struct {
	Documents   []string // Discovery order
	Persona     string
	Job         string
	Sections    []doctree.Section    // Ranked
	Subsections []doctree.Subsection // Ranked
	TopK        int                  // <= 0 selects DefaultTopK
	Now         time.Time
}

// Assemble keeps the top K of each ranked list, never padding short input.
func Assemble(in Input) *Report {
	k := in.TopK
	if k <= 0 {
		k = DefaultTopK
	}

	docs := make([]string, len(in.Documents))
	copy(docs, in.Documents)

	sections := make([]ExtractedSection, 0, min(k, len(in.Sections)))
	for _, s := range in.Sections[:min(k, len(in.Sections))] {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		sections = append(sections, ExtractedSection{
			Document:       s.Document,
			PageNumber:     s.Page,
			SectionTitle:   title,
			ImportanceRank: s.Rank,
		})
	}

	subs := make([]SubsectionSummary, 0, min(k, len(in.Subsections)))
	for _, s := range in.Subsections[:min(k, len(in.Subsections))] {
		subs = append(subs, SubsectionSummary{
			Document:    s.Document,
			RefinedText: s.RefinedText,
			PageNumber:  s.Page,
		})
	}

	return &Report{
		Metadata: Metadata{
			InputDocuments:      docs,
			Persona:             in.Persona,
			JobToBeDone:         in.Job,
			ProcessingTimestamp: in.Now.UTC().Format(TimestampLayout),
		},
		Sections:    sections,
		Subsections: subs,
	}
}
