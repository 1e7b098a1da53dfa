package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	rankStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// Render writes a human-readable summary of r.
func Render(w io.Writer, r *Report) {
	header := fmt.Sprintf("%s %s\n%s %s\n%s %d  %s %s",
		dimStyle.Render("Persona:"), r.Metadata.Persona,
		dimStyle.Render("Job:"), r.Metadata.JobToBeDone,
		dimStyle.Render("Documents:"), len(r.Metadata.InputDocuments),
		dimStyle.Render("At:"), r.Metadata.ProcessingTimestamp,
	)
	fmt.Fprintln(w, boxStyle.Render(header))

	fmt.Fprintln(w, headingStyle.Render("Top sections"))
	if len(r.Sections) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (none)"))
	}
	for _, s := range r.Sections {
		fmt.Fprintf(w, "  %s %s %s\n",
			rankStyle.Render(fmt.Sprintf("#%d", s.ImportanceRank)),
			s.SectionTitle,
			dimStyle.Render(fmt.Sprintf("(%s p.%d)", s.Document, s.PageNumber)),
		)
	}

	fmt.Fprintln(w, headingStyle.Render("Top sub-sections"))
	if len(r.Subsections) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (none)"))
	}
	for i, s := range r.Subsections {
		fmt.Fprintf(w, "  %d. %s\n     %s\n", i+1,
			dimStyle.Render(fmt.Sprintf("%s p.%d", s.Document, s.PageNumber)),
			strings.TrimSpace(s.RefinedText),
		)
	}
}
