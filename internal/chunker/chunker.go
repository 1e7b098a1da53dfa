package chunker

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/textnorm"
)

// RefinedTextMax caps the characters kept in a sub-section's refined text.
const RefinedTextMax = 200

// SplitMode selects which text a section's paragraphs are split from.
type SplitMode string

const (
	// SplitNormalized splits the normalized body. Normalization has already
	// collapsed blank lines, so each section yields at most one paragraph.
	SplitNormalized SplitMode = "normalized"
	// SplitRaw splits the body as accumulated, before normalization.
	SplitRaw SplitMode = "raw"
)

// ParseSplitMode validates a split mode name. Empty selects SplitNormalized.
func ParseSplitMode(s string) (SplitMode, error) {
	switch SplitMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SplitNormalized:
		return SplitNormalized, nil
	case SplitRaw:
		return SplitRaw, nil
	}
	return "", fmt.Errorf("unknown paragraph split mode: %q", s)
}

// Paragraphs splits text on double-newlines and drops whitespace-only parts.
// Retained paragraphs are returned as found, untrimmed.
func Paragraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			result = append(result, p)
		}
	}
	return result
}

// Subsections derives one sub-section per non-empty paragraph of each
// section, in section order then paragraph order.
func Subsections(sections []doctree.Section, mode SplitMode) []doctree.Subsection {
	var subs []doctree.Subsection
	for _, s := range sections {
		source := s.Text
		if mode == SplitRaw {
			source = s.RawText
		}
		for _, para := range Paragraphs(source) {
			if mode == SplitRaw {
				para = textnorm.Normalize(para)
				if para == "" {
					continue
				}
			}
			subs = append(subs, doctree.Subsection{
				Document:    s.Document,
				RefinedText: textnorm.Truncate(textnorm.Normalize(para), RefinedTextMax),
				Paragraph:   para,
				Page:        s.Page,
			})
		}
	}
	return subs
}
