package relevance

import (
	"context"
	"strings"
	"unicode"
)

// KeywordModel scores by lexical overlap: the fraction of distinct persona
// and job terms that also occur in the text. It needs no network and is
// fully deterministic, which makes it the default backend.
type KeywordModel struct{}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true, "this": true,
	"from": true, "into": true, "onto": true, "are": true, "was": true, "were": true,
	"you": true, "your": true, "our": true, "their": true, "has": true, "have": true,
	"had": true, "not": true, "but": true, "all": true, "any": true, "can": true,
	"will": true, "its": true, "they": true, "them": true, "who": true, "what": true,
	"which": true, "when": true, "how": true, "about": true, "over": true, "per": true,
}

// Probability returns matched terms over total terms, or 0 when persona and
// job contribute no terms.
func (KeywordModel) Probability(_ context.Context, p Prompt) (float64, error) {
	terms := termSet(p.Persona + " " + p.Job)
	if len(terms) == 0 {
		return 0, nil
	}
	words := termSet(p.Text)
	matched := 0
	for t := range terms {
		if words[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(terms)), nil
}

// termSet returns the distinct stemmed terms of s.
func termSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(f) < 3 || stopwords[f] {
			continue
		}
		set[stem(f)] = true
	}
	return set
}

// stem strips a plural "s" so "benchmarks" matches "benchmark".
func stem(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}
