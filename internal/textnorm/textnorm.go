// Package textnorm cleans raw extracted text before scoring.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalize removes every character that is not an ASCII letter, digit,
// whitespace or one of .,;:!?- and then collapses whitespace runs to single
// spaces and trims the ends.
//
// Filtering happens before collapsing, so the result never holds a double
// space and Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if isSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if !allowed(r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// TrimSpace strips leading and trailing whitespace, including the ASCII
// information separators U+001C to U+001F.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(".,;:!?-", r)
}

// isSpace matches the regexp \s class of the extraction tooling, which also
// counts the ASCII information separators as whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
