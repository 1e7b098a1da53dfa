package textnorm

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"collapses newlines", "line one\nline two\n\nline three\n", "line one line two line three"},
		{"trims ends", "   padded   ", "padded"},
		{"keeps punctuation", "Wait: yes, no; maybe! why? x-y.", "Wait: yes, no; maybe! why? x-y."},
		{"drops symbols", "cost (USD) = $5 & 10%", "cost USD 5 10"},
		{"drops non-ascii letters", "café naïve", "caf nave"},
		{"symbol between spaces", "a © b", "a b"},
		{"leading symbol", "© 2024 Acme", "2024 Acme"},
		{"nbsp is whitespace", "a\u00a0b", "a b"},
		{"separator is whitespace", "a\x1fb", "a b"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.input)
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"  © leading and trailing ®  ",
		"tabs\tand\nnewlines\r\nmixed",
		"a © b ™ c",
		"émigré — résumé",
		"\x00\x01 control \x7f chars",
		strings.Repeat("word ✓ ", 50),
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"héllo", 2, "hé"},
	}
	for _, tc := range tests {
		got := Truncate(tc.input, tc.n)
		if got != tc.want {
			t.Errorf("Truncate(%q, %d): expected %q, got %q", tc.input, tc.n, tc.want, got)
		}
	}
}

func TestTrimSpace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"\x1f\x1f\x1fhello\x1c", "hello"},
		{"\t\x1d mixed \x1e\n", "mixed"},
		{"inner\x1fkept", "inner\x1fkept"},
		{"\x1f\x1f", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := TrimSpace(tc.input); got != tc.want {
			t.Errorf("TrimSpace(%q): expected %q, got %q", tc.input, tc.want, got)
		}
	}
}
