// Package section folds a document's styled lines into titled sections.
package section

import (
	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/textnorm"
)

// TitleMaxLen is the stripped length below which a line counts as a title
// even without emphasis.
const TitleMaxLen = 50

// IsTitleLine reports whether a line starts a new section: any emphasized
// run, or fewer than TitleMaxLen characters once stripped. Blank lines
// therefore also count as titles.
func IsTitleLine(line doctree.Line) bool {
	for _, r := range line.Runs {
		if r.Emphasized {
			return true
		}
	}
	return len([]rune(textnorm.TrimSpace(line.Text()))) < TitleMaxLen
}
