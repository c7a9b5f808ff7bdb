package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Normalize trims surrounding whitespace and returns "" when nothing
// meaningful remains. Callers treat "" as "not found"; a normalized value is
// never whitespace-only.
func Normalize(value string) string {
	return strings.TrimSpace(value)
}

// NormalizeSelection extracts the text of a selection with whitespace runs
// collapsed. A nil or empty selection yields "".
func NormalizeSelection(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return flatten(sel.Text())
}

// flatten collapses all interior whitespace (newlines and indentation from
// the markup) into single spaces and trims the ends.
func flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
