package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// authorLinkSelector matches the author-profile anchors some sources place
// directly above the publication date.
const authorLinkSelector = `a[href^="/autorzy/"]`

// Polish month names (genitive first, as written in dates, then nominative)
// rewritten to English so dateparse can handle them.
var polishMonths = strings.NewReplacer(
	"stycznia", "january", "styczeń", "january",
	"lutego", "february", "luty", "february",
	"marca", "march", "marzec", "march",
	"kwietnia", "april", "kwiecień", "april",
	"maja", "may", "maj", "may",
	"czerwca", "june", "czerwiec", "june",
	"lipca", "july", "lipiec", "july",
	"sierpnia", "august", "sierpień", "august",
	"września", "september", "wrzesień", "september",
	"października", "october", "październik", "october",
	"listopada", "november", "listopad", "november",
	"grudnia", "december", "grudzień", "december",
)

// FindPublishedAt locates the publication date and returns it formatted as
// DD.MM.YYYY HH:MM:SS, or "" when no parseable date is found. It first tries
// a <time> element (datetime attribute, falling back to its text), then the
// author-link heuristic: the paragraph following an author-profile anchor.
func FindPublishedAt(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	if timeTag := doc.Find("time").First(); timeTag.Length() > 0 {
		raw, ok := timeTag.Attr("datetime")
		if !ok || strings.TrimSpace(raw) == "" {
			raw = NormalizeSelection(timeTag)
		}
		if formatted := parseDate(raw); formatted != "" {
			return formatted
		}
	}

	if authorLink := doc.Find(authorLinkSelector).First(); authorLink.Length() > 0 {
		possible := NormalizeSelection(followingParagraph(authorLink))
		if formatted := parseDate(possible); formatted != "" {
			return formatted
		}
	}

	return ""
}

// parseDate parses a natural-language date with a Polish locale hint and
// renders it in the storage layout. Unparseable input yields "".
func parseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := dateparse.ParseLocal(raw)
	if err != nil {
		// Machine-readable formats failed; rewrite Polish month names and
		// retry as natural language.
		parsed, err = dateparse.ParseLocal(polishMonths.Replace(strings.ToLower(raw)))
		if err != nil {
			return ""
		}
	}
	return parsed.Format("02.01.2006 15:04:05")
}

// followingParagraph finds the first <p> after sel in document order,
// climbing out of the anchor's ancestors when no sibling paragraph exists.
func followingParagraph(sel *goquery.Selection) *goquery.Selection {
	for s := sel; s.Length() > 0; s = s.Parent() {
		if p := s.NextAllFiltered("p").First(); p.Length() > 0 {
			return p
		}
	}
	return nil
}
