package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// titleStrategy returns the page title or "" when its source is absent.
type titleStrategy func(doc *goquery.Document) string

// Ordered by markup reliability: a visible heading beats metadata beats the
// document title.
var titleStrategies = []titleStrategy{
	titleFromH1,
	titleFromOGMeta,
	titleFromTitleTag,
}

// FindTitle locates the article title, trying each strategy in order and
// returning the first hit. Returns "" when the document has no usable title.
func FindTitle(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	for _, strategy := range titleStrategies {
		if title := strategy(doc); title != "" {
			return title
		}
	}
	return ""
}

func titleFromH1(doc *goquery.Document) string {
	h1 := doc.Find("h1").First()
	return NormalizeSelection(h1)
}

// og:title is taken verbatim from the content attribute; attribute values are
// authored text, not markup, so they skip the selection normalizer.
func titleFromOGMeta(doc *goquery.Document) string {
	content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	if !ok {
		return ""
	}
	return strings.TrimSpace(content)
}

func titleFromTitleTag(doc *goquery.Document) string {
	return NormalizeSelection(doc.Find("title").First())
}
