package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// adContainerSelector marks elements that are stripped from the document
// before any body search so ad text never leaks into extracted content.
const adContainerSelector = "div.ad-container"

// bodySelectors are common content containers, tried in order.
var bodySelectors = []string{
	"div.table-post",
	"article",
	"div.article-body",
	"div.post-content",
}

// minBodyTextLen gates the largest-div fallback: a candidate below this many
// characters of stripped text is not a believable article body.
const minBodyTextLen = 100

// FindBody locates the main content container. The ad-container removal is
// destructive: the document no longer contains those elements afterwards.
// Returns nil when no selector matches and the largest <div> is below the
// acceptance threshold.
func FindBody(doc *goquery.Document) *goquery.Selection {
	if doc == nil {
		return nil
	}
	doc.Find(adContainerSelector).Remove()

	for _, selector := range bodySelectors {
		if match := doc.Find(selector).First(); match.Length() > 0 {
			return match
		}
	}
	return largestDiv(doc)
}

// largestDiv scans every <div> and returns the one with the most stripped
// text, provided it clears minBodyTextLen.
func largestDiv(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestLen := 0
	doc.Find("div").Each(func(_ int, div *goquery.Selection) {
		if n := len(flatten(div.Text())); n > bestLen {
			best = div
			bestLen = n
		}
	})
	if best == nil || bestLen <= minBodyTextLen {
		return nil
	}
	return best
}
