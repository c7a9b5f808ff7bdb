package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Candidate is the transient extraction result for a single URL. Empty string
// fields (and a nil Body) mean "not found"; sentinel substitution happens at
// persist time, not here.
type Candidate struct {
	Title       string
	Body        *goquery.Selection
	PlainBody   string
	PublishedAt string
	Excerpt     string
	URL         string
}

// FromDocument runs every extractor against the rendered document and
// assembles a candidate. Each extractor fails independently; the worst case
// is a candidate with only its URL set. Never returns an error.
func FromDocument(doc *goquery.Document, renderedHTML, pageURL string) Candidate {
	c := Candidate{URL: pageURL}
	if doc == nil {
		return c
	}

	c.Title = FindTitle(doc)
	c.Body = FindBody(doc)
	if c.Body != nil {
		c.PlainBody = NormalizeSelection(c.Body)
	}
	c.PublishedAt = FindPublishedAt(doc)
	c.Excerpt = excerptOf(renderedHTML, pageURL)

	return c
}

// BodyHTML serializes the detected content container, or returns "" when no
// body was found.
func (c Candidate) BodyHTML() string {
	if c.Body == nil || c.Body.Length() == 0 {
		return ""
	}
	html, err := goquery.OuterHtml(c.Body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(html)
}

// excerptOf derives a short summary via readability. Best effort only; any
// failure yields "".
func excerptOf(renderedHTML, pageURL string) string {
	if renderedHTML == "" {
		return ""
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(renderedHTML), parsed)
	if err != nil {
		return ""
	}
	return Normalize(article.Excerpt)
}
