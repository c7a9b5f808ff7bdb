package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"newsharvest/internal/extract"
	"newsharvest/internal/fetch"
	"newsharvest/internal/model"
	"newsharvest/internal/store"

	"go.uber.org/zap"
)

// Fetcher is the front half of the pipeline (validate, dedup, probe, render).
// This allows us to mock fetching in tests.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Summary is the outcome of one batch run.
type Summary struct {
	Saved   int
	Updated int
	Skipped int
}

// Pipeline runs the sequential ingestion loop: one URL is fully fetched,
// extracted and persisted before the next begins. The rendering session
// behind the Fetcher is single and non-reentrant, so there is deliberately
// no concurrency here.
type Pipeline struct {
	store   store.Store
	fetcher Fetcher
	logger  *zap.Logger
}

func New(st store.Store, fetcher Fetcher, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:   st,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Run loads the URL list from websitesPath and ingests every entry. Per-item
// failures are logged, counted and skipped; the batch never aborts on a
// single URL. The returned error covers only run-level problems (an
// unreadable URL list).
func (p *Pipeline) Run(ctx context.Context, websitesPath string) (Summary, error) {
	links, err := loadWebsites(websitesPath)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for idx, link := range links {
		page, err := p.fetcher.Fetch(ctx, link)
		if err != nil {
			p.logFetchError(link, err)
			summary.Skipped++
			continue
		}

		p.logger.Info("Scraping",
			zap.Int("n", idx+1),
			zap.Int("total", len(links)),
			zap.String("url", page.URL),
			zap.Int("skipped_so_far", summary.Skipped))

		candidate := extract.FromDocument(page.Doc, page.HTML, page.URL)
		article := buildRecord(candidate)

		created, err := p.store.Upsert(ctx, article)
		if err != nil {
			p.logger.Error("Failed to persist article", zap.String("url", page.URL), zap.Error(err))
			summary.Skipped++
			continue
		}
		if created {
			p.logger.Info("Saved new article", zap.String("title", article.Title), zap.String("url", article.URL))
			summary.Saved++
		} else {
			// Dedup normally prevents revisits; updating in place keeps the
			// one-record-per-URL invariant when it somehow did not.
			p.logger.Info("Updated article", zap.String("title", article.Title), zap.String("url", article.URL))
			summary.Updated++
		}
	}

	p.logger.Info("Run complete",
		zap.Int("saved", summary.Saved),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

func (p *Pipeline) logFetchError(link string, err error) {
	switch {
	case errors.Is(err, fetch.ErrAlreadyIngested):
		p.logger.Info("Skipping already-saved URL", zap.String("url", link))
	case errors.Is(err, fetch.ErrInvalidURL):
		p.logger.Warn("Skipping invalid URL", zap.String("url", link))
	case errors.Is(err, fetch.ErrUnreachable):
		p.logger.Warn("Skipping unreachable URL", zap.String("url", link), zap.Error(err))
	default:
		p.logger.Error("Failed to scrape URL", zap.String("url", link), zap.Error(err))
	}
}

// buildRecord converts a candidate into a persistable record, substituting
// the sentinel for any field the extractors could not fill. The published
// date is kept only if it round-trips through the storage layout; a parse
// failure leaves it absent rather than failing the item.
func buildRecord(c extract.Candidate) *model.Article {
	article := &model.Article{
		URL:       c.URL,
		Title:     orSentinel(c.Title),
		Body:      orSentinel(c.BodyHTML()),
		PlainBody: orSentinel(c.PlainBody),
		Excerpt:   c.Excerpt,
	}

	if c.PublishedAt != "" {
		if parsed, err := time.ParseInLocation(model.PublishedAtLayout, c.PublishedAt, time.Local); err == nil {
			article.PublishedAt = &parsed
		}
	}

	return article
}

func orSentinel(value string) string {
	if value == "" {
		return model.NotFound
	}
	return value
}

// loadWebsites reads the input URL list, a JSON array of strings.
func loadWebsites(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read websites list: %w", err)
	}
	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("parse websites list %s: %w", path, err)
	}
	return links, nil
}
