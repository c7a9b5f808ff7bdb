package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsharvest/internal/store"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyIngested signals a dedup hit. It is a skip, not a failure.
	ErrAlreadyIngested = errors.New("url already ingested")
	// ErrInvalidURL signals a URL without an http(s) scheme or host.
	ErrInvalidURL = errors.New("invalid url")
	// ErrUnreachable signals a probe-level network error or bad status.
	ErrUnreachable = errors.New("url unreachable")
)

// browserUserAgent makes the probe and the rendering session look like a
// regular desktop browser; some sources block default Go clients outright.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36 Edg/141.0.0.0"

const probeTimeout = 10 * time.Second

const defaultRenderTimeout = 60 * time.Second

// badStatuses are probe responses not worth spending a render cycle on.
var badStatuses = map[int]struct{}{
	http.StatusForbidden:           {},
	http.StatusNotFound:            {},
	http.StatusRequestTimeout:      {},
	http.StatusInternalServerError: {},
}

// CanonicalURL strips exactly one trailing slash so revisits of the same
// page under both spellings dedup to one key. Idempotent for already-clean
// URLs.
func CanonicalURL(rawURL string) string {
	return strings.TrimSuffix(rawURL, "/")
}

// Page is a fetched, rendered and parsed document.
type Page struct {
	Doc  *goquery.Document
	HTML string
	URL  string // canonicalized
}

// Fetcher validates a URL, probes it cheaply over plain HTTP and only then
// drives the rendering session to capture the post-render source.
type Fetcher struct {
	store         store.Store
	renderer      Renderer
	probe         *http.Client
	logger        *zap.Logger
	renderTimeout time.Duration
}

func NewFetcher(st store.Store, renderer Renderer, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		store:         st,
		renderer:      renderer,
		probe:         &http.Client{Timeout: probeTimeout},
		logger:        logger,
		renderTimeout: defaultRenderTimeout,
	}
}

// Fetch runs the per-URL front half of the pipeline: canonicalize, dedup
// check, syntactic validation, HTTP probe, render, parse. Errors are
// classified with the sentinel errors above so the caller can count skips
// without aborting the batch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	link := CanonicalURL(rawURL)

	exists, err := f.store.Exists(ctx, link)
	if err != nil {
		// A store hiccup must not kill the item; worst case we re-scrape.
		f.logger.Debug("Could not check store for existing article", zap.Error(err))
	} else if exists {
		return nil, fmt.Errorf("%s: %w", link, ErrAlreadyIngested)
	}

	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%s: %w", link, ErrInvalidURL)
	}

	if err := f.probeURL(ctx, link); err != nil {
		return nil, err
	}

	// Announce the URL before driving the browser so a hung render is
	// attributable from the log trail.
	f.logger.Info("Rendering", zap.String("url", link))

	html, err := f.renderer.Render(link, f.renderTimeout)
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered source of %s: %w", link, err)
	}

	return &Page{Doc: doc, HTML: html, URL: link}, nil
}

// probeURL issues the lightweight GET that rejects dead or blocked links
// before the expensive render step.
func (f *Fetcher) probeURL(ctx context.Context, link string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", link, ErrInvalidURL)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.probe.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w: %v", link, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if _, bad := badStatuses[resp.StatusCode]; bad {
		return fmt.Errorf("probe %s: status %d: %w", link, resp.StatusCode, ErrUnreachable)
	}
	return nil
}
