package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer obtains post-render page source for a URL.
// This allows us to mock the "Render" step in tests.
type Renderer interface {
	Render(url string, timeout time.Duration) (string, error)
	Close()
}

// ChromeRenderer drives a single headless Chrome session. The session is
// stateful and non-reentrant: one renderer serves one sequential run and is
// torn down with Close on every exit path.
type ChromeRenderer struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	settle      time.Duration
}

// NewChromeRenderer launches the browser immediately so a missing or broken
// Chrome install fails the run up front rather than on the first URL.
// settle is the fixed delay after navigation that lets client-side scripts
// finish before the source is captured.
func NewChromeRenderer(settle time.Duration) (*ChromeRenderer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(browserUserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start headless browser: %w", err)
	}

	return &ChromeRenderer{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		settle:      settle,
	}, nil
}

// Render navigates to the URL, waits out the settle window and captures the
// rendered document source.
func (r *ChromeRenderer) Render(url string, timeout time.Duration) (string, error) {
	tabCtx, cancel := context.WithTimeout(r.ctx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}

// Close tears down the browser session.
func (r *ChromeRenderer) Close() {
	r.cancel()
	r.allocCancel()
}
