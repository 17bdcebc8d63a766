// Package fetch - browser.go renders script-heavy job pages in headless Chrome.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the extracted text length below which a page is assumed to need
// script rendering.
const MinContentLength = 500

// DefaultSettle is how long a rendered page is given to finish client-side rendering
// when none of the wait selectors appears.
const DefaultSettle = 2 * time.Second

// ShouldUseBrowser reports whether extracted text is too short to be a real posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// RenderOptions configures a headless render.
type RenderOptions struct {
	Timeout time.Duration
	// WaitFor lists selectors that mark a rendered posting. The render returns as soon
	// as one is visible, or after Settle when none appears.
	WaitFor []string
	Settle  time.Duration
}

// RenderOptionsFor returns options that wait for the platform's description container.
func RenderOptionsFor(p Platform, timeout time.Duration) RenderOptions {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var wait []string
	if p != PlatformUnknown {
		wait = PlatformContentSelectors(p)
	}
	return RenderOptions{Timeout: timeout, WaitFor: wait, Settle: DefaultSettle}
}

// Render loads url in headless Chrome and returns the rendered HTML.
// Chrome or Chromium must be installed.
func Render(ctx context.Context, url string, opts RenderOptions) (string, error) {
	if err := ValidateURL(url); err != nil {
		return "", err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	slog.Debug("rendering page in headless browser", "url", url, "wait_for", len(opts.WaitFor))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		waitForAny(opts.WaitFor, opts.Settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	slog.Debug("browser rendered page", "url", url, "bytes", len(html))
	return html, nil
}

// waitForAny waits until one of selectors is visible, giving up quietly after settle.
func waitForAny(selectors []string, settle time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if len(selectors) == 0 {
			return chromedp.Sleep(settle).Do(ctx)
		}
		waitCtx, cancel := context.WithTimeout(ctx, settle)
		defer cancel()

		err := chromedp.WaitVisible(strings.Join(selectors, ", "), chromedp.ByQuery).Do(waitCtx)
		if err != nil && ctx.Err() != nil {
			return fmt.Errorf("page did not render: %w", ctx.Err())
		}
		return nil
	})
}
