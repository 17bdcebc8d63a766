package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/interview-coach/internal/fetch"
)

// MaxDescriptionBytes is the longest description kept on a session.
const MaxDescriptionBytes = 4000

// JobPosting is a fetched and cleaned job description.
type JobPosting struct {
	URL       string         `json:"url"`
	Platform  fetch.Platform `json:"platform"`
	Text      string         `json:"text"`
	Hash      string         `json:"hash"`
	FetchedAt time.Time      `json:"fetched_at"`
	Browser   bool           `json:"browser,omitempty"`
	Truncated bool           `json:"truncated,omitempty"`
	// Structured is set when the text came from the page's schema.org JobPosting data.
	Structured bool `json:"structured,omitempty"`
}

// Options controls a job fetch.
type Options struct {
	UseBrowser     bool
	BrowserTimeout time.Duration
	Fetch          *fetch.Options
	Cache          *fetch.TextCache
}

// EmptyPostingError is returned when a page yields no usable text.
type EmptyPostingError struct {
	URL string
}

func (e *EmptyPostingError) Error() string {
	return fmt.Sprintf("ingestion error: no job description text found at %s", e.URL)
}

// FetchJobDescription downloads a posting, extracts its main text with platform-specific
// selectors, and cleans it. With UseBrowser, pages whose static HTML is too thin are
// rendered in headless Chrome.
func FetchJobDescription(ctx context.Context, url string, opts Options) (*JobPosting, error) {
	platform := fetch.DetectPlatform(url)
	posting := &JobPosting{URL: url, Platform: platform, FetchedAt: time.Now().UTC()}

	if opts.Cache != nil {
		if text, ok := opts.Cache.Get(url); ok {
			slog.Debug("job posting cache hit", "url", url)
			return finish(posting, text), nil
		}
	}

	content := fetch.PlatformContentSelectors(platform)
	noise := fetch.PlatformNoiseSelectors(platform)

	res, err := fetch.URL(ctx, url, opts.Fetch)
	if err != nil {
		return nil, err
	}
	text, err := fetch.ExtractMainText(res.HTML, content, noise...)
	if err != nil {
		return nil, fmt.Errorf("failed to extract job text: %w", err)
	}
	if structured, ok := fetch.ExtractStructuredPosting(res.HTML); ok && len(structured.Description) > len(text) {
		text = structured.Description
		posting.Structured = true
	}

	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		html, berr := fetch.Render(ctx, url, fetch.RenderOptionsFor(platform, opts.BrowserTimeout))
		if berr != nil {
			slog.Warn("browser fallback failed", "url", url, "error", berr)
		} else if rendered, xerr := fetch.ExtractMainText(html, content, noise...); xerr == nil && len(rendered) > len(text) {
			text = rendered
			posting.Browser = true
		}
	}

	text = CleanText(text)
	if text == "" {
		return nil, &EmptyPostingError{URL: url}
	}
	if opts.Cache != nil {
		opts.Cache.Put(url, text)
	}
	return finish(posting, text), nil
}

func finish(p *JobPosting, text string) *JobPosting {
	cut := Truncate(text, MaxDescriptionBytes)
	p.Truncated = len(cut) < len(text)
	p.Text = cut
	p.Hash = hashText(cut)
	return p
}

func hashText(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Fetcher resolves job posting URLs with fixed options.
type Fetcher struct {
	Options Options
}

// FetchJob returns the cleaned description text at url.
func (f *Fetcher) FetchJob(ctx context.Context, url string) (string, error) {
	posting, err := FetchJobDescription(ctx, url, f.Options)
	if err != nil {
		return "", err
	}
	slog.Info("job posting fetched", "url", url, "platform", posting.Platform, "bytes", len(posting.Text), "browser", posting.Browser)
	return posting.Text, nil
}
