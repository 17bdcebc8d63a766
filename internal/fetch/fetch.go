// Package fetch retrieves job posting pages and reduces them to their main text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds one page load, static or rendered.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the coach to job boards.
	DefaultUserAgent = "Mozilla/5.0 (compatible; InterviewCoach/1.0)"
	// MaxBodyBytes caps how much of a page is read.
	MaxBodyBytes = 5 << 20
)

// Page is a downloaded posting page.
type Page struct {
	URL         string
	FinalURL    string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error reports a page that could not be loaded or used.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Options configures page downloads. A nil *Options uses the defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
	// Retries is how many extra attempts follow a 429 or 5xx response.
	Retries int
	Backoff time.Duration
}

func (o *Options) client() *http.Client {
	if o != nil && o.Client != nil {
		return o.Client
	}
	timeout := DefaultTimeout
	if o != nil && o.Timeout > 0 {
		timeout = o.Timeout
	}
	return &http.Client{Timeout: timeout}
}

func (o *Options) userAgent() string {
	if o != nil && o.UserAgent != "" {
		return o.UserAgent
	}
	return DefaultUserAgent
}

func (o *Options) attempts() (int, time.Duration) {
	if o == nil || o.Retries <= 0 {
		return 1, 0
	}
	backoff := o.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return o.Retries + 1, backoff
}

// ValidateURL accepts only absolute http and https URLs.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	return nil
}

// URL downloads a posting page. Responses that are not HTML or plain text are rejected.
// A non-200 response returns both the page and an error.
func URL(ctx context.Context, rawURL string, opts *Options) (*Page, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	client := opts.client()
	attempts, backoff := opts.attempts()

	var (
		page *Page
		err  error
	)
	for i := 0; i < attempts; i++ {
		if i > 0 {
			slog.Debug("retrying page download", "url", rawURL, "attempt", i+1, "status", page.StatusCode)
			select {
			case <-ctx.Done():
				return page, &Error{URL: rawURL, Message: "HTTP request cancelled", Cause: ctx.Err()}
			case <-time.After(backoff * time.Duration(i)):
			}
		}
		page, err = download(ctx, client, rawURL, opts.userAgent())
		if err != nil || !retryable(page.StatusCode) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	if page.StatusCode != http.StatusOK {
		return page, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", page.StatusCode)}
	}
	if !textual(page.ContentType) {
		return page, &Error{URL: rawURL, Message: fmt.Sprintf("unsupported content type %q", page.ContentType)}
	}
	return page, nil
}

func download(ctx context.Context, client *http.Client, rawURL, userAgent string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	return &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// textual reports whether a Content-Type can hold a readable posting. A missing header
// is accepted since many boards omit it.
func textual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml" || mediaType == "text/plain"
}

// globalNoise is stripped from every page before extraction.
const globalNoise = "nav, footer, header, script, style, noscript, iframe, svg, .ad, .ads, .advertisement, .sidebar, .cookie-banner, .popup"

// blockElements get a trailing newline so adjacent blocks do not run together.
const blockElements = "p, li, h1, h2, h3, h4, h5, h6, br, div, tr, section"

// ExtractMainText returns the text of the first element matching one of contentSelectors
// (in order), or the whole body when none match, after removing noise.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(globalNoise).Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	root := firstMatch(doc, contentSelectors)
	root.Find(blockElements).AppendHtml("\n")
	return cleanWhitespace(root.Text()), nil
}

func firstMatch(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel.First()
		}
	}
	return doc.Find("body")
}

// JobPostingSelectors are the description containers of generic job pages, most specific first.
func JobPostingSelectors() []string {
	return []string{
		".job-description", "#job-description", "[data-testid='job-description']",
		".job-details", ".job-content", "#job-content", ".posting-content",
		"main", "article", ".content", "#content",
	}
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
