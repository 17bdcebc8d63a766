package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"inner spaces collapse", "Build    reliable\t\tAPIs", "Build reliable APIs"},
		{"headings kept", "   ## Requirements  ", "## Requirements"},
		{"bullets keep indent", "- Go\n    * SQL", "- Go\n    * SQL"},
		{"blank runs collapse", "one\n\n\n\n\ntwo", "one\n\ntwo"},
		{"outer whitespace trimmed", "\n\n  text  \n\n", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "a", Truncate("aé", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestFetchJobDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><nav>Menu</nav>
			<div class="job-description"><h2>Site Reliability Engineer</h2><p>Keep   services up.</p></div>
			</body></html>`))
	}))
	defer server.Close()

	posting, err := FetchJobDescription(context.Background(), server.URL, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Site Reliability Engineer\nKeep services up.", posting.Text)
	assert.Equal(t, fetch.PlatformUnknown, posting.Platform)
	assert.Len(t, posting.Hash, 64)
	assert.False(t, posting.Truncated)
}

func TestFetchJobDescription_TruncatesLongPostings(t *testing.T) {
	body := "<html><body><main><p>" + strings.Repeat("word ", 2000) + "</p></main></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	posting, err := FetchJobDescription(context.Background(), server.URL, Options{})
	require.NoError(t, err)
	assert.True(t, posting.Truncated)
	assert.LessOrEqual(t, len(posting.Text), MaxDescriptionBytes)
}

func TestFetchJobDescription_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><script>render()</script></body></html>`))
	}))
	defer server.Close()

	_, err := FetchJobDescription(context.Background(), server.URL, Options{})
	var emptyErr *EmptyPostingError
	require.ErrorAs(t, err, &emptyErr)
}

func TestFetchJobDescription_UsesCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`<html><body><main><p>Data engineer role</p></main></body></html>`))
	}))
	defer server.Close()

	cache := fetch.NewTextCache(time.Hour)
	for i := 0; i < 2; i++ {
		posting, err := FetchJobDescription(context.Background(), server.URL, Options{Cache: cache})
		require.NoError(t, err)
		assert.Equal(t, "Data engineer role", posting.Text)
	}
	assert.Equal(t, 1, hits)
}

func TestFetchJobDescription_HTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := FetchJobDescription(context.Background(), server.URL, Options{})
	var fetchErr *fetch.Error
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetchJobDescription_PrefersStructuredData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><script type="application/ld+json">
			{"@type":"JobPosting","title":"ML Engineer","description":"&lt;p&gt;Train and ship ranking models.&lt;/p&gt;"}
			</script></head><body><main>Loading</main></body></html>`))
	}))
	defer server.Close()

	posting, err := FetchJobDescription(context.Background(), server.URL, Options{})
	require.NoError(t, err)
	assert.True(t, posting.Structured)
	assert.Equal(t, "Train and ship ranking models.", posting.Text)
}
