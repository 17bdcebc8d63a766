package fetch

import (
	"encoding/json"
	stdhtml "html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StructuredPosting is the schema.org JobPosting data a page embeds as JSON-LD.
type StructuredPosting struct {
	Title       string
	Company     string
	Description string
}

type jsonLDPosting struct {
	Type               any    `json:"@type"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	HiringOrganization struct {
		Name string `json:"name"`
	} `json:"hiringOrganization"`
	Graph []json.RawMessage `json:"@graph"`
}

// ExtractStructuredPosting returns the first JobPosting found in the page's JSON-LD
// scripts, with its HTML description reduced to text. ok is false when there is none.
func ExtractStructuredPosting(html string) (posting StructuredPosting, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return StructuredPosting{}, false
	}

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		posting, ok = findPosting([]byte(s.Text()))
		return !ok
	})
	return posting, ok
}

func findPosting(raw []byte) (StructuredPosting, bool) {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return StructuredPosting{}, false
	}

	// A script holds one object, an array of objects, or an object with an @graph.
	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return StructuredPosting{}, false
		}
		for _, item := range items {
			if p, ok := findPosting(item); ok {
				return p, true
			}
		}
		return StructuredPosting{}, false
	}

	var node jsonLDPosting
	if err := json.Unmarshal(raw, &node); err != nil {
		return StructuredPosting{}, false
	}
	if isJobPosting(node.Type) && node.Description != "" {
		return StructuredPosting{
			Title:       strings.TrimSpace(node.Title),
			Company:     strings.TrimSpace(node.HiringOrganization.Name),
			Description: htmlToText(node.Description),
		}, true
	}
	for _, item := range node.Graph {
		if p, ok := findPosting(item); ok {
			return p, true
		}
	}
	return StructuredPosting{}, false
}

func isJobPosting(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, x := range v {
			if s, ok := x.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

// htmlToText converts an HTML fragment to text, keeping block boundaries as newlines.
// Descriptions are often entity-escaped HTML, so plain text passes through unchanged.
func htmlToText(fragment string) string {
	if strings.Contains(fragment, "&lt;") {
		fragment = stdhtml.UnescapeString(fragment)
	}
	text, err := ExtractMainText("<body>"+fragment+"</body>", nil)
	if err != nil {
		return cleanWhitespace(fragment)
	}
	return text
}
