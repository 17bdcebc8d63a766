// Package ingestion turns job postings into the cleaned description text stored on a session.
package ingestion

import (
	"regexp"
	"strings"

	"github.com/jonathan/interview-coach/internal/llm"
)

var (
	innerSpace  = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	bulletMarks = []string{"- ", "* ", "• ", "· "}
)

// CleanText normalizes line endings and spacing while keeping headings, bullets, and
// paragraph breaks. At most one blank line separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}
	out := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}
	return strings.Repeat(" ", indent) + innerSpace.ReplaceAllString(trimmed, " ")
}

func isBulletLine(trimmed string) bool {
	for _, m := range bulletMarks {
		if strings.HasPrefix(trimmed, m) {
			return true
		}
	}
	return false
}

// Truncate shortens s to at most limit bytes without splitting a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return strings.TrimSpace(llm.Truncate(s, limit))
}
