// Package llm - util.go cleans up model replies.
package llm

import "strings"

// CleanJSONBlock strips a markdown code fence from a reply. Models fence JSON even when
// asked not to. A short single-token first line inside a fence is a language tag.
func CleanJSONBlock(reply string) string {
	reply = strings.TrimSpace(reply)
	body, fenced := strings.CutPrefix(reply, "```")
	if !fenced {
		return reply
	}
	if tag, rest, ok := strings.Cut(body, "\n"); ok && isLanguageTag(tag) {
		body = rest
	}
	if i := strings.LastIndex(body, "```"); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}

func isLanguageTag(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) < 20 && !strings.ContainsAny(line, " {[")
}

// ExtractJSONObject returns the outermost {...} span of text after removing code fences,
// or "" when there is none. Useful when a model adds a sentence before or after the object.
func ExtractJSONObject(text string) string {
	text = CleanJSONBlock(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}

// Truncate shortens s to at most limit bytes without splitting a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
