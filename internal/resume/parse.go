package resume

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/interview-coach/internal/types"
)

// MaxTextBytes is the largest resume text accepted by Parse and ExtractSkills.
const MaxTextBytes = 50000

// maxHeaderLen is the exclusive upper bound, in characters, on a line treated as a section header.
const maxHeaderLen = 50

type section int

const (
	sectionNone section = iota
	sectionEducation
	sectionExperience
	sectionSkills
)

// Header keywords, checked in this order.
var (
	educationKeywords  = []string{"education", "academic", "degree", "university", "college", "school"}
	experienceKeywords = []string{"experience", "employment", "work history", "professional", "career"}
	skillsKeywords     = []string{"skills", "technical skills", "competencies", "expertise", "technologies"}
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// CheckText rejects empty and oversized resume text.
func CheckText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Message: "resume text is required"}
	}
	if len(text) > MaxTextBytes {
		return &ValidationError{Message: "resume text too long (max 50KB)"}
	}
	return nil
}

// Parse splits text into contact, education, experience and skills buckets.
//
// Lines are scanned once. A short line containing a header keyword switches the active
// section; any other line is appended to the active section. The first email and phone
// anywhere in the text populate the contact bucket. Parsing is best-effort: past the size
// check, any failure yields the four empty buckets.
func Parse(text string) (result types.ParsedResume, err error) {
	if err := CheckText(text); err != nil {
		return types.EmptyParsedResume(), err
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("resume parse failed, returning empty sections", "panic", r)
			result = types.EmptyParsedResume()
			err = nil
		}
	}()

	return parseLines(text), nil
}

func parseLines(text string) types.ParsedResume {
	result := types.EmptyParsedResume()
	current := sectionNone

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if s := classifyHeader(trimmed); s != sectionNone {
			current = s
			continue
		}

		switch current {
		case sectionEducation:
			result.Education = append(result.Education, trimmed)
		case sectionExperience:
			result.Experience = append(result.Experience, trimmed)
		case sectionSkills:
			result.Skills = append(result.Skills, trimmed)
		}
	}

	result.Contact.Email = emailPattern.FindString(text)
	result.Contact.Phone = strings.TrimSpace(phonePattern.FindString(text))
	return result
}

func classifyHeader(line string) section {
	if utf8.RuneCountInString(line) >= maxHeaderLen {
		return sectionNone
	}
	lower := strings.ToLower(line)
	switch {
	case containsAny(lower, educationKeywords):
		return sectionEducation
	case containsAny(lower, experienceKeywords):
		return sectionExperience
	case containsAny(lower, skillsKeywords):
		return sectionSkills
	}
	return sectionNone
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
