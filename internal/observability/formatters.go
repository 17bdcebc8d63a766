// Package observability provides boxed, human-readable output for CLI commands.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/interview-coach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, boxWidth-4) {
			fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, wrapped)
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap breaks line on spaces so that no piece exceeds width runes. Words longer
// than width are cut.
func wrap(line string, width int) []string {
	if len([]rune(line)) <= width {
		return []string{line}
	}
	var out []string
	var cur strings.Builder
	for _, word := range strings.Fields(line) {
		for len([]rune(word)) > width {
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			r := []rune(word)
			out = append(out, string(r[:width]))
			word = string(r[width:])
		}
		if cur.Len() > 0 && len([]rune(cur.String()))+1+len([]rune(word)) > width {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintMetrics outputs pace and filler-word metrics.
func (p *Printer) PrintMetrics(m *types.SpeechMetrics) {
	if m == nil {
		return
	}
	p.printBox("SPEECH METRICS", metricsBody(m))
}

func metricsBody(m *types.SpeechMetrics) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Words:    %d in %.1fs\n", m.WordCount, m.Duration))
	sb.WriteString(fmt.Sprintf("Pace:     %d wpm (%s)\n", m.PaceWPM, m.PaceAssessment))
	sb.WriteString(fmt.Sprintf("Fillers:  %d (%.1f%%)\n", m.FillerCount, m.FillerRate))
	sb.WriteString(fmt.Sprintf("Avg word: %.1f letters", m.AvgWordLength))
	for _, d := range m.FillerDetails {
		sb.WriteString(fmt.Sprintf("\n  %q x%d", d.Word, d.Count))
	}
	return sb.String()
}

// PrintParsedResume outputs the contact details and the three section buckets.
func (p *Printer) PrintParsedResume(r *types.ParsedResume) {
	if r == nil {
		return
	}

	var sb strings.Builder
	if r.Contact.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:  %s\n", r.Contact.Email))
	}
	if r.Contact.Phone != "" {
		sb.WriteString(fmt.Sprintf("Phone:  %s\n", r.Contact.Phone))
	}
	sb.WriteString(fmt.Sprintf("Education: %d  Experience: %d  Skills: %d\n\n",
		len(r.Education), len(r.Experience), len(r.Skills)))
	writeList(&sb, "Experience", r.Experience)
	writeList(&sb, "Education", r.Education)
	writeList(&sb, "Skills", r.Skills)

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs matched skills grouped by category in name order.
func (p *Printer) PrintSkills(s *types.SkillsResult) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total skills found: %d\n", s.TotalSkillsFound))

	categories := make([]string, 0, len(s.SkillsByCategory))
	for c := range s.SkillsByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("\n%s:\n  %s", c, strings.Join(s.SkillsByCategory[c], ", ")))
	}

	p.printBox("EXTRACTED SKILLS", sb.String())
}

// PrintQuestion outputs one served question.
func (p *Printer) PrintQuestion(number, total int, q types.Question) {
	var sb strings.Builder
	sb.WriteString(q.Text + "\n\n")
	sb.WriteString(fmt.Sprintf("Type: %s   Competency: %s\n", q.Type, q.Competency))
	sb.WriteString(fmt.Sprintf("Aim for %s", q.ExpectedDuration))
	p.printBox(fmt.Sprintf("QUESTION %d OF %d", number, total), sb.String())
}

// PrintTurn outputs the metrics and feedback for one answer.
func (p *Printer) PrintTurn(t *types.Turn) {
	if t == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(metricsBody(&t.Metrics) + "\n\n")
	sb.WriteString(feedbackBody(&t.Feedback))
	p.printBox(fmt.Sprintf("FEEDBACK FOR QUESTION %d", t.QuestionIndex), sb.String())
}

func feedbackBody(f *types.Feedback) string {
	var sb strings.Builder
	if f.Scores != nil {
		sb.WriteString(fmt.Sprintf("Scores: content %d, delivery %d, overall %d\n\n",
			f.Scores.Content, f.Scores.Delivery, f.Scores.Overall))
	}
	sb.WriteString(f.Text + "\n")
	writeList(&sb, "\nStrengths", f.Strengths)
	writeList(&sb, "\nImprovements", f.Improvements)
	if f.RevisedExample != "" {
		sb.WriteString("\nStronger answer:\n" + f.RevisedExample + "\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// PrintSession outputs a session's status, its answered questions and the overall summary.
func (p *Printer) PrintSession(s *types.Session) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Session:  %s\n", s.ID))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", s.JobTitle))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", s.Status))
	sb.WriteString(fmt.Sprintf("Progress: %d served, %d answered of %d\n",
		s.CurrentQuestionIndex, len(s.Turns), len(s.Questions)))

	if len(s.Turns) > 0 {
		sb.WriteString("\n")
		for _, t := range s.Turns {
			sb.WriteString(fmt.Sprintf("Q%d  %d wpm (%s), %d fillers\n",
				t.QuestionIndex, t.Metrics.PaceWPM, t.Metrics.PaceAssessment, t.Metrics.FillerCount))
		}
	}
	if s.OverallFeedback != "" {
		sb.WriteString("\nOverall:\n" + s.OverallFeedback + "\n")
	}

	p.printBox("INTERVIEW SESSION", strings.TrimSuffix(sb.String(), "\n"))
}
