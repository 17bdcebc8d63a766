// Package feedback produces coaching feedback, tailored questions and session summaries.
package feedback

import (
	"github.com/jonathan/interview-coach/internal/types"
)

// Input limits applied before prompting, in bytes.
const (
	MaxQuestionChars = 1000
	MaxResponseChars = 5000

	// promptContextChars bounds job description and resume text inside the analysis prompt.
	promptContextChars = 1000
	// summaryExcerptChars bounds each answer quoted in the session summary prompt.
	summaryExcerptChars = 200
)

// AnalyzeRequest carries one answer and its session context.
type AnalyzeRequest struct {
	Question       string
	QuestionType   string
	Response       string
	Metrics        types.SpeechMetrics
	JobDescription string
	ResumeText     string
}

// SummaryRequest carries the full turn history of a session.
type SummaryRequest struct {
	JobTitle string
	Turns    []types.Turn
}
