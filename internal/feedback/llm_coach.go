package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/questions"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
	embedded "github.com/jonathan/interview-coach/schemas"
)

// LLMCoach implements the coaching collaborator on top of an llm.Client.
type LLMCoach struct {
	client llm.Client
}

// NewLLMCoach creates a coach backed by client.
func NewLLMCoach(client llm.Client) *LLMCoach {
	return &LLMCoach{client: client}
}

var _ questions.Generator = (*LLMCoach)(nil)

type generatedQuestion struct {
	Question string `json:"question"`
}

// GenerateQuestion asks the model for one question tailored to the job. Output that is
// not a schema-valid {"question": ...} object is an error so callers can fall back.
func (c *LLMCoach) GenerateQuestion(ctx context.Context, req questions.GenerateRequest) (string, error) {
	task, err := prompts.Render(prompts.Coaching, "generate-question", map[string]string{
		"JobTitle":       req.JobTitle,
		"JobDescription": llm.Truncate(orNone(req.JobDescription), 500),
		"QuestionType":   req.QuestionType,
		"Competency":     req.Competency,
		"StaticQuestion": req.StaticQuestion,
	})
	if err != nil {
		return "", err
	}

	raw, err := c.client.GenerateJSON(ctx, llm.BuildStructuredPrompt(task, llm.QuestionOutput()), llm.TaskQuestion)
	if err != nil {
		return "", err
	}

	doc := llm.ExtractJSONObject(raw)
	if doc == "" {
		return "", &ParseError{What: "generated question", Raw: raw}
	}
	if err := schemas.Validate(embedded.GeneratedQuestion, []byte(doc)); err != nil {
		return "", &ParseError{What: "generated question", Raw: raw, Cause: err}
	}

	var out generatedQuestion
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return "", &ParseError{What: "generated question", Raw: raw, Cause: err}
	}
	return strings.TrimSpace(out.Question), nil
}

type structuredFeedback struct {
	Overall        string        `json:"overall"`
	Strengths      []string      `json:"strengths"`
	Improvements   []string      `json:"improvements"`
	Delivery       string        `json:"delivery"`
	RevisedExample string        `json:"revised_example"`
	Scores         *types.Scores `json:"scores"`
}

// AnalyzeResponse produces feedback for one answer. A failed model call is returned as an
// error. A reply that is not valid structured feedback is kept as plain text with
// FellBack set.
func (c *LLMCoach) AnalyzeResponse(ctx context.Context, req AnalyzeRequest) (types.Feedback, error) {
	prompt, err := buildAnalysisPrompt(req)
	if err != nil {
		return types.Feedback{}, err
	}

	raw, err := c.client.GenerateJSON(ctx, prompt, llm.TaskCoach)
	if err != nil {
		return types.Feedback{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return types.Feedback{}, errors.New("empty feedback from model")
	}

	parsed, perr := parseFeedback(raw)
	if perr != nil {
		slog.Warn("feedback reply was not structured, keeping raw text", "error", perr)
		return types.Feedback{Text: strings.TrimSpace(raw), FellBack: true}, nil
	}
	return parsed, nil
}

func parseFeedback(raw string) (types.Feedback, error) {
	doc := llm.ExtractJSONObject(raw)
	if doc == "" {
		return types.Feedback{}, &ParseError{What: "feedback", Raw: raw}
	}
	if err := schemas.Validate(embedded.AnswerFeedback, []byte(doc)); err != nil {
		return types.Feedback{}, &ParseError{What: "feedback", Raw: raw, Cause: err}
	}

	var sf structuredFeedback
	if err := json.Unmarshal([]byte(doc), &sf); err != nil {
		return types.Feedback{}, &ParseError{What: "feedback", Raw: raw, Cause: err}
	}
	return types.Feedback{
		Text:           sf.Overall,
		Strengths:      sf.Strengths,
		Improvements:   sf.Improvements,
		Delivery:       sf.Delivery,
		RevisedExample: sf.RevisedExample,
		Scores:         sf.Scores,
	}, nil
}

func buildAnalysisPrompt(req AnalyzeRequest) (string, error) {
	m := req.Metrics
	task, err := prompts.Render(prompts.Coaching, "analyze-response", map[string]string{
		"Framework":      prompts.MustGet(prompts.Coaching, "framework-context"),
		"Guide":          prompts.Guide(req.QuestionType),
		"PaceWPM":        strconv.Itoa(m.PaceWPM),
		"PaceAssessment": orNone(m.PaceAssessment),
		"FillerCount":    strconv.Itoa(m.FillerCount),
		"FillerRate":     strconv.FormatFloat(m.FillerRate, 'f', -1, 64),
		"WordCount":      strconv.Itoa(m.WordCount),
		"Duration":       strconv.FormatFloat(m.Duration, 'f', -1, 64),
		"JobDescription": orNone(llm.Truncate(req.JobDescription, promptContextChars)),
		"Resume":         orNone(llm.Truncate(req.ResumeText, promptContextChars)),
		"Question":       llm.Truncate(req.Question, MaxQuestionChars),
		"Response":       llm.Truncate(req.Response, MaxResponseChars),
	})
	if err != nil {
		return "", err
	}
	return llm.BuildStructuredPrompt(task, llm.FeedbackOutput()), nil
}

// SummarizeSession produces the end-of-session summary over every turn.
func (c *LLMCoach) SummarizeSession(ctx context.Context, req SummaryRequest) (string, error) {
	prompt, err := prompts.Render(prompts.Coaching, "session-summary", map[string]string{
		"JobTitle": req.JobTitle,
		"Count":    strconv.Itoa(len(req.Turns)),
		"Turns":    formatTurns(req.Turns),
	})
	if err != nil {
		return "", err
	}

	summary, err := c.client.GenerateContent(ctx, prompt, llm.TaskCoach)
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", errors.New("empty summary from model")
	}
	return summary, nil
}

func formatTurns(turns []types.Turn) string {
	if len(turns) == 0 {
		return "(no answers recorded)"
	}
	var sb strings.Builder
	for i, t := range turns {
		fmt.Fprintf(&sb, "Question %d: %s\n", i+1, t.Question)
		excerpt := llm.Truncate(t.Transcript, summaryExcerptChars)
		if len(excerpt) < len(t.Transcript) {
			excerpt += "..."
		}
		fmt.Fprintf(&sb, "Response: %s\n", excerpt)
		fmt.Fprintf(&sb, "Metrics: %d WPM (%s), %d filler words (%.2f%%)\n",
			t.Metrics.PaceWPM, t.Metrics.PaceAssessment, t.Metrics.FillerCount, t.Metrics.FillerRate)
		if t.Feedback.Scores != nil {
			fmt.Fprintf(&sb, "Scores: content %d, delivery %d, overall %d\n",
				t.Feedback.Scores.Content, t.Feedback.Scores.Delivery, t.Feedback.Scores.Overall)
		}
		sb.WriteString("---\n")
	}
	return sb.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not provided)"
	}
	return s
}
