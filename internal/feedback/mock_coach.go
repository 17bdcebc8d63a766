package feedback

import (
	"context"
	"fmt"

	"github.com/jonathan/interview-coach/internal/types"
)

// MockCoach returns canned, deterministic feedback without any network calls.
type MockCoach struct{}

// AnalyzeResponse derives canned feedback from the delivery metrics.
func (MockCoach) AnalyzeResponse(_ context.Context, req AnalyzeRequest) (types.Feedback, error) {
	delivery := 4
	improvements := []string{"Add a measurable result to close the answer"}
	if req.Metrics.PaceAssessment != types.PaceGood {
		delivery = 3
		improvements = append(improvements, fmt.Sprintf("Aim for 120-160 WPM; this answer was %d WPM", req.Metrics.PaceWPM))
	}
	if req.Metrics.FillerCount > 0 {
		improvements = append(improvements, fmt.Sprintf("Cut filler words; %d were detected", req.Metrics.FillerCount))
	}

	return types.Feedback{
		Text:         "Mock feedback: the answer addresses the question with a clear structure.",
		Strengths:    []string{"Clear communication", "Good structure"},
		Improvements: improvements,
		Delivery:     fmt.Sprintf("Pace was %s at %d WPM.", req.Metrics.PaceAssessment, req.Metrics.PaceWPM),
		Scores:       &types.Scores{Content: 4, Delivery: delivery, Overall: 4},
	}, nil
}

// SummarizeSession returns a canned summary naming the number of answers.
func (MockCoach) SummarizeSession(_ context.Context, req SummaryRequest) (string, error) {
	return fmt.Sprintf("Mock overall feedback: %d of your answers were reviewed. Keep practicing specific, quantified examples.", len(req.Turns)), nil
}
