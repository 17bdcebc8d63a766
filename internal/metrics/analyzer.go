// Package metrics computes speech-delivery metrics from a transcript and its duration.
package metrics

import (
	"math"
	"regexp"
	"strings"

	"github.com/jonathan/interview-coach/internal/types"
)

// MaxTranscriptBytes is the largest transcript Analyze accepts.
const MaxTranscriptBytes = 10 * 1024

// Pace thresholds in words per minute.
const (
	slowBelow = 120
	goodBelow = 160
	fastBelow = 200
)

// FillerWords is the fixed list of discourse markers counted by Analyze, in report order.
var FillerWords = []string{
	"um", "uh", "like", "you know", "basically", "actually", "literally",
	"sort of", "kind of", "i mean", "so", "well", "right",
}

var fillerPatterns = compileFillers(FillerWords)

type fillerPattern struct {
	word string
	re   *regexp.Regexp
}

func compileFillers(words []string) []fillerPattern {
	patterns := make([]fillerPattern, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, fillerPattern{
			word: w,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`),
		})
	}
	return patterns
}

// Analyze computes delivery metrics for transcript spoken over duration seconds.
// It returns a *ValidationError and no metrics when duration is not positive or the
// transcript exceeds MaxTranscriptBytes.
func Analyze(transcript string, duration float64) (*types.SpeechMetrics, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, &ValidationError{Field: "duration", Message: "must be a positive number of seconds"}
	}
	if len(transcript) > MaxTranscriptBytes {
		return nil, &ValidationError{Field: "transcript", Message: "exceeds 10 KB limit"}
	}

	words := strings.Fields(transcript)
	wordCount := len(words)
	pace := int(math.Round(float64(wordCount) / duration * 60))

	lower := strings.ToLower(transcript)
	details := make([]types.FillerDetail, 0)
	fillerCount := 0
	for _, p := range fillerPatterns {
		n := len(p.re.FindAllStringIndex(lower, -1))
		if n == 0 {
			continue
		}
		fillerCount += n
		details = append(details, types.FillerDetail{Word: p.word, Count: n})
	}

	var fillerRate, avgLen float64
	if wordCount > 0 {
		fillerRate = round2(float64(fillerCount) / float64(wordCount) * 100)
		letters := 0
		for _, w := range words {
			letters += len([]rune(w))
		}
		avgLen = round2(float64(letters) / float64(wordCount))
	}

	return &types.SpeechMetrics{
		WordCount:      wordCount,
		PaceWPM:        pace,
		PaceAssessment: AssessPace(pace),
		FillerCount:    fillerCount,
		FillerRate:     fillerRate,
		FillerDetails:  details,
		Duration:       duration,
		AvgWordLength:  avgLen,
	}, nil
}

// AssessPace maps words-per-minute to a pace category.
func AssessPace(wpm int) string {
	switch {
	case wpm < slowBelow:
		return types.PaceSlow
	case wpm < goodBelow:
		return types.PaceGood
	case wpm < fastBelow:
		return types.PaceFast
	default:
		return types.PaceVeryFast
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
