package types

// Pace categories for words-per-minute.
const (
	PaceSlow     = "slow"
	PaceGood     = "good"
	PaceFast     = "fast"
	PaceVeryFast = "very fast"
)

// FillerDetail is the count for one filler word or phrase.
type FillerDetail struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SpeechMetrics are the delivery metrics computed from a transcript and its duration.
type SpeechMetrics struct {
	WordCount      int            `json:"word_count"`
	PaceWPM        int            `json:"pace_wpm"`
	PaceAssessment string         `json:"pace_assessment"`
	FillerCount    int            `json:"filler_count"`
	FillerRate     float64        `json:"filler_rate"`
	FillerDetails  []FillerDetail `json:"filler_details"`
	Duration       float64        `json:"duration"`
	AvgWordLength  float64        `json:"avg_word_length"`
}
