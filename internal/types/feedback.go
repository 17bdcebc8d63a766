package types

// Scores are 1-5 ratings attached to per-answer feedback.
type Scores struct {
	Content  int `json:"content"`
	Delivery int `json:"delivery"`
	Overall  int `json:"overall"`
}

// Feedback is the coaching output for one answer.
type Feedback struct {
	Text           string   `json:"text"`
	Strengths      []string `json:"strengths,omitempty"`
	Improvements   []string `json:"improvements,omitempty"`
	Delivery       string   `json:"delivery,omitempty"`
	RevisedExample string   `json:"revised_example,omitempty"`
	Scores         *Scores  `json:"scores,omitempty"`
	// FellBack is set when the structured reply could not be parsed and Text holds the raw reply.
	FellBack bool `json:"fell_back,omitempty"`
}
