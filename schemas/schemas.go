// Package schemas embeds the JSON Schema documents for model outputs and session records.
package schemas

import "embed"

// Schema file names.
const (
	GeneratedQuestion = "generated_question.schema.json"
	AnswerFeedback    = "answer_feedback.schema.json"
	Session           = "session.schema.json"
)

//go:embed *.schema.json
var FS embed.FS
