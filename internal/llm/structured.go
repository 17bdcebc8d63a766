// Package llm - structured.go builds prompts that request a fixed JSON shape.
package llm

import (
	"fmt"
	"strings"
)

// OutputSchema describes the JSON object a prompt asks the model to return.
type OutputSchema struct {
	Name   string
	Fields []SchemaField
}

// SchemaField defines a single field in the output object.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "int 1-5"
	Description string // Description for the LLM
	Required    bool
}

// BuildStructuredPrompt appends the output contract for schema to the task instructions.
func BuildStructuredPrompt(instructions string, schema OutputSchema) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(instructions))
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")
	sb.WriteString("Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")

	return sb.String()
}

// QuestionOutput is the contract for one generated interview question.
func QuestionOutput() OutputSchema {
	return OutputSchema{
		Name: "GeneratedQuestion",
		Fields: []SchemaField{
			{Name: "question", Type: "string", Description: "a single interview question ending with a question mark", Required: true},
		},
	}
}

// FeedbackOutput is the contract for coaching feedback on one answer.
func FeedbackOutput() OutputSchema {
	return OutputSchema{
		Name: "AnswerFeedback",
		Fields: []SchemaField{
			{Name: "overall", Type: "string", Description: "two or three sentence assessment", Required: true},
			{Name: "strengths", Type: "[]string", Description: "what worked, at most 3"},
			{Name: "improvements", Type: "[]string", Description: "specific changes, at most 3"},
			{Name: "delivery", Type: "string", Description: "comments on pace and filler words"},
			{Name: "revised_example", Type: "string", Description: "a short stronger version of the answer"},
			{Name: "scores", Type: `{"content": int 1-5, "delivery": int 1-5, "overall": int 1-5}`},
		},
	}
}
