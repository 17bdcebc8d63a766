// Package resume turns free resume text into structured sections and a skill inventory.
package resume

import "fmt"

// ValidationError reports input that is empty or over the size limit.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid resume text: %s", e.Message)
}

// ExtractError wraps a failure to pull text out of an uploaded document.
type ExtractError struct {
	Message string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extract error: %s", e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}
