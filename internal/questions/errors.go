package questions

import "fmt"

// LoadError represents a failure reading or parsing a bank override file.
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("question bank load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("question bank load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
