package feedback

import "fmt"

// ParseError represents model output that did not match the expected structure.
type ParseError struct {
	What  string
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse %s: %v", e.What, e.Cause)
	}
	return fmt.Sprintf("failed to parse %s: no JSON object in reply", e.What)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
