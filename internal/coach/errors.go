package coach

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/interview-coach/internal/metrics"
	"github.com/jonathan/interview-coach/internal/resume"
)

// ValidationError reports malformed, missing or out-of-range input. Nothing is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NotFoundError indicates an unknown session id.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// SessionCompletedError rejects question and response calls against a completed session.
type SessionCompletedError struct {
	SessionID string
}

func (e *SessionCompletedError) Error() string {
	return fmt.Sprintf("session %s is completed", e.SessionID)
}

// NoOutstandingQuestionError rejects a response when no fetched question awaits an answer.
type NoOutstandingQuestionError struct {
	SessionID string
	Reason    string
}

func (e *NoOutstandingQuestionError) Error() string {
	return fmt.Sprintf("no question awaiting a response in session %s: %s", e.SessionID, e.Reason)
}

// DownstreamError wraps a failure of an external collaborator. There is no retry.
type DownstreamError struct {
	Service string
	Cause   error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Service, e.Cause)
}

func (e *DownstreamError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for an error returned by this package.
func HTTPStatus(err error) int {
	var (
		validation   *ValidationError
		notFound     *NotFoundError
		completed    *SessionCompletedError
		noQuestion   *NoOutstandingQuestionError
		downstream   *DownstreamError
		metricsInput *metrics.ValidationError
		resumeInput  *resume.ValidationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &metricsInput), errors.As(err, &resumeInput):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &completed), errors.As(err, &noQuestion):
		return http.StatusConflict
	case errors.As(err, &downstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
