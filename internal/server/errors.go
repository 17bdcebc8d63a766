package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/interview-coach/internal/coach"
	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/tts"
)

// HTTPStatus returns the status code for an error from a handler's collaborators.
func HTTPStatus(err error) int {
	var (
		fetchErr   *fetch.Error
		emptyErr   *ingestion.EmptyPostingError
		extractErr *resume.ExtractError
		speechErr  *tts.ValidationError
		synthErr   *tts.SynthesisError
	)
	switch {
	case errors.As(err, &speechErr):
		return http.StatusBadRequest
	case errors.As(err, &synthErr):
		return http.StatusBadGateway
	case errors.As(err, &emptyErr), errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		if fetchErr.Message == "invalid URL" {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	default:
		return coach.HTTPStatus(err)
	}
}
