package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/interview-coach/internal/coach"
)

// maxEnvelopeBytes covers 10MB of audio after base64 expansion plus the other fields.
const maxEnvelopeBytes = 16 << 20

// handleInterview runs one action envelope and relays its status and body.
func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEnvelopeBytes))
	if err != nil {
		errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	resp := s.coach.Dispatch(r.Context(), body)
	jsonResponse(w, resp.StatusCode, resp.Body)
}

// decodeBody reads a JSON request body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
	return false
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req coach.StartSessionRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}
	resp, err := s.coach.StartSession(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.coach.GetSession(r.Context(), coach.SessionRequest{SessionID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

// handleNextQuestion serves and consumes the next question.
func (s *Server) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	resp, err := s.coach.GetNextQuestion(r.Context(), coach.SessionRequest{SessionID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req coach.SubmitResponseRequest
	if !decodeBody(w, r, maxEnvelopeBytes, &req) {
		return
	}
	req.SessionID = r.PathValue("id")
	resp, err := s.coach.SubmitResponse(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.coach.EndSession(r.Context(), coach.SessionRequest{SessionID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleAttachResume(w http.ResponseWriter, r *http.Request) {
	var req coach.AttachResumeRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}
	req.SessionID = r.PathValue("id")
	resp, err := s.coach.AttachResume(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}
