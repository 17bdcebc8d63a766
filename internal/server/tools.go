package server

import (
	"encoding/base64"
	"io"
	"net/http"

	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/metrics"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/tts"
	"github.com/jonathan/interview-coach/internal/types"
)

// AnalyzeSpeechRequest is the body of POST /speech/analyze.
type AnalyzeSpeechRequest struct {
	Transcript string  `json:"transcript"`
	Duration   float64 `json:"duration"`
}

// TextRequest is the body of the resume tools.
type TextRequest struct {
	Text string `json:"text"`
}

// FetchJobRequest is the body of POST /jobs/fetch.
type FetchJobRequest struct {
	URL        string `json:"url"`
	UseBrowser bool   `json:"use_browser,omitempty"`
}

// SynthesizeSpeechResponse is returned by POST /speech/synthesize.
type SynthesizeSpeechResponse struct {
	Audio    string `json:"audio"`
	Format   string `json:"format"`
	MIMEType string `json:"mime_type"`
}

// UploadResumeResponse is returned by POST /resume/upload.
type UploadResumeResponse struct {
	Text       string             `json:"text"`
	ResumeData types.ParsedResume `json:"resume_data"`
}

func (s *Server) handleAnalyzeSpeech(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeSpeechRequest
	if !decodeBody(w, r, 64<<10, &req) {
		return
	}
	m, err := metrics.Analyze(req.Transcript, req.Duration)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

func (s *Server) handleSynthesizeSpeech(w http.ResponseWriter, r *http.Request) {
	if s.speech == nil {
		errorResponse(w, http.StatusNotImplemented, "speech synthesis is not configured")
		return
	}
	var req tts.Request
	if !decodeBody(w, r, 64<<10, &req) {
		return
	}
	audio, err := s.speech.Synthesize(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, SynthesizeSpeechResponse{
		Audio:    base64.StdEncoding.EncodeToString(audio.Data),
		Format:   audio.Format,
		MIMEType: audio.MIMEType,
	})
}

func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}
	parsed, err := resume.Parse(req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, parsed)
}

// handleUploadResume accepts a multipart "file" holding a PDF or plain text resume.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, resume.MaxDocumentBytes+1<<20)
	file, _, err := r.FormFile("file")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, resume.MaxDocumentBytes+1))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	text, err := resume.ExtractText(data)
	if err != nil {
		writeError(w, err)
		return
	}
	parsed, err := resume.Parse(text)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, UploadResumeResponse{Text: text, ResumeData: parsed})
}

func (s *Server) handleExtractSkills(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}
	skills, err := resume.ExtractSkills(req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, skills)
}

func (s *Server) handleFetchJob(w http.ResponseWriter, r *http.Request) {
	var req FetchJobRequest
	if !decodeBody(w, r, 16<<10, &req) {
		return
	}
	if req.URL == "" {
		errorResponse(w, http.StatusBadRequest, "url is required")
		return
	}
	opts := s.jobOptions
	opts.UseBrowser = opts.UseBrowser || req.UseBrowser
	posting, err := ingestion.FetchJobDescription(r.Context(), req.URL, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, posting)
}
