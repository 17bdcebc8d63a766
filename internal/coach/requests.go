package coach

import (
	"github.com/jonathan/interview-coach/internal/types"
)

// Field limits enforced at the boundary.
const (
	MaxJobTitleChars       = 200
	MaxJobDescriptionChars = 4000
)

// StartSessionRequest opens a session. QuestionTypes defaults to every supported type.
type StartSessionRequest struct {
	JobTitle       string   `json:"job_title" validate:"required,max=200"`
	JobDescription string   `json:"job_description" validate:"max=4000"`
	JobURL         string   `json:"job_url,omitempty" validate:"omitempty,url,max=2048"`
	ResumeText     string   `json:"resume_text,omitempty" validate:"max=50000"`
	PracticeMode   string   `json:"practice_mode,omitempty" validate:"omitempty,oneof=question_by_question full_interview"`
	QuestionTypes  []string `json:"question_types,omitempty" validate:"omitempty,max=10,unique,dive,required"`
}

// StartSessionResponse is returned by StartSession.
type StartSessionResponse struct {
	SessionID      string              `json:"session_id"`
	Status         types.SessionStatus `json:"status"`
	TotalQuestions int                 `json:"total_questions"`
	Message        string              `json:"message"`
}

// SessionRequest names a session.
type SessionRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
}

// QuestionResponse carries the next question, or Completed when the list is exhausted.
type QuestionResponse struct {
	SessionID        string `json:"session_id"`
	Completed        bool   `json:"completed,omitempty"`
	Message          string `json:"message,omitempty"`
	Question         string `json:"question,omitempty"`
	QuestionType     string `json:"question_type,omitempty"`
	Competency       string `json:"competency,omitempty"`
	ExpectedDuration string `json:"expected_duration,omitempty"`
	Source           string `json:"source,omitempty"`
	QuestionNumber   int    `json:"question_number,omitempty"`
	TotalQuestions   int    `json:"total_questions"`
}

// SubmitResponseRequest answers the most recently fetched question, either as text or as
// base64 audio. Duration is the client-measured answer length in seconds in both cases.
type SubmitResponseRequest struct {
	SessionID    string  `json:"session_id" validate:"required,max=128"`
	ResponseText string  `json:"response_text,omitempty" validate:"required_without=AudioData"`
	Duration     float64 `json:"duration" validate:"gt=0"`
	AudioData    string  `json:"audio_data,omitempty"`
	AudioFormat  string  `json:"audio_format,omitempty" validate:"omitempty,oneof=webm mp3 wav ogg"`
	LanguageCode string  `json:"language_code,omitempty" validate:"omitempty,oneof=en-US en-GB es-US fr-FR de-DE"`
}

// SubmitResponseResult is the transcript, metrics and feedback of one recorded turn.
type SubmitResponseResult struct {
	SessionID      string              `json:"session_id"`
	QuestionNumber int                 `json:"question_number"`
	Transcript     string              `json:"transcript"`
	Metrics        types.SpeechMetrics `json:"metrics"`
	Feedback       types.Feedback      `json:"feedback"`
	AudioKey       string              `json:"audio_key,omitempty"`
	Processed      bool                `json:"processed"`
}

// EndSessionResponse carries the session summary. TotalQuestions counts answered turns.
type EndSessionResponse struct {
	SessionID       string              `json:"session_id"`
	Status          types.SessionStatus `json:"status"`
	OverallFeedback string              `json:"overall_feedback"`
	TotalQuestions  int                 `json:"total_questions"`
}

// GetSessionResponse wraps the full record. QuestionsRemaining counts questions not yet served.
type GetSessionResponse struct {
	Session            *types.Session `json:"session"`
	QuestionsRemaining int            `json:"questions_remaining"`
}

// AttachResumeRequest adds resume text to a session.
type AttachResumeRequest struct {
	SessionID  string `json:"session_id" validate:"required,max=128"`
	ResumeText string `json:"resume_text" validate:"required,max=50000"`
}

// AttachResumeResponse returns the parsed resume.
type AttachResumeResponse struct {
	SessionID  string             `json:"session_id"`
	ResumeData types.ParsedResume `json:"resume_data"`
}
