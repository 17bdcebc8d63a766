// Package types provides type definitions for structured data used throughout the interview coach.
package types

import (
	"time"
)

// SessionStatus is the lifecycle state of a practice session.
type SessionStatus string

const (
	// StatusActive is the initial state; questions and responses are accepted.
	StatusActive SessionStatus = "active"
	// StatusCompleted is terminal; no further question or response mutation is accepted.
	StatusCompleted SessionStatus = "completed"
)

// Question type tags supported by the question bank.
const (
	QuestionTypeBehavioral  = "behavioral"
	QuestionTypeTellMeAbout = "tell_me_about"
	QuestionTypeWhyThisJob  = "why_this_job"
)

// Practice modes.
const (
	PracticeModeQuestionByQuestion = "question_by_question"
	PracticeModeFullInterview      = "full_interview"
)

// Question sources.
const (
	QuestionSourceStatic    = "static"
	QuestionSourceGenerated = "generated"
)

// DefaultQuestionTypes is the requested set when a caller names none.
func DefaultQuestionTypes() []string {
	return []string{QuestionTypeBehavioral, QuestionTypeTellMeAbout, QuestionTypeWhyThisJob}
}

// Question is one entry of a session's frozen question list.
type Question struct {
	Text             string `json:"question"`
	Type             string `json:"type"`
	Competency       string `json:"competency"`
	ExpectedDuration string `json:"expected_duration"`
	Source           string `json:"source"`
	// FellBack is set when generation was attempted but the static text was used instead.
	FellBack bool `json:"fell_back,omitempty"`
}

// Turn is one question-answer-feedback cycle. Turns are append-only.
type Turn struct {
	QuestionIndex int           `json:"question_index"`
	Question      string        `json:"question"`
	QuestionType  string        `json:"question_type"`
	Competency    string        `json:"competency,omitempty"`
	Transcript    string        `json:"response_text"`
	Metrics       SpeechMetrics `json:"metrics"`
	Feedback      Feedback      `json:"feedback"`
	AudioKey      string        `json:"audio_key,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Session is one end-to-end mock interview for a single candidate.
type Session struct {
	ID                   string        `json:"session_id"`
	JobTitle             string        `json:"job_title"`
	JobDescription       string        `json:"job_description"`
	JobURL               string        `json:"job_url,omitempty"`
	ResumeText           string        `json:"resume_text,omitempty"`
	ResumeData           *ParsedResume `json:"resume_data,omitempty"`
	PracticeMode         string        `json:"practice_mode"`
	QuestionTypes        []string      `json:"question_types"`
	Questions            []Question    `json:"question_list"`
	CurrentQuestionIndex int           `json:"current_question_index"`
	Status               SessionStatus `json:"status"`
	Turns                []Turn        `json:"responses"`
	OverallFeedback      string        `json:"overall_feedback,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
	CompletedAt          *time.Time    `json:"completed_at,omitempty"`
	ExpiresAt            *time.Time    `json:"expires_at,omitempty"`
}

// IsCompleted reports whether the session reached its terminal state.
func (s *Session) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// Remaining returns how many questions have not been served yet.
func (s *Session) Remaining() int {
	if s.CurrentQuestionIndex >= len(s.Questions) {
		return 0
	}
	return len(s.Questions) - s.CurrentQuestionIndex
}

// Clone returns a deep copy so stores never share slices with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.QuestionTypes = append([]string(nil), s.QuestionTypes...)
	c.Questions = append([]Question(nil), s.Questions...)
	c.Turns = make([]Turn, len(s.Turns))
	for i, t := range s.Turns {
		c.Turns[i] = t.clone()
	}
	if s.ResumeData != nil {
		rd := s.ResumeData.Clone()
		c.ResumeData = &rd
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

func (t Turn) clone() Turn {
	t.Metrics.FillerDetails = append([]FillerDetail(nil), t.Metrics.FillerDetails...)
	t.Feedback.Strengths = append([]string(nil), t.Feedback.Strengths...)
	t.Feedback.Improvements = append([]string(nil), t.Feedback.Improvements...)
	if t.Feedback.Scores != nil {
		sc := *t.Feedback.Scores
		t.Feedback.Scores = &sc
	}
	return t
}

// SessionPatch names the fields an update overwrites. Nil fields are left untouched.
// The JSON form carries only the set fields, keyed like Session, so backends can merge it
// into a stored record directly.
type SessionPatch struct {
	CurrentQuestionIndex *int           `json:"current_question_index,omitempty"`
	Status               *SessionStatus `json:"status,omitempty"`
	Turns                *[]Turn        `json:"responses,omitempty"`
	OverallFeedback      *string        `json:"overall_feedback,omitempty"`
	ResumeText           *string        `json:"resume_text,omitempty"`
	ResumeData           *ParsedResume  `json:"resume_data,omitempty"`
	UpdatedAt            *time.Time     `json:"updated_at,omitempty"`
	CompletedAt          *time.Time     `json:"completed_at,omitempty"`
}

// Apply overwrites the named fields of s.
func (p SessionPatch) Apply(s *Session) {
	if p.CurrentQuestionIndex != nil {
		s.CurrentQuestionIndex = *p.CurrentQuestionIndex
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Turns != nil {
		s.Turns = append([]Turn(nil), (*p.Turns)...)
	}
	if p.OverallFeedback != nil {
		s.OverallFeedback = *p.OverallFeedback
	}
	if p.ResumeText != nil {
		s.ResumeText = *p.ResumeText
	}
	if p.ResumeData != nil {
		rd := p.ResumeData.Clone()
		s.ResumeData = &rd
	}
	if p.UpdatedAt != nil {
		s.UpdatedAt = *p.UpdatedAt
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		s.CompletedAt = &t
	}
}

// IsEmpty reports whether the patch names no fields.
func (p SessionPatch) IsEmpty() bool {
	return p.CurrentQuestionIndex == nil && p.Status == nil && p.Turns == nil &&
		p.OverallFeedback == nil && p.ResumeText == nil && p.ResumeData == nil &&
		p.UpdatedAt == nil && p.CompletedAt == nil
}
