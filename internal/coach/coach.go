// Package coach is the session orchestrator. It owns the session lifecycle, serves the
// frozen question list one question at a time, records answered turns, and finalizes a
// session with an overall summary.
//
// Fetching a question consumes it: there is no peek, so a client that fetches a question
// and never answers it skips that question for good.
package coach

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/blob"
	"github.com/jonathan/interview-coach/internal/feedback"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/metrics"
	"github.com/jonathan/interview-coach/internal/questions"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/store"
	"github.com/jonathan/interview-coach/internal/transcribe"
	"github.com/jonathan/interview-coach/internal/types"
)

// DefaultSessionTTL is the advisory retention period recorded on new sessions.
const DefaultSessionTTL = 30 * 24 * time.Hour

// FeedbackService produces per-answer feedback and the end-of-session summary.
type FeedbackService interface {
	AnalyzeResponse(ctx context.Context, req feedback.AnalyzeRequest) (types.Feedback, error)
	SummarizeSession(ctx context.Context, req feedback.SummaryRequest) (string, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Run(ctx context.Context, req transcribe.Request) (*transcribe.Job, error)
}

// JobFetcher resolves a job posting URL to description text.
type JobFetcher interface {
	FetchJob(ctx context.Context, url string) (string, error)
}

// Deps are the collaborators of a Coach. Store, Questions and Feedback are required.
// Without Transcriber and Audio only text answers are accepted; without Jobs a job_url
// is recorded but not fetched.
type Deps struct {
	Store       store.Store
	Questions   *questions.Builder
	Feedback    FeedbackService
	Transcriber Transcriber
	Audio       blob.Store
	Jobs        JobFetcher
	SessionTTL  time.Duration
	Now         func() time.Time
	NewID       func() string
}

// Coach runs interview sessions.
type Coach struct {
	store       store.Store
	questions   *questions.Builder
	feedback    FeedbackService
	transcriber Transcriber
	audio       blob.Store
	jobs        JobFetcher
	ttl         time.Duration
	now         func() time.Time
	newID       func() string
}

// New creates a Coach.
func New(d Deps) (*Coach, error) {
	if d.Store == nil || d.Questions == nil || d.Feedback == nil {
		return nil, fmt.Errorf("coach: store, question builder and feedback service are required")
	}
	c := &Coach{
		store:       d.Store,
		questions:   d.Questions,
		feedback:    d.Feedback,
		transcriber: d.Transcriber,
		audio:       d.Audio,
		jobs:        d.Jobs,
		ttl:         d.SessionTTL,
		now:         d.Now,
		newID:       d.NewID,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultSessionTTL
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}
	if c.newID == nil {
		c.newID = func() string { return uuid.NewString() }
	}
	return c, nil
}

// QuestionTypes lists the supported question type tags.
func (c *Coach) QuestionTypes() []string {
	return c.questions.Bank.Types()
}

// defaultTypes is the default requested set narrowed to types the bank has entries for.
func (c *Coach) defaultTypes() []string {
	var out []string
	for _, qt := range types.DefaultQuestionTypes() {
		if c.questions.Bank.Supports(qt) {
			out = append(out, qt)
		}
	}
	if len(out) == 0 {
		return c.QuestionTypes()
	}
	return out
}

// StartSession validates the request, builds and freezes the question list, and stores a
// new active session with the pointer at zero.
func (c *Coach) StartSession(ctx context.Context, req StartSessionRequest) (*StartSessionResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	req.JobTitle = strings.TrimSpace(req.JobTitle)
	if req.JobTitle == "" {
		return nil, &ValidationError{Field: "job_title", Message: "is required"}
	}

	qtypes := req.QuestionTypes
	if len(qtypes) == 0 {
		qtypes = c.defaultTypes()
	}
	for _, qt := range qtypes {
		if !c.questions.Bank.Supports(qt) {
			return nil, &ValidationError{
				Field:   "question_types",
				Message: fmt.Sprintf("unsupported type %q, must be one of: %s", qt, strings.Join(c.QuestionTypes(), ", ")),
			}
		}
	}
	mode := req.PracticeMode
	if mode == "" {
		mode = types.PracticeModeQuestionByQuestion
	}

	description := strings.TrimSpace(req.JobDescription)
	if description == "" && req.JobURL != "" && c.jobs != nil {
		text, err := c.jobs.FetchJob(ctx, req.JobURL)
		if err != nil {
			return nil, &DownstreamError{Service: "job posting fetch", Cause: err}
		}
		description = llm.Truncate(text, MaxJobDescriptionChars)
	}

	var resumeData *types.ParsedResume
	if strings.TrimSpace(req.ResumeText) != "" {
		parsed, err := resume.Parse(req.ResumeText)
		if err != nil {
			return nil, err
		}
		resumeData = &parsed
	}

	list, err := c.questions.Build(ctx, req.JobTitle, description, qtypes)
	if err != nil {
		return nil, fmt.Errorf("failed to build question list: %w", err)
	}

	now := c.now()
	expires := now.Add(c.ttl)
	session := &types.Session{
		ID:             c.newID(),
		JobTitle:       req.JobTitle,
		JobDescription: description,
		JobURL:         req.JobURL,
		ResumeText:     req.ResumeText,
		ResumeData:     resumeData,
		PracticeMode:   mode,
		QuestionTypes:  append([]string(nil), qtypes...),
		Questions:      list,
		Status:         types.StatusActive,
		Turns:          []types.Turn{},
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      &expires,
	}
	if err := c.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	slog.Info("session started", "session_id", session.ID, "questions", len(list), "types", qtypes)
	return &StartSessionResponse{
		SessionID:      session.ID,
		Status:         session.Status,
		TotalQuestions: len(list),
		Message:        "Interview session started successfully",
	}, nil
}

// GetNextQuestion serves the question at the pointer and advances the pointer. Once the
// list is exhausted it returns a Completed response and changes nothing.
func (c *Coach) GetNextQuestion(ctx context.Context, req SessionRequest) (*QuestionResponse, error) {
	session, err := c.load(ctx, req)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, &SessionCompletedError{SessionID: session.ID}
	}

	total := len(session.Questions)
	idx := session.CurrentQuestionIndex
	if idx >= total {
		return &QuestionResponse{
			SessionID:      session.ID,
			Completed:      true,
			Message:        "All questions completed",
			TotalQuestions: total,
		}, nil
	}

	next := idx + 1
	now := c.now()
	if err := c.store.Update(ctx, session.ID, types.SessionPatch{CurrentQuestionIndex: &next, UpdatedAt: &now}); err != nil {
		return nil, c.updateErr(session.ID, err)
	}

	q := session.Questions[idx]
	return &QuestionResponse{
		SessionID:        session.ID,
		Question:         q.Text,
		QuestionType:     q.Type,
		Competency:       q.Competency,
		ExpectedDuration: q.ExpectedDuration,
		Source:           q.Source,
		QuestionNumber:   next,
		TotalQuestions:   total,
	}, nil
}

// SubmitResponse answers the most recently served question. Audio is stored and
// transcribed first; the transcript is measured and sent for feedback. Any failure leaves
// the session unchanged.
func (c *Coach) SubmitResponse(ctx context.Context, req SubmitResponseRequest) (*SubmitResponseResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	session, err := c.load(ctx, SessionRequest{SessionID: req.SessionID})
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, &SessionCompletedError{SessionID: session.ID}
	}
	if session.CurrentQuestionIndex == 0 {
		return nil, &NoOutstandingQuestionError{SessionID: session.ID, Reason: "no question has been served yet"}
	}
	qIdx := session.CurrentQuestionIndex - 1
	for _, t := range session.Turns {
		if t.QuestionIndex == qIdx {
			return nil, &NoOutstandingQuestionError{SessionID: session.ID, Reason: fmt.Sprintf("question %d is already answered", qIdx+1)}
		}
	}
	question := session.Questions[qIdx]

	transcript := req.ResponseText
	var audioKey string
	if req.AudioData != "" {
		transcript, audioKey, err = c.transcribeAudio(ctx, session.ID, qIdx, req)
		if err != nil {
			return nil, err
		}
	} else if strings.TrimSpace(transcript) == "" {
		return nil, &ValidationError{Field: "response_text", Message: "is required"}
	}

	m, err := metrics.Analyze(transcript, req.Duration)
	if err != nil {
		return nil, err
	}

	fb, err := c.feedback.AnalyzeResponse(ctx, feedback.AnalyzeRequest{
		Question:       question.Text,
		QuestionType:   question.Type,
		Response:       transcript,
		Metrics:        *m,
		JobDescription: session.JobDescription,
		ResumeText:     session.ResumeText,
	})
	if err != nil {
		return nil, &DownstreamError{Service: "feedback generation", Cause: err}
	}
	if fb.FellBack {
		slog.Warn("feedback reply was not structured, keeping raw text", "session_id", session.ID, "question", qIdx+1)
	}

	now := c.now()
	turn := types.Turn{
		QuestionIndex: qIdx,
		Question:      question.Text,
		QuestionType:  question.Type,
		Competency:    question.Competency,
		Transcript:    transcript,
		Metrics:       *m,
		Feedback:      fb,
		AudioKey:      audioKey,
		Timestamp:     now,
	}
	turns := append(append([]types.Turn(nil), session.Turns...), turn)
	if err := c.store.Update(ctx, session.ID, types.SessionPatch{Turns: &turns, UpdatedAt: &now}); err != nil {
		return nil, c.updateErr(session.ID, err)
	}

	slog.Info("response recorded", "session_id", session.ID, "question", qIdx+1, "pace_wpm", m.PaceWPM, "fillers", m.FillerCount)
	return &SubmitResponseResult{
		SessionID:      session.ID,
		QuestionNumber: qIdx + 1,
		Transcript:     transcript,
		Metrics:        *m,
		Feedback:       fb,
		AudioKey:       audioKey,
		Processed:      true,
	}, nil
}

func (c *Coach) transcribeAudio(ctx context.Context, sessionID string, qIdx int, req SubmitResponseRequest) (string, string, error) {
	if c.transcriber == nil || c.audio == nil {
		return "", "", &ValidationError{Field: "audio_data", Message: "audio responses are not enabled"}
	}
	audio, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		return "", "", &ValidationError{Field: "audio_data", Message: "must be base64 encoded"}
	}
	if len(audio) == 0 {
		return "", "", &ValidationError{Field: "audio_data", Message: "is empty"}
	}
	if len(audio) > transcribe.MaxAudioBytes {
		return "", "", &ValidationError{Field: "audio_data", Message: "audio too large (max 10MB)"}
	}
	format := req.AudioFormat
	if format == "" {
		format = "webm"
	}
	mime, ok := transcribe.MIMEType(format)
	if !ok {
		return "", "", &ValidationError{Field: "audio_format", Message: "unsupported audio format"}
	}
	lang := req.LanguageCode
	if lang == "" {
		lang = transcribe.DefaultLanguage
	}
	if !transcribe.SupportsLanguage(lang) {
		return "", "", &ValidationError{Field: "language_code", Message: "unsupported language"}
	}

	key := fmt.Sprintf("interviews/%s/questions/%d/audio_%d.%s", sessionID, qIdx+1, c.now().Unix(), format)
	if err := c.audio.Put(ctx, key, audio); err != nil {
		return "", "", &DownstreamError{Service: "audio storage", Cause: err}
	}

	job, err := c.transcriber.Run(ctx, transcribe.Request{Name: key, Audio: audio, MIMEType: mime, Language: lang})
	if err != nil {
		return "", "", &DownstreamError{Service: "transcription", Cause: err}
	}
	text := strings.TrimSpace(job.Transcript)
	if text == "" {
		return "", "", &DownstreamError{Service: "transcription", Cause: fmt.Errorf("job %s returned an empty transcript", job.ID)}
	}
	return text, key, nil
}

// EndSession summarizes every recorded turn and completes the session. Calling it again
// regenerates the summary.
func (c *Coach) EndSession(ctx context.Context, req SessionRequest) (*EndSessionResponse, error) {
	session, err := c.load(ctx, req)
	if err != nil {
		return nil, err
	}

	summary, err := c.feedback.SummarizeSession(ctx, feedback.SummaryRequest{JobTitle: session.JobTitle, Turns: session.Turns})
	if err != nil {
		return nil, &DownstreamError{Service: "session summary", Cause: err}
	}

	now := c.now()
	status := types.StatusCompleted
	patch := types.SessionPatch{Status: &status, OverallFeedback: &summary, CompletedAt: &now, UpdatedAt: &now}
	if err := c.store.Update(ctx, session.ID, patch); err != nil {
		return nil, c.updateErr(session.ID, err)
	}

	slog.Info("session completed", "session_id", session.ID, "turns", len(session.Turns))
	return &EndSessionResponse{
		SessionID:       session.ID,
		Status:          status,
		OverallFeedback: summary,
		TotalQuestions:  len(session.Turns),
	}, nil
}

// GetSession returns the full session record.
func (c *Coach) GetSession(ctx context.Context, req SessionRequest) (*GetSessionResponse, error) {
	session, err := c.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return &GetSessionResponse{Session: session, QuestionsRemaining: session.Remaining()}, nil
}

// AttachResume parses resume text and stores it on the session. Completed sessions accept
// a resume too, since it only feeds later feedback.
func (c *Coach) AttachResume(ctx context.Context, req AttachResumeRequest) (*AttachResumeResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	parsed, err := resume.Parse(req.ResumeText)
	if err != nil {
		return nil, err
	}
	session, err := c.load(ctx, SessionRequest{SessionID: req.SessionID})
	if err != nil {
		return nil, err
	}

	now := c.now()
	patch := types.SessionPatch{ResumeText: &req.ResumeText, ResumeData: &parsed, UpdatedAt: &now}
	if err := c.store.Update(ctx, session.ID, patch); err != nil {
		return nil, c.updateErr(session.ID, err)
	}
	return &AttachResumeResponse{SessionID: session.ID, ResumeData: parsed}, nil
}

func (c *Coach) load(ctx context.Context, req SessionRequest) (*types.Session, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	session, err := c.store.Get(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, &NotFoundError{SessionID: req.SessionID}
	}
	return session, nil
}

func (c *Coach) updateErr(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{SessionID: id}
	}
	return fmt.Errorf("failed to update session: %w", err)
}
