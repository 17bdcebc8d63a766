package coach

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/blob"
	"github.com/jonathan/interview-coach/internal/feedback"
	"github.com/jonathan/interview-coach/internal/questions"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/store"
	"github.com/jonathan/interview-coach/internal/transcribe"
	"github.com/jonathan/interview-coach/internal/types"
	embedded "github.com/jonathan/interview-coach/schemas"
)

type fakeFeedback struct {
	analyzeErr error
	summaryErr error
	summaries  int
	lastReq    feedback.AnalyzeRequest
}

func (f *fakeFeedback) AnalyzeResponse(_ context.Context, req feedback.AnalyzeRequest) (types.Feedback, error) {
	f.lastReq = req
	if f.analyzeErr != nil {
		return types.Feedback{}, f.analyzeErr
	}
	return types.Feedback{Text: "Solid answer.", Strengths: []string{"structure"}}, nil
}

func (f *fakeFeedback) SummarizeSession(_ context.Context, req feedback.SummaryRequest) (string, error) {
	f.summaries++
	if f.summaryErr != nil {
		return "", f.summaryErr
	}
	return fmt.Sprintf("Summary of %d answers.", len(req.Turns)), nil
}

type fakeJobs struct {
	text string
	err  error
}

func (f fakeJobs) FetchJob(context.Context, string) (string, error) { return f.text, f.err }

func oneQuestionBank() questions.Bank {
	return questions.Bank{
		types.QuestionTypeBehavioral: {
			{Question: "Tell me about a migration you led.", Competency: "leadership", ExpectedDuration: "2-3 minutes"},
		},
	}
}

type fixture struct {
	coach    *Coach
	store    *store.Memory
	feedback *fakeFeedback
	stt      *transcribe.MockService
}

func newFixture(t *testing.T, bank questions.Bank) *fixture {
	t.Helper()
	mem := store.NewMemory()
	fb := &fakeFeedback{}
	stt := transcribe.NewMockService("I led the move to Postgres and cut costs by a third.")
	audio, err := blob.NewFS(t.TempDir())
	require.NoError(t, err)

	ids := 0
	c, err := New(Deps{
		Store:       mem,
		Questions:   questions.NewBuilder(bank, nil),
		Feedback:    fb,
		Transcriber: &transcribe.Runner{Service: stt, Interval: time.Millisecond, Timeout: time.Second},
		Audio:       audio,
		Now:         func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			ids++
			return fmt.Sprintf("session-%d", ids)
		},
	})
	require.NoError(t, err)
	return &fixture{coach: c, store: mem, feedback: fb, stt: stt}
}

func (f *fixture) start(t *testing.T, req StartSessionRequest) string {
	t.Helper()
	resp, err := f.coach.StartSession(context.Background(), req)
	require.NoError(t, err)
	return resp.SessionID
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Deps{Store: store.NewMemory()})
	assert.Error(t, err)
}

func TestStartSession_ThenGetSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	resp, err := f.coach.StartSession(ctx, StartSessionRequest{
		JobTitle:       "Backend Engineer",
		JobDescription: "Build payment APIs.",
		QuestionTypes:  []string{types.QuestionTypeBehavioral, types.QuestionTypeWhyThisJob},
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, resp.Status)
	assert.Equal(t, 7, resp.TotalQuestions)

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: resp.SessionID})
	require.NoError(t, err)
	s := got.Session
	assert.Equal(t, 0, s.CurrentQuestionIndex)
	assert.Equal(t, types.StatusActive, s.Status)
	assert.Equal(t, "Backend Engineer", s.JobTitle)
	assert.Equal(t, "Build payment APIs.", s.JobDescription)
	assert.Equal(t, types.PracticeModeQuestionByQuestion, s.PracticeMode)
	assert.Len(t, s.Questions, 7)
	assert.Empty(t, s.Turns)
	require.NotNil(t, s.ExpiresAt)
	assert.Equal(t, s.CreatedAt.Add(DefaultSessionTTL), *s.ExpiresAt)
}

func TestStartSession_DefaultTypes(t *testing.T) {
	f := newFixture(t, nil)
	resp, err := f.coach.StartSession(context.Background(), StartSessionRequest{JobTitle: "Analyst"})
	require.NoError(t, err)
	assert.Equal(t, questions.DefaultBank().Count(types.DefaultQuestionTypes()), resp.TotalQuestions)
}

func TestStartSession_Validation(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		name  string
		req   StartSessionRequest
		field string
	}{
		{"missing title", StartSessionRequest{}, "job_title"},
		{"blank title", StartSessionRequest{JobTitle: "   "}, "job_title"},
		{"long title", StartSessionRequest{JobTitle: strings.Repeat("x", 201)}, "job_title"},
		{"long description", StartSessionRequest{JobTitle: "Dev", JobDescription: strings.Repeat("x", 4001)}, "job_description"},
		{"unknown type", StartSessionRequest{JobTitle: "Dev", QuestionTypes: []string{"riddles"}}, "question_types"},
		{"duplicate types", StartSessionRequest{JobTitle: "Dev", QuestionTypes: []string{"behavioral", "behavioral"}}, "question_types"},
		{"bad mode", StartSessionRequest{JobTitle: "Dev", PracticeMode: "speedrun"}, "practice_mode"},
		{"bad url", StartSessionRequest{JobTitle: "Dev", JobURL: "not a url"}, "job_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.coach.StartSession(context.Background(), tt.req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
		})
	}
	assert.Equal(t, 0, f.store.Len())
}

func TestStartSession_ResumeAndJobURL(t *testing.T) {
	f := newFixture(t, nil)
	f.coach.jobs = fakeJobs{text: "Fetched posting text"}

	id := f.start(t, StartSessionRequest{
		JobTitle:   "Dev",
		JobURL:     "https://jobs.example.com/123",
		ResumeText: "jane@example.com\nSkills\nGo, SQL",
	})
	got, err := f.coach.GetSession(context.Background(), SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, "Fetched posting text", got.Session.JobDescription)
	assert.Equal(t, "https://jobs.example.com/123", got.Session.JobURL)
	require.NotNil(t, got.Session.ResumeData)
	assert.Equal(t, "jane@example.com", got.Session.ResumeData.Contact.Email)
	assert.Equal(t, []string{"Go, SQL"}, got.Session.ResumeData.Skills)
}

func TestStartSession_JobFetchFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.coach.jobs = fakeJobs{err: errors.New("403 forbidden")}

	_, err := f.coach.StartSession(context.Background(), StartSessionRequest{JobTitle: "Dev", JobURL: "https://jobs.example.com/1"})
	var dErr *DownstreamError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))
	assert.Contains(t, err.Error(), "403 forbidden")
}

func TestGetNextQuestion_ServesEachQuestionOnceThenCompletes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev", QuestionTypes: []string{types.QuestionTypeWhyThisJob, types.QuestionTypeTellMeAbout}})

	want := []string{"Why do you want this job?", "Why should we hire you?", "Tell me about yourself."}
	for i, text := range want {
		q, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
		require.NoError(t, err)
		assert.False(t, q.Completed)
		assert.Equal(t, text, q.Question)
		assert.Equal(t, i+1, q.QuestionNumber)
		assert.Equal(t, len(want), q.TotalQuestions)
	}

	for i := 0; i < 2; i++ {
		q, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
		require.NoError(t, err)
		assert.True(t, q.Completed)
	}

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, len(want), got.Session.CurrentQuestionIndex)
	assert.Equal(t, types.StatusActive, got.Session.Status)
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: "missing"})
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	_, err = f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: "missing", ResponseText: "hi", Duration: 1})
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	_, err = f.coach.EndSession(ctx, SessionRequest{SessionID: "missing"})
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	_, err = f.coach.GetSession(ctx, SessionRequest{SessionID: ""})
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t, oneQuestionBank())
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Backend Engineer", QuestionTypes: []string{types.QuestionTypeBehavioral}})

	q, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, 1, q.QuestionNumber)
	assert.Equal(t, 1, q.TotalQuestions)

	res, err := f.coach.SubmitResponse(ctx, SubmitResponseRequest{
		SessionID:    id,
		ResponseText: "I led a migration project " + words(85),
		Duration:     30,
	})
	require.NoError(t, err)
	assert.Equal(t, 90, res.Metrics.WordCount)
	assert.Equal(t, 180, res.Metrics.PaceWPM)
	assert.Equal(t, types.PaceFast, res.Metrics.PaceAssessment)
	assert.Equal(t, "Solid answer.", res.Feedback.Text)
	assert.Equal(t, "Tell me about a migration you led.", f.feedback.lastReq.Question)

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	require.Len(t, got.Session.Turns, 1)
	assert.Equal(t, 0, got.Session.Turns[0].QuestionIndex)
	assert.Equal(t, "leadership", got.Session.Turns[0].Competency)

	end, err := f.coach.EndSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, 1, end.TotalQuestions)
	assert.Equal(t, types.StatusCompleted, end.Status)
	assert.NotEmpty(t, end.OverallFeedback)

	got, err = f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.NoError(t, schemas.ValidateValue(embedded.Session, got.Session))
}

func TestSubmitResponse_FeedbackFailureLeavesTurnsUnchanged(t *testing.T) {
	f := newFixture(t, oneQuestionBank())
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev", QuestionTypes: []string{types.QuestionTypeBehavioral}})
	_, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)

	f.feedback.analyzeErr = errors.New("model overloaded")
	_, err = f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: id, ResponseText: "An answer", Duration: 10})
	var dErr *DownstreamError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Empty(t, got.Session.Turns)

	// The question is still outstanding and can be answered once feedback recovers.
	f.feedback.analyzeErr = nil
	_, err = f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: id, ResponseText: "An answer", Duration: 10})
	require.NoError(t, err)
}

func TestSubmitResponse_OutstandingQuestionRules(t *testing.T) {
	f := newFixture(t, oneQuestionBank())
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev", QuestionTypes: []string{types.QuestionTypeBehavioral}})

	_, err := f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: id, ResponseText: "early", Duration: 5})
	var nErr *NoOutstandingQuestionError
	require.ErrorAs(t, err, &nErr)
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))

	_, err = f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	_, err = f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: id, ResponseText: "first", Duration: 5})
	require.NoError(t, err)

	_, err = f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: id, ResponseText: "again", Duration: 5})
	require.ErrorAs(t, err, &nErr)

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Len(t, got.Session.Turns, 1)
}

func TestSubmitResponse_InputValidation(t *testing.T) {
	f := newFixture(t, oneQuestionBank())
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev"})
	_, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  SubmitResponseRequest
	}{
		{"zero duration", SubmitResponseRequest{SessionID: id, ResponseText: "hi", Duration: 0}},
		{"negative duration", SubmitResponseRequest{SessionID: id, ResponseText: "hi", Duration: -3}},
		{"no answer", SubmitResponseRequest{SessionID: id, Duration: 5}},
		{"blank answer", SubmitResponseRequest{SessionID: id, ResponseText: " \n\t ", Duration: 5}},
		{"oversized transcript", SubmitResponseRequest{SessionID: id, ResponseText: strings.Repeat("a", 10*1024+1), Duration: 5}},
		{"bad audio format", SubmitResponseRequest{SessionID: id, AudioData: "aGk=", AudioFormat: "flac", Duration: 5}},
		{"bad language", SubmitResponseRequest{SessionID: id, AudioData: "aGk=", LanguageCode: "xx-XX", Duration: 5}},
		{"bad base64", SubmitResponseRequest{SessionID: id, AudioData: "%%%", Duration: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.coach.SubmitResponse(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
		})
	}

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Empty(t, got.Session.Turns)
}

func TestSubmitResponse_Audio(t *testing.T) {
	f := newFixture(t, oneQuestionBank())
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev", QuestionTypes: []string{types.QuestionTypeBehavioral}})
	_, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)

	res, err := f.coach.SubmitResponse(ctx, SubmitResponseRequest{
		SessionID:   id,
		AudioData:   base64.StdEncoding.EncodeToString([]byte("fake-webm-bytes")),
		AudioFormat: "webm",
		Duration:    6,
	})
	require.NoError(t, err)
	assert.Equal(t, f.stt.Transcript, res.Transcript)
	assert.Equal(t, 12, res.Metrics.WordCount)
	assert.Equal(t, fmt.Sprintf("interviews/%s/questions/1/audio_%d.webm", id, f.coach.now().Unix()), res.AudioKey)
	assert.Len(t, f.stt.Deleted, 1)

	stored, err := f.coach.audio.Get(ctx, res.AudioKey)
	require.NoError(t, err)
	assert.Equal(t, "fake-webm-bytes", string(stored))
}

func TestSubmitResponse_TranscriptionFailure(t *testing.T) {
	f := newFixture(t, oneQuestionBank())
	f.stt.FailJobs = true
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev", QuestionTypes: []string{types.QuestionTypeBehavioral}})
	_, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)

	_, err = f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: id, AudioData: "aGk=", Duration: 2})
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Empty(t, got.Session.Turns)
}

func TestEndSession_RejectsFurtherMutation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev"})
	_, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)

	end, err := f.coach.EndSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, 0, end.TotalQuestions)

	_, err = f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
	var cErr *SessionCompletedError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))

	_, err = f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: id, ResponseText: "late", Duration: 3})
	require.ErrorAs(t, err, &cErr)

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, got.Session.Status)
	assert.NotNil(t, got.Session.CompletedAt)
	assert.Equal(t, "Summary of 0 answers.", got.Session.OverallFeedback)

	// A second call regenerates the summary.
	_, err = f.coach.EndSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, 2, f.feedback.summaries)
}

func TestEndSession_SummaryFailureKeepsSessionActive(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev"})
	f.feedback.summaryErr = errors.New("quota exceeded")

	_, err := f.coach.EndSession(ctx, SessionRequest{SessionID: id})
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, got.Session.Status)
}

func TestAttachResume(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev"})

	res, err := f.coach.AttachResume(ctx, AttachResumeRequest{SessionID: id, ResumeText: "Experience\nAcme Corp, engineer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Corp, engineer"}, res.ResumeData.Experience)

	got, err := f.coach.GetSession(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, "Experience\nAcme Corp, engineer", got.Session.ResumeText)

	_, err = f.coach.AttachResume(ctx, AttachResumeRequest{SessionID: id})
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestSubmitResponse_BlankTextSkipsFeedback(t *testing.T) {
	f := newFixture(t, oneQuestionBank())
	ctx := context.Background()
	id := f.start(t, StartSessionRequest{JobTitle: "Dev"})
	_, err := f.coach.GetNextQuestion(ctx, SessionRequest{SessionID: id})
	require.NoError(t, err)

	_, err = f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: id, ResponseText: "   ", Duration: 10})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "response_text", vErr.Field)
	assert.Empty(t, f.feedback.lastReq.Question)

	res, err := f.coach.SubmitResponse(ctx, SubmitResponseRequest{SessionID: id, ResponseText: "I led it.", Duration: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Metrics.WordCount)
}

func TestStartSession_DefaultTypesFollowBank(t *testing.T) {
	f := newFixture(t, oneQuestionBank())

	resp, err := f.coach.StartSession(context.Background(), StartSessionRequest{JobTitle: "Dev"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalQuestions)

	got, err := f.coach.GetSession(context.Background(), SessionRequest{SessionID: resp.SessionID})
	require.NoError(t, err)
	assert.Equal(t, []string{types.QuestionTypeBehavioral}, got.Session.QuestionTypes)
	assert.Equal(t, 1, got.QuestionsRemaining)

	_, err = f.coach.GetNextQuestion(context.Background(), SessionRequest{SessionID: resp.SessionID})
	require.NoError(t, err)
	got, err = f.coach.GetSession(context.Background(), SessionRequest{SessionID: resp.SessionID})
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuestionsRemaining)
}
