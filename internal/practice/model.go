// Package practice runs an interview session interactively in the terminal.
package practice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/interview-coach/internal/coach"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/types"
)

// Coach is the part of the session API the practice loop drives.
type Coach interface {
	GetNextQuestion(ctx context.Context, req coach.SessionRequest) (*coach.QuestionResponse, error)
	SubmitResponse(ctx context.Context, req coach.SubmitResponseRequest) (*coach.SubmitResponseResult, error)
	EndSession(ctx context.Context, req coach.SessionRequest) (*coach.EndSessionResponse, error)
}

// Key bindings.
const (
	KeyCtrlC  = "ctrl+c"
	KeySubmit = "ctrl+s"
	KeyEnter  = "enter"
	KeyEsc    = "esc"
)

const maxWidth = 80

type state int

const (
	stateLoading state = iota
	stateAnswering
	stateSubmitting
	stateFeedback
	stateSummarizing
	stateDone
)

type questionMsg struct{ resp *coach.QuestionResponse }

type feedbackMsg struct{ res *coach.SubmitResponseResult }

type summaryMsg struct{ resp *coach.EndSessionResponse }

type errMsg struct{ err error }

type tickMsg time.Time

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// Model is the bubbletea model for one practice session.
type Model struct {
	ctx       context.Context
	coach     Coach
	sessionID string
	now       func() time.Time

	state    state
	question *coach.QuestionResponse
	askedAt  time.Time
	elapsed  time.Duration
	turn     *coach.SubmitResponseResult
	summary  *coach.EndSessionResponse
	err      error

	answer  textarea.Model
	spinner spinner.Model
	width   int
}

// NewModel creates a model for an already started session.
func NewModel(ctx context.Context, c Coach, sessionID string) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your answer. ctrl+s submits, esc ends the interview."
	ta.CharLimit = 10000
	ta.ShowLineNumbers = false
	ta.SetWidth(maxWidth - 4)
	ta.SetHeight(8)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:       ctx,
		coach:     c,
		sessionID: sessionID,
		now:       time.Now,
		state:     stateLoading,
		answer:    ta,
		spinner:   sp,
		width:     maxWidth,
	}
}

// Summary returns the closing summary once the session ended, or nil.
func (m Model) Summary() *coach.EndSessionResponse {
	return m.summary
}

// Err returns the error that stopped the session, if any.
func (m Model) Err() error {
	return m.err
}

// Init fetches the first question.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchQuestion)
}

func (m Model) fetchQuestion() tea.Msg {
	resp, err := m.coach.GetNextQuestion(m.ctx, coach.SessionRequest{SessionID: m.sessionID})
	if err != nil {
		return errMsg{err}
	}
	return questionMsg{resp}
}

func (m Model) submit(text string, seconds float64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.coach.SubmitResponse(m.ctx, coach.SubmitResponseRequest{
			SessionID:    m.sessionID,
			ResponseText: text,
			Duration:     seconds,
		})
		if err != nil {
			return errMsg{err}
		}
		return feedbackMsg{res}
	}
}

func (m Model) endSession() tea.Msg {
	resp, err := m.coach.EndSession(m.ctx, coach.SessionRequest{SessionID: m.sessionID})
	if err != nil {
		return errMsg{err}
	}
	return summaryMsg{resp}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages for the practice screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width, maxWidth)
		m.answer.SetWidth(m.width - 4)
		return m, nil

	case questionMsg:
		if msg.resp.Completed {
			m.state = stateSummarizing
			return m, m.endSession
		}
		m.question = msg.resp
		m.state = stateAnswering
		m.askedAt = m.now()
		m.elapsed = 0
		m.answer.Reset()
		return m, tea.Batch(m.answer.Focus(), tick())

	case feedbackMsg:
		m.turn = msg.res
		m.state = stateFeedback
		return m, nil

	case summaryMsg:
		m.summary = msg.resp
		m.state = stateDone
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = stateDone
		return m, nil

	case tickMsg:
		if m.state != stateAnswering {
			return m, nil
		}
		m.elapsed = m.now().Sub(m.askedAt)
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == stateAnswering {
		var cmd tea.Cmd
		m.answer, cmd = m.answer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		return m, tea.Quit
	}

	switch m.state {
	case stateAnswering:
		switch msg.String() {
		case KeySubmit:
			text := strings.TrimSpace(m.answer.Value())
			if text == "" {
				return m, nil
			}
			seconds := m.now().Sub(m.askedAt).Seconds()
			if seconds <= 0 {
				seconds = 1
			}
			m.answer.Blur()
			m.state = stateSubmitting
			return m, tea.Batch(m.spinner.Tick, m.submit(text, seconds))
		case KeyEsc:
			m.answer.Blur()
			m.state = stateSummarizing
			return m, tea.Batch(m.spinner.Tick, m.endSession)
		}
		var cmd tea.Cmd
		m.answer, cmd = m.answer.Update(msg)
		return m, cmd

	case stateFeedback:
		switch msg.String() {
		case KeyEnter:
			m.state = stateLoading
			return m, tea.Batch(m.spinner.Tick, m.fetchQuestion)
		case KeyEsc:
			m.state = stateSummarizing
			return m, tea.Batch(m.spinner.Tick, m.endSession)
		}

	case stateDone:
		switch msg.String() {
		case KeyEnter, KeyEsc, "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Interview practice") + "\n\n")

	switch m.state {
	case stateLoading:
		sb.WriteString(m.spinner.View() + " Loading next question...")
	case stateSubmitting:
		sb.WriteString(m.spinner.View() + " Analyzing your answer...")
	case stateSummarizing:
		sb.WriteString(m.spinner.View() + " Summarizing the interview...")

	case stateAnswering:
		q := m.question
		header := fmt.Sprintf("Question %d of %d", q.QuestionNumber, q.TotalQuestions)
		sb.WriteString(mutedStyle.Render(header) + "\n")
		sb.WriteString(promptStyle.Width(m.width-2).Render(q.Question) + "\n")
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("%s · aim for %s · %s elapsed",
			q.Competency, q.ExpectedDuration, m.elapsed.Round(time.Second))) + "\n\n")
		sb.WriteString(m.answer.View() + "\n\n")
		sb.WriteString(mutedStyle.Render("ctrl+s submit · esc end interview · ctrl+c quit"))

	case stateFeedback:
		var out strings.Builder
		observability.NewPrinter(&out).PrintTurn(turnOf(m.turn))
		sb.WriteString(out.String() + "\n")
		sb.WriteString(mutedStyle.Render("enter next question · esc end interview"))

	case stateDone:
		if m.err != nil {
			sb.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
		}
		if m.summary != nil {
			sb.WriteString(fmt.Sprintf("Answered %d questions.\n\n", m.summary.TotalQuestions))
			sb.WriteString(m.summary.OverallFeedback + "\n\n")
		}
		sb.WriteString(mutedStyle.Render("press q to exit"))
	}

	return sb.String() + "\n"
}

func turnOf(res *coach.SubmitResponseResult) *types.Turn {
	if res == nil {
		return nil
	}
	return &types.Turn{
		QuestionIndex: res.QuestionNumber,
		Transcript:    res.Transcript,
		Metrics:       res.Metrics,
		Feedback:      res.Feedback,
	}
}
