package practice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jonathan/interview-coach/internal/coach"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/types"
)

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run drives the session to completion. On a terminal it runs the full-screen UI;
// otherwise it falls back to RunPlain on stdin and stdout.
func Run(ctx context.Context, c Coach, sessionID string) (*coach.EndSessionResponse, error) {
	if !IsTTY() {
		return RunPlain(ctx, c, sessionID, os.Stdin, os.Stdout)
	}

	p := tea.NewProgram(NewModel(ctx, c, sessionID), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(Model)
	if m.Err() != nil {
		return nil, m.Err()
	}
	return m.Summary(), nil
}

// RunPlain is the line-oriented session loop. Each answer is read until an empty line;
// an answer of "/end" or end of input ends the interview. The time spent typing is the
// answer duration.
func RunPlain(ctx context.Context, c Coach, sessionID string, in io.Reader, out io.Writer) (*coach.EndSessionResponse, error) {
	return runPlain(ctx, c, sessionID, in, out, time.Now)
}

//nolint:errcheck // writing to the terminal; errors are not recoverable
func runPlain(ctx context.Context, c Coach, sessionID string, in io.Reader, out io.Writer, now func() time.Time) (*coach.EndSessionResponse, error) {
	printer := observability.NewPrinter(out)
	scanner := bufio.NewScanner(in)
	req := coach.SessionRequest{SessionID: sessionID}

	for {
		q, err := c.GetNextQuestion(ctx, req)
		if err != nil {
			return nil, err
		}
		if q.Completed {
			break
		}

		printer.PrintQuestion(q.QuestionNumber, q.TotalQuestions, types.Question{
			Text:             q.Question,
			Type:             q.QuestionType,
			Competency:       q.Competency,
			ExpectedDuration: q.ExpectedDuration,
		})
		fmt.Fprintln(out, "Answer, then an empty line (\"/end\" finishes the interview):")

		started := now()
		answer, more := readAnswer(scanner)
		if answer == "/end" || (answer == "" && !more) {
			break
		}

		seconds := now().Sub(started).Seconds()
		if seconds <= 0 {
			seconds = 1
		}
		res, err := c.SubmitResponse(ctx, coach.SubmitResponseRequest{
			SessionID:    sessionID,
			ResponseText: answer,
			Duration:     seconds,
		})
		if err != nil {
			return nil, err
		}
		printer.PrintTurn(turnOf(res))
	}

	summary, err := c.EndSession(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\nAnswered %d questions.\n\n%s\n", summary.TotalQuestions, summary.OverallFeedback)
	return summary, nil
}

// readAnswer collects lines up to the first empty one. more is false once input is exhausted.
func readAnswer(scanner *bufio.Scanner) (string, bool) {
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if len(lines) == 0 {
				continue
			}
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), false
}
