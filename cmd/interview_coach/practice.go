package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/coach"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/practice"
	"github.com/jonathan/interview-coach/internal/resume"
)

var practiceOpts struct {
	jobTitle       string
	jobDescription string
	jobURL         string
	resumeFile     string
	questionTypes  []string
	mode           string
	sessionID      string
}

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview in the terminal",
	Long: `Start a session (or resume one with --session) and answer questions in the terminal.
Each answer is timed from when the question appears, so pace reflects typing speed unless you
dictate. On a non-interactive stdout the session runs line by line.`,
	RunE: runPractice,
}

func init() {
	f := practiceCmd.Flags()
	f.StringVarP(&practiceOpts.jobTitle, "job-title", "t", "", "Role to practice for")
	f.StringVarP(&practiceOpts.jobDescription, "job-description", "d", "", "Job description text")
	f.StringVarP(&practiceOpts.jobURL, "job-url", "u", "", "Job posting URL, fetched when no description is given")
	f.StringVarP(&practiceOpts.resumeFile, "resume", "r", "", "Resume file (PDF or text)")
	f.StringSliceVar(&practiceOpts.questionTypes, "types", nil, "Question types (behavioral, tell_me_about, why_this_job)")
	f.StringVar(&practiceOpts.mode, "mode", "", "Practice mode (question_by_question or full_interview)")
	f.StringVar(&practiceOpts.sessionID, "session", "", "Continue an existing session instead of starting one")
	rootCmd.AddCommand(practiceCmd)
}

func runPractice(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if practiceOpts.sessionID == "" && practiceOpts.jobTitle == "" {
		return fmt.Errorf("either --job-title or --session must be provided")
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	id := practiceOpts.sessionID
	if id == "" {
		req := coach.StartSessionRequest{
			JobTitle:       practiceOpts.jobTitle,
			JobDescription: practiceOpts.jobDescription,
			JobURL:         practiceOpts.jobURL,
			PracticeMode:   practiceOpts.mode,
			QuestionTypes:  practiceOpts.questionTypes,
		}
		if practiceOpts.resumeFile != "" {
			data, err := os.ReadFile(practiceOpts.resumeFile)
			if err != nil {
				return fmt.Errorf("failed to read resume: %w", err)
			}
			if req.ResumeText, err = resume.ExtractText(data); err != nil {
				return err
			}
		}

		started, err := a.coach.StartSession(ctx, req)
		if err != nil {
			return err
		}
		id = started.SessionID
		fmt.Fprintf(os.Stderr, "Session %s: %d questions\n", id, started.TotalQuestions)
	}

	if _, err := practice.Run(ctx, a.coach, id); err != nil {
		return err
	}

	final, err := a.coach.GetSession(ctx, coach.SessionRequest{SessionID: id})
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintSession(final.Session)
	return nil
}
