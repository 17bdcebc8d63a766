package questions

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-coach/internal/types"
)

// DefaultConcurrency bounds parallel generation requests.
const DefaultConcurrency = 4

// GenerateRequest describes one question to tailor to a job.
type GenerateRequest struct {
	QuestionType   string
	Competency     string
	JobTitle       string
	JobDescription string
	StaticQuestion string
}

// Generator produces a tailored question. Implementations return an error for any
// unusable output.
type Generator interface {
	GenerateQuestion(ctx context.Context, req GenerateRequest) (string, error)
}

// Builder computes a session's question list from a bank and an optional generator.
type Builder struct {
	Bank        Bank
	Generator   Generator
	Concurrency int
}

// NewBuilder creates a builder. A nil generator disables enrichment.
func NewBuilder(bank Bank, gen Generator) *Builder {
	if bank == nil {
		bank = DefaultBank()
	}
	return &Builder{Bank: bank, Generator: gen, Concurrency: DefaultConcurrency}
}

// Build returns one question per bank entry of each requested type, in request order.
// With a generator and a job title, each entry is tailored to the job; an entry whose
// generation fails keeps its static text and is marked FellBack. Build never fails on
// generation errors. It returns ctx.Err() if the context ends first.
func (b *Builder) Build(ctx context.Context, jobTitle, jobDescription string, qtypes []string) ([]types.Question, error) {
	list := make([]types.Question, 0, b.Bank.Count(qtypes))
	for _, qtype := range qtypes {
		for _, e := range b.Bank[qtype] {
			list = append(list, types.Question{
				Text:             e.Question,
				Type:             qtype,
				Competency:       e.Competency,
				ExpectedDuration: e.ExpectedDuration,
				Source:           types.QuestionSourceStatic,
			})
		}
	}

	if b.Generator == nil || strings.TrimSpace(jobTitle) == "" {
		return list, nil
	}

	limit := b.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range list {
		q := &list[i]
		g.Go(func() error {
			text, err := b.Generator.GenerateQuestion(gctx, GenerateRequest{
				QuestionType:   q.Type,
				Competency:     q.Competency,
				JobTitle:       jobTitle,
				JobDescription: jobDescription,
				StaticQuestion: q.Text,
			})
			text = strings.TrimSpace(text)
			if err != nil || text == "" {
				slog.Warn("question generation fell back to static text",
					"type", q.Type, "competency", q.Competency, "error", err)
				q.FellBack = true
				return nil
			}
			q.Text = text
			q.Source = types.QuestionSourceGenerated
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
