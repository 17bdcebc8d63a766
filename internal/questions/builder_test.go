package questions

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/types"
)

type stubGenerator struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (s *stubGenerator) GenerateQuestion(_ context.Context, req GenerateRequest) (string, error) {
	s.calls.Add(1)
	if s.fail[req.Competency] {
		return "", errors.New("model unavailable")
	}
	return fmt.Sprintf("As a %s, %s?", req.JobTitle, req.Competency), nil
}

func TestBuild_StaticOrderAndLength(t *testing.T) {
	b := NewBuilder(nil, nil)

	list, err := b.Build(context.Background(), "Backend Engineer", "", []string{"why_this_job", "tell_me_about"})
	require.NoError(t, err)

	require.Len(t, list, 3)
	assert.Equal(t, "Why do you want this job?", list[0].Text)
	assert.Equal(t, "Why should we hire you?", list[1].Text)
	assert.Equal(t, "Tell me about yourself.", list[2].Text)
	for _, q := range list {
		assert.Equal(t, types.QuestionSourceStatic, q.Source)
		assert.False(t, q.FellBack)
	}
}

func TestBuild_EnrichesEveryEntry(t *testing.T) {
	gen := &stubGenerator{}
	b := NewBuilder(nil, gen)

	list, err := b.Build(context.Background(), "SRE", "", types.DefaultQuestionTypes())
	require.NoError(t, err)

	require.Len(t, list, 8)
	assert.Equal(t, int32(8), gen.calls.Load())
	assert.Equal(t, "As a SRE, adaptability?", list[0].Text)
	assert.Equal(t, "behavioral", list[0].Type)
	assert.Equal(t, "As a SRE, value_proposition?", list[7].Text)
	for _, q := range list {
		assert.Equal(t, types.QuestionSourceGenerated, q.Source)
	}
}

func TestBuild_PerEntryFallback(t *testing.T) {
	gen := &stubGenerator{fail: map[string]bool{"communication": true}}
	b := NewBuilder(nil, gen)

	list, err := b.Build(context.Background(), "SRE", "", []string{"behavioral"})
	require.NoError(t, err)

	require.Len(t, list, 5)
	assert.True(t, list[1].FellBack)
	assert.Equal(t, types.QuestionSourceStatic, list[1].Source)
	assert.Equal(t, DefaultBank()["behavioral"][1].Question, list[1].Text)
	assert.False(t, list[0].FellBack)
	assert.Equal(t, types.QuestionSourceGenerated, list[0].Source)
}

func TestBuild_NoJobTitleSkipsGeneration(t *testing.T) {
	gen := &stubGenerator{}
	b := NewBuilder(nil, gen)

	list, err := b.Build(context.Background(), "  ", "", []string{"behavioral"})
	require.NoError(t, err)

	assert.Len(t, list, 5)
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestBuild_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(nil, &stubGenerator{}).Build(ctx, "SRE", "", []string{"behavioral"})
	assert.ErrorIs(t, err, context.Canceled)
}
