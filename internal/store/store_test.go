package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/types"
)

func newSession(id string) *types.Session {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(720 * time.Hour)
	return &types.Session{
		ID:             id,
		JobTitle:       "Backend Engineer",
		JobDescription: "Build APIs",
		PracticeMode:   types.PracticeModeQuestionByQuestion,
		QuestionTypes:  []string{"behavioral"},
		Questions: []types.Question{
			{Text: "Tell me about a deadline.", Type: "behavioral", Competency: "time_management", ExpectedDuration: "2-3 minutes", Source: types.QuestionSourceStatic},
		},
		Status:    types.StatusActive,
		Turns:     []types.Turn{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: &expires,
	}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	lite, err := OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": lite,
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.EnsureSchema(ctx))
			require.NoError(t, s.EnsureSchema(ctx), "schema creation must be idempotent")

			got, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.Nil(t, got)

			sess := newSession("s-1")
			require.NoError(t, s.Put(ctx, sess))

			got, err = s.Get(ctx, "s-1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, sess.JobTitle, got.JobTitle)
			assert.Equal(t, sess.JobDescription, got.JobDescription)
			assert.Equal(t, sess.Questions, got.Questions)
			assert.Equal(t, types.StatusActive, got.Status)
			assert.True(t, sess.ExpiresAt.Equal(*got.ExpiresAt))

			idx := 1
			now := time.Now().UTC()
			turns := []types.Turn{{QuestionIndex: 0, Question: "Tell me about a deadline.", Transcript: "I planned."}}
			require.NoError(t, s.Update(ctx, "s-1", types.SessionPatch{
				CurrentQuestionIndex: &idx,
				Turns:                &turns,
				UpdatedAt:            &now,
			}))

			got, err = s.Get(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, 1, got.CurrentQuestionIndex)
			require.Len(t, got.Turns, 1)
			assert.Equal(t, "I planned.", got.Turns[0].Transcript)
			assert.Equal(t, sess.JobTitle, got.JobTitle, "unnamed fields are untouched")

			err = s.Update(ctx, "missing", types.SessionPatch{CurrentQuestionIndex: &idx})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemory_CopiesRecords(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	sess := newSession("s-2")
	require.NoError(t, m.Put(ctx, sess))

	sess.JobTitle = "mutated"
	got, err := m.Get(ctx, "s-2")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.JobTitle)

	got.Questions[0].Text = "mutated"
	again, err := m.Get(ctx, "s-2")
	require.NoError(t, err)
	assert.Equal(t, "Tell me about a deadline.", again.Questions[0].Text)
	assert.Equal(t, 1, m.Len())
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, ValidateTableName("interview_sessions"))
	assert.Error(t, ValidateTableName("sessions; DROP TABLE x"))
	assert.Error(t, ValidateTableName("1abc"))
	assert.Error(t, ValidateTableName(""))

	_, err := OpenSQLite(":memory:", "bad name")
	assert.Error(t, err)
}
