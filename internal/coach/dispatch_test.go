package coach

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatch(t *testing.T, c *Coach, body string) Response {
	t.Helper()
	return c.Dispatch(context.Background(), []byte(body))
}

func TestDispatch_FullFlow(t *testing.T) {
	f := newFixture(t, oneQuestionBank())

	resp := dispatch(t, f.coach, `{"action":"start_session","job_title":"Backend Engineer","question_types":["behavioral"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	start := resp.Body.(*StartSessionResponse)
	id := start.SessionID

	resp = dispatch(t, f.coach, `{"action":"get_question","session_id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, resp.Body.(*QuestionResponse).QuestionNumber)

	resp = dispatch(t, f.coach, `{"action":"submit_response","session_id":"`+id+`","response_text":"um I led it","duration":4}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sub := resp.Body.(*SubmitResponseResult)
	assert.Equal(t, 1, sub.Metrics.FillerCount)
	assert.True(t, sub.Processed)

	resp = dispatch(t, f.coach, `{"action":"get_question","session_id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.Body.(*QuestionResponse).Completed)

	resp = dispatch(t, f.coach, `{"action":"end_session","session_id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, resp.Body.(*EndSessionResponse).TotalQuestions)

	resp = dispatch(t, f.coach, `{"action":"get_session","session_id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out, err := json.Marshal(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"status":"completed"`)
	assert.Contains(t, string(out), `"responses":[`)
}

func TestDispatch_Errors(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"not json", `{`, http.StatusBadRequest, "Invalid JSON format"},
		{"missing action", `{"session_id":"x"}`, http.StatusBadRequest, "Missing required field: action"},
		{"unknown action", `{"action":"delete_session"}`, http.StatusBadRequest, "Invalid action"},
		{"wrong field type", `{"action":"start_session","job_title":42}`, http.StatusBadRequest, "Invalid JSON format"},
		{"missing session id", `{"action":"get_question"}`, http.StatusBadRequest, "session_id"},
		{"unknown session", `{"action":"get_session","session_id":"nope"}`, http.StatusNotFound, "session not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := dispatch(t, f.coach, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body, ok := resp.Body.(ErrorBody)
			require.True(t, ok)
			assert.Contains(t, body.Error, tt.msg)
		})
	}
}

func TestDispatch_WrappedBody(t *testing.T) {
	f := newFixture(t, nil)

	resp := dispatch(t, f.coach, `{"body":"{\"action\":\"start_session\",\"job_title\":\"Dev\"}"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = dispatch(t, f.coach, `{"body":{"action":"start_session","job_title":"Dev"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, f.store.Len())
}

func TestHTTPStatus_Unclassified(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	resp := ErrorResponse("get_session", assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, ErrorBody{Error: "Internal server error"}, resp.Body)
}
