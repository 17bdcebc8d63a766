package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Actions accepted by Dispatch.
const (
	ActionStartSession   = "start_session"
	ActionGetQuestion    = "get_question"
	ActionSubmitResponse = "submit_response"
	ActionEndSession     = "end_session"
	ActionGetSession     = "get_session"
	ActionAttachResume   = "attach_resume"
)

// Actions lists every action in a stable order.
func Actions() []string {
	return []string{ActionStartSession, ActionGetQuestion, ActionSubmitResponse, ActionEndSession, ActionGetSession, ActionAttachResume}
}

// Response is a status code and a JSON-encodable body.
type Response struct {
	StatusCode int `json:"status_code"`
	Body       any `json:"body"`
}

// ErrorBody is the body of every non-2xx Response.
type ErrorBody struct {
	Error string `json:"error"`
}

type envelope struct {
	Action string          `json:"action"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// Dispatch decodes one action envelope, a flat JSON object with an "action" field plus
// that action's fields, runs it, and returns the status and body. An envelope whose
// "body" field holds the payload as a JSON string is unwrapped first.
func (c *Coach) Dispatch(ctx context.Context, raw []byte) Response {
	payload, action, err := decodeEnvelope(raw)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error())
	}

	var (
		result any
		opErr  error
	)
	switch action {
	case ActionStartSession:
		var req StartSessionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return invalidJSON(err)
		}
		result, opErr = c.StartSession(ctx, req)
	case ActionGetQuestion, ActionEndSession, ActionGetSession:
		var req SessionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return invalidJSON(err)
		}
		switch action {
		case ActionGetQuestion:
			result, opErr = c.GetNextQuestion(ctx, req)
		case ActionEndSession:
			result, opErr = c.EndSession(ctx, req)
		default:
			result, opErr = c.GetSession(ctx, req)
		}
	case ActionSubmitResponse:
		var req SubmitResponseRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return invalidJSON(err)
		}
		result, opErr = c.SubmitResponse(ctx, req)
	case ActionAttachResume:
		var req AttachResumeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return invalidJSON(err)
		}
		result, opErr = c.AttachResume(ctx, req)
	default:
		return errorResponse(http.StatusBadRequest,
			fmt.Sprintf("Invalid action. Must be one of: %s", strings.Join(Actions(), ", ")))
	}

	if opErr != nil {
		return ErrorResponse(action, opErr)
	}
	return Response{StatusCode: http.StatusOK, Body: result}
}

func decodeEnvelope(raw []byte) (json.RawMessage, string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", fmt.Errorf("Invalid JSON format")
	}
	payload := json.RawMessage(raw)
	if env.Action == "" && len(env.Body) > 0 {
		var inner string
		if err := json.Unmarshal(env.Body, &inner); err == nil {
			payload = json.RawMessage(inner)
		} else {
			payload = env.Body
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, "", fmt.Errorf("Invalid JSON format")
		}
	}
	if env.Action == "" {
		return nil, "", fmt.Errorf("Missing required field: action")
	}
	return payload, env.Action, nil
}

// ErrorResponse maps an operation error to a Response. Unclassified errors are logged
// and reported without detail.
func ErrorResponse(action string, err error) Response {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("action failed", "action", action, "error", err)
		return errorResponse(status, "Internal server error")
	}
	if status == http.StatusBadGateway {
		slog.Warn("downstream failure", "action", action, "error", err)
	}
	return errorResponse(status, err.Error())
}

func invalidJSON(err error) Response {
	return errorResponse(http.StatusBadRequest, fmt.Sprintf("Invalid JSON format: %v", err))
}

func errorResponse(status int, msg string) Response {
	return Response{StatusCode: status, Body: ErrorBody{Error: msg}}
}
