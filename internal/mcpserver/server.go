// Package mcpserver exposes the interview coach over the Model Context Protocol on stdio.
// Each session action is one tool, and so is each stand-alone analysis tool.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jonathan/interview-coach/internal/coach"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/metrics"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/tts"
)

// Config names the server and supplies its collaborators.
type Config struct {
	Name       string
	Version    string
	Coach      *coach.Coach
	JobOptions ingestion.Options
	// Speech enables the synthesize_speech tool when set.
	Speech tts.Synthesizer
}

// Server wraps an MCP server bound to a Coach.
type Server struct {
	mcp        *server.MCPServer
	coach      *coach.Coach
	jobOptions ingestion.Options
	speech     tts.Synthesizer
}

// New creates the server and registers every tool.
func New(cfg Config) *Server {
	if cfg.Name == "" {
		cfg.Name = "interview-coach"
	}
	s := &Server{
		mcp: server.NewMCPServer(cfg.Name, cfg.Version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		coach:      cfg.Coach,
		jobOptions: cfg.JobOptions,
		speech:     cfg.Speech,
	}
	s.registerTools()
	return s
}

// Serve runs the stdio transport until stdin closes.
func (s *Server) Serve() error {
	slog.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcp)
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

func sessionID() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier returned by start_session"))
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(coach.ActionStartSession,
		mcp.WithDescription("Start a mock interview session and freeze its question list"),
		mcp.WithString("job_title", mcp.Required(), mcp.Description("Role being interviewed for")),
		mcp.WithString("job_description", mcp.Description("Job description text (max 4000 characters)")),
		mcp.WithString("job_url", mcp.Description("Job posting URL, fetched when no description is given")),
		mcp.WithString("resume_text", mcp.Description("Candidate resume text")),
		mcp.WithString("practice_mode", mcp.Enum("question_by_question", "full_interview")),
		mcp.WithArray("question_types", mcp.WithStringItems(),
			mcp.Description("Question types: behavioral, tell_me_about, why_this_job")),
	), s.action(coach.ActionStartSession))

	s.mcp.AddTool(mcp.NewTool(coach.ActionGetQuestion,
		mcp.WithDescription("Serve the next question. Fetching consumes it; there is no peek."),
		sessionID(),
	), s.action(coach.ActionGetQuestion))

	s.mcp.AddTool(mcp.NewTool(coach.ActionSubmitResponse,
		mcp.WithDescription("Answer the most recently served question and get delivery metrics and feedback"),
		sessionID(),
		mcp.WithString("response_text", mcp.Description("Answer transcript")),
		mcp.WithNumber("duration", mcp.Required(), mcp.Description("Answer length in seconds")),
		mcp.WithString("audio_data", mcp.Description("Base64 audio, instead of response_text")),
		mcp.WithString("audio_format", mcp.Enum("webm", "mp3", "wav", "ogg")),
		mcp.WithString("language_code", mcp.Enum("en-US", "en-GB", "es-US", "fr-FR", "de-DE")),
	), s.action(coach.ActionSubmitResponse))

	s.mcp.AddTool(mcp.NewTool(coach.ActionEndSession,
		mcp.WithDescription("Summarize all answers and complete the session"),
		sessionID(),
	), s.action(coach.ActionEndSession))

	s.mcp.AddTool(mcp.NewTool(coach.ActionGetSession,
		mcp.WithDescription("Return the full session record"),
		sessionID(),
	), s.action(coach.ActionGetSession))

	s.mcp.AddTool(mcp.NewTool(coach.ActionAttachResume,
		mcp.WithDescription("Parse resume text and attach it to a session"),
		sessionID(),
		mcp.WithString("resume_text", mcp.Required()),
	), s.action(coach.ActionAttachResume))

	s.mcp.AddTool(mcp.NewTool("analyze_speech",
		mcp.WithDescription("Compute pace and filler-word metrics for a transcript"),
		mcp.WithString("transcript", mcp.Required()),
		mcp.WithNumber("duration", mcp.Required(), mcp.Description("Seconds")),
	), s.handleAnalyzeSpeech)

	s.mcp.AddTool(mcp.NewTool("parse_resume",
		mcp.WithDescription("Split resume text into contact, education, experience and skills"),
		mcp.WithString("text", mcp.Required()),
	), s.handleParseResume)

	s.mcp.AddTool(mcp.NewTool("extract_skills",
		mcp.WithDescription("Match a curated skill vocabulary against text"),
		mcp.WithString("text", mcp.Required()),
	), s.handleExtractSkills)

	s.mcp.AddTool(mcp.NewTool("fetch_job",
		mcp.WithDescription("Fetch a job posting and return its cleaned description"),
		mcp.WithString("url", mcp.Required()),
		mcp.WithBoolean("use_browser", mcp.Description("Render script-heavy pages in headless Chrome")),
	), s.handleFetchJob)

	if s.speech != nil {
		s.mcp.AddTool(mcp.NewTool("synthesize_speech",
			mcp.WithDescription("Read text aloud and return the audio clip"),
			mcp.WithString("text", mcp.Required()),
			mcp.WithString("format", mcp.Enum("mp3", "ogg", "wav")),
			mcp.WithString("language_code", mcp.Description("Defaults to en-US")),
			mcp.WithString("voice"),
		), s.handleSynthesizeSpeech)
	}
}

// action forwards the tool arguments to the coach as an action envelope.
func (s *Server) action(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		for k, v := range req.GetArguments() {
			args[k] = v
		}
		args["action"] = name
		raw, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
		}

		resp := s.coach.Dispatch(ctx, raw)
		if errBody, ok := resp.Body.(coach.ErrorBody); ok {
			return mcp.NewToolResultError(errBody.Error), nil
		}
		return jsonResult(resp.Body)
	}
}

func (s *Server) handleAnalyzeSpeech(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcript, err := req.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	duration, err := req.RequireFloat("duration")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := metrics.Analyze(transcript, duration)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(m)
}

func (s *Server) handleParseResume(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parsed, err := resume.Parse(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(parsed)
}

func (s *Server) handleExtractSkills(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	skills, err := resume.ExtractSkills(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(skills)
}

func (s *Server) handleFetchJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := s.jobOptions
	opts.UseBrowser = opts.UseBrowser || req.GetBool("use_browser", false)
	posting, err := ingestion.FetchJobDescription(ctx, url, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(posting)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleSynthesizeSpeech(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	audio, err := s.speech.Synthesize(ctx, tts.Request{
		Text:         text,
		Format:       req.GetString("format", ""),
		LanguageCode: req.GetString("language_code", ""),
		Voice:        req.GetString("voice", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultAudio(
		fmt.Sprintf("%d bytes of %s audio", len(audio.Data), audio.Format),
		base64.StdEncoding.EncodeToString(audio.Data),
		audio.MIMEType,
	), nil
}
