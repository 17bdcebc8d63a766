package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/jonathan/interview-coach/internal/llm"
)

// GeminiService transcribes audio by uploading it to the Gemini file API and asking a
// model for a verbatim transcript once the file is active.
type GeminiService struct {
	llm    *llm.GeminiClient
	client *genai.Client
}

// NewGeminiService creates a service that shares the SDK client of c.
func NewGeminiService(c *llm.GeminiClient) *GeminiService {
	return &GeminiService{llm: c, client: c.Genai()}
}

// Start uploads the audio. The returned job id is the file resource name.
func (s *GeminiService) Start(ctx context.Context, req Request) (string, error) {
	f, err := s.client.UploadFile(ctx, "", bytes.NewReader(req.Audio), &genai.UploadFileOptions{
		MIMEType:    req.MIMEType,
		DisplayName: req.Name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}
	return f.Name, nil
}

// Status maps the file processing state onto the job lifecycle.
func (s *GeminiService) Status(ctx context.Context, jobID string) (RemoteStatus, error) {
	f, err := s.client.GetFile(ctx, jobID)
	if err != nil {
		return RemotePending, fmt.Errorf("failed to get file %s: %w", jobID, err)
	}
	switch f.State {
	case genai.FileStateActive:
		return RemoteReady, nil
	case genai.FileStateFailed:
		return RemoteFailed, nil
	default:
		return RemotePending, nil
	}
}

// Fetch asks the model for a transcript of the uploaded file.
func (s *GeminiService) Fetch(ctx context.Context, jobID, language string) (string, error) {
	f, err := s.client.GetFile(ctx, jobID)
	if err != nil {
		return "", fmt.Errorf("failed to get file %s: %w", jobID, err)
	}

	if language == "" {
		language = DefaultLanguage
	}
	instruction := fmt.Sprintf(
		"Transcribe this interview answer verbatim. The speaker's language is %s. "+
			"Keep filler words such as um, uh and like exactly as spoken. Return only the transcript text.",
		language)

	text, err := s.llm.Generate(ctx, llm.TaskTranscribe, false,
		genai.FileData{MIMEType: f.MIMEType, URI: f.URI},
		genai.Text(instruction),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Delete removes the uploaded file.
func (s *GeminiService) Delete(ctx context.Context, jobID string) error {
	return s.client.DeleteFile(ctx, jobID)
}
