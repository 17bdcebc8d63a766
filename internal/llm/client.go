package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent returns free text for prompt
	GenerateContent(ctx context.Context, prompt string, task Task) (string, error)
	// GenerateJSON returns a JSON document for prompt with any code fences removed
	GenerateJSON(ctx context.Context, prompt string, task Task) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// APICallError wraps a failed provider call with the model that was asked
type APICallError struct {
	Model string
	Cause error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("LLM call to %s failed: %v", e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Provider != ProviderGemini {
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, config: config}, nil
}

// GenerateContent returns free text for prompt
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, task Task) (string, error) {
	return c.Generate(ctx, task, false, genai.Text(prompt))
}

// GenerateJSON returns a JSON document for prompt with any code fences removed
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, task Task) (string, error) {
	text, err := c.Generate(ctx, task, true, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Generate sends parts to the model configured for task under the call timeout and
// returns the concatenated text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, task Task, jsonOutput bool, parts ...genai.Part) (string, error) {
	name := c.config.GetModel(task)
	if name == "" {
		return "", fmt.Errorf("no model configured for %s", task)
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(c.config.TemperatureFor(task))
	if c.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	}
	if jsonOutput {
		model.ResponseMIMEType = "application/json"
	}

	timeout := c.config.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &APICallError{Model: name, Cause: err}
	}
	logUsage(task, name, resp, time.Since(start))

	return responseText(resp)
}

// Genai exposes the underlying SDK client for services that need the file API
func (c *GeminiClient) Genai() *genai.Client {
	return c.client
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func logUsage(task Task, model string, resp *genai.GenerateContentResponse, elapsed time.Duration) {
	attrs := []any{"task", task, "model", model, "elapsed", elapsed}
	if resp != nil && resp.UsageMetadata != nil {
		attrs = append(attrs,
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
		)
	}
	slog.Debug("llm call", attrs...)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != genai.FinishReasonUnspecified {
			return "", fmt.Errorf("no content in response (finish reason %s)", candidate.FinishReason)
		}
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
