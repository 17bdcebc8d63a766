// Package llm provides centralized LLM configuration and client abstractions.
// Question generation, answer feedback, session summaries and speech transcription all
// pick their model through a Task.
package llm

import (
	"fmt"
	"time"
)

// Task names a kind of model call. Each task can use its own model.
type Task string

const (
	// TaskQuestion tailors one bank question to a job
	TaskQuestion Task = "question"
	// TaskCoach produces per-answer feedback and session summaries
	TaskCoach Task = "coach"
	// TaskTranscribe turns an uploaded answer recording into text
	TaskTranscribe Task = "transcribe"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultCallTimeout bounds one model call when Config.CallTimeout is zero.
const DefaultCallTimeout = 60 * time.Second

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[Task]string
	// Temperatures override Temperature per task. Transcription should stay at zero.
	Temperatures    map[Task]float32
	Temperature     float32
	MaxOutputTokens int32
	CallTimeout     time.Duration
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[Task]string{
			TaskQuestion:   "gemini-2.5-flash-lite",
			TaskCoach:      "gemini-2.5-flash",
			TaskTranscribe: "gemini-2.5-flash",
		},
		Temperatures:    map[Task]float32{TaskTranscribe: 0},
		Temperature:     0.7,
		MaxOutputTokens: 2048,
		CallTimeout:     DefaultCallTimeout,
	}
}

// ConfigFromEnv returns DefaultConfig with model names and the call timeout overridden by
// GEMINI_QUESTION_MODEL, GEMINI_COACH_MODEL, GEMINI_TRANSCRIBE_MODEL and LLM_CALL_TIMEOUT.
func ConfigFromEnv(getenv func(string) string) (*Config, error) {
	c := DefaultConfig()
	for task, key := range map[Task]string{
		TaskQuestion:   "GEMINI_QUESTION_MODEL",
		TaskCoach:      "GEMINI_COACH_MODEL",
		TaskTranscribe: "GEMINI_TRANSCRIBE_MODEL",
	} {
		if v := getenv(key); v != "" {
			c.Models[task] = v
		}
	}
	if v := getenv("LLM_CALL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("config error: LLM_CALL_TIMEOUT must be a positive duration, got %q", v)
		}
		c.CallTimeout = d
	}
	return c, nil
}

// GetModel returns the model name for a task, falling back to the coach model.
func (c *Config) GetModel(task Task) string {
	if model, ok := c.Models[task]; ok {
		return model
	}
	return c.Models[TaskCoach]
}

// TemperatureFor returns the sampling temperature for a task.
func (c *Config) TemperatureFor(task Task) float32 {
	if t, ok := c.Temperatures[task]; ok {
		return t
	}
	return c.Temperature
}

// WithModel returns a copy of the config that uses model for task.
func (c *Config) WithModel(task Task, model string) *Config {
	out := *c
	out.Models = make(map[Task]string, len(c.Models)+1)
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[task] = model
	return &out
}
