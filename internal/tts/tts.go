// Package tts turns question text into spoken audio so a candidate can hear the
// interviewer read each question aloud.
package tts

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/interview-coach/internal/transcribe"
)

// MaxTextChars caps the text of one synthesis request.
const MaxTextChars = 3000

// DefaultFormat is used when a request names no format.
const DefaultFormat = "mp3"

type format struct {
	encoding string
	mimeType string
}

var formats = map[string]format{
	"mp3": {encoding: "MP3", mimeType: "audio/mpeg"},
	"ogg": {encoding: "OGG_OPUS", mimeType: "audio/ogg"},
	"wav": {encoding: "LINEAR16", mimeType: "audio/wav"},
}

// Request describes one piece of text to speak.
type Request struct {
	Text         string `json:"text"`
	Format       string `json:"format,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	Voice        string `json:"voice,omitempty"`
}

// Audio is the synthesized clip.
type Audio struct {
	Data     []byte
	Format   string
	MIMEType string
}

// Synthesizer converts text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Audio, error)
}

// ValidationError reports a request that cannot be synthesized.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// SynthesisError wraps a failure of the speech backend.
type SynthesisError struct {
	Cause error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed: %v", e.Cause)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// Normalize trims the text, fills defaults and checks every field.
func Normalize(req Request) (Request, error) {
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return req, &ValidationError{Field: "text", Message: "is required"}
	}
	if n := utf8.RuneCountInString(req.Text); n > MaxTextChars {
		return req, &ValidationError{Field: "text", Message: fmt.Sprintf("must be at most %d characters", MaxTextChars)}
	}
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if req.Format == "" {
		req.Format = DefaultFormat
	}
	if _, ok := formats[req.Format]; !ok {
		return req, &ValidationError{Field: "format", Message: "must be one of mp3, ogg, wav"}
	}
	if req.LanguageCode == "" {
		req.LanguageCode = transcribe.DefaultLanguage
	}
	if !transcribe.SupportsLanguage(req.LanguageCode) {
		return req, &ValidationError{Field: "language_code", Message: fmt.Sprintf("unsupported language %q", req.LanguageCode)}
	}
	return req, nil
}

// MIMEType returns the content type for a synthesis format.
func MIMEType(name string) (string, bool) {
	f, ok := formats[name]
	return f.mimeType, ok
}
