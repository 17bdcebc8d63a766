package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"
)

// GoogleSynthesizer speaks text through the Cloud Text-to-Speech REST API.
type GoogleSynthesizer struct {
	svc   *texttospeech.Service
	voice string
}

// NewGoogleSynthesizer builds a client authenticated with apiKey. voice names the
// default voice and may be empty, in which case the service picks one for the language.
func NewGoogleSynthesizer(ctx context.Context, apiKey, voice string, opts ...option.ClientOption) (*GoogleSynthesizer, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &GoogleSynthesizer{svc: svc, voice: voice}, nil
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	req, err := Normalize(req)
	if err != nil {
		return nil, err
	}
	voice := req.Voice
	if voice == "" {
		voice = g.voice
	}
	f := formats[req.Format]

	resp, err := g.svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input:       &texttospeech.SynthesisInput{Text: req.Text},
		Voice:       &texttospeech.VoiceSelectionParams{LanguageCode: req.LanguageCode, Name: voice},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: f.encoding},
	}).Context(ctx).Do()
	if err != nil {
		return nil, &SynthesisError{Cause: err}
	}
	data, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, &SynthesisError{Cause: fmt.Errorf("decode audio: %w", err)}
	}
	if len(data) == 0 {
		return nil, &SynthesisError{Cause: errors.New("empty audio")}
	}
	return &Audio{Data: data, Format: req.Format, MIMEType: f.mimeType}, nil
}
