package tts

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestNormalize(t *testing.T) {
	req, err := Normalize(Request{Text: "  Tell me about yourself.  "})
	require.NoError(t, err)
	assert.Equal(t, "Tell me about yourself.", req.Text)
	assert.Equal(t, "mp3", req.Format)
	assert.Equal(t, "en-US", req.LanguageCode)

	req, err = Normalize(Request{Text: "hi", Format: "WAV", LanguageCode: "fr-FR"})
	require.NoError(t, err)
	assert.Equal(t, "wav", req.Format)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"blank", Request{Text: " \n "}, "text"},
		{"too long", Request{Text: strings.Repeat("é", MaxTextChars+1)}, "text"},
		{"format", Request{Text: "hi", Format: "flac"}, "format"},
		{"language", Request{Text: "hi", LanguageCode: "xx-XX"}, "language_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNormalize_CountsCharacters(t *testing.T) {
	_, err := Normalize(Request{Text: strings.Repeat("é", MaxTextChars)})
	assert.NoError(t, err)
}

func TestMockSynthesizer_SilentWAV(t *testing.T) {
	m := &MockSynthesizer{}
	audio, err := m.Synthesize(context.Background(), Request{Text: "Why this role?"})
	require.NoError(t, err)

	assert.Equal(t, "wav", audio.Format)
	assert.Equal(t, "audio/wav", audio.MIMEType)
	require.Greater(t, len(audio.Data), 44)
	assert.Equal(t, "RIFF", string(audio.Data[:4]))
	assert.Equal(t, "WAVE", string(audio.Data[8:12]))
	assert.Equal(t, "data", string(audio.Data[36:40]))

	dataLen := binary.LittleEndian.Uint32(audio.Data[40:44])
	assert.Equal(t, uint32(mockSampleRate*2), dataLen)
	assert.Equal(t, len(audio.Data)-44, int(dataLen))
	require.Len(t, m.Requests, 1)
}

func TestMockSynthesizer_Rejects(t *testing.T) {
	m := &MockSynthesizer{}
	_, err := m.Synthesize(context.Background(), Request{})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, m.Requests)
}

func newTestSynthesizer(t *testing.T, h http.HandlerFunc) *GoogleSynthesizer {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	g, err := NewGoogleSynthesizer(context.Background(), "", "en-US-Standard-C",
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	return g
}

func TestGoogleSynthesizer_Synthesize(t *testing.T) {
	var got map[string]any
	g := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text:synthesize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString([]byte("ID3audio")),
		})
	})

	audio, err := g.Synthesize(context.Background(), Request{Text: "Describe a conflict.", Format: "ogg"})
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3audio"), audio.Data)
	assert.Equal(t, "audio/ogg", audio.MIMEType)

	assert.Equal(t, map[string]any{"text": "Describe a conflict."}, got["input"])
	assert.Equal(t, map[string]any{"languageCode": "en-US", "name": "en-US-Standard-C"}, got["voice"])
	assert.Equal(t, map[string]any{"audioEncoding": "OGG_OPUS"}, got["audioConfig"])
}

func TestGoogleSynthesizer_BackendError(t *testing.T) {
	g := newTestSynthesizer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})

	_, err := g.Synthesize(context.Background(), Request{Text: "hi"})
	var se *SynthesisError
	assert.ErrorAs(t, err, &se)
}

func TestGoogleSynthesizer_EmptyAudio(t *testing.T) {
	g := newTestSynthesizer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := g.Synthesize(context.Background(), Request{Text: "hi"})
	var se *SynthesisError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "empty audio")
}
