package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"sync"
)

const (
	mockSampleRate  = 8000
	mockWordsPerMin = 150
)

// MockSynthesizer returns a silent WAV clip whose length follows the word count
// of the text. Every request is answered as wav regardless of the format asked for.
type MockSynthesizer struct {
	mu       sync.Mutex
	Requests []Request
}

func (m *MockSynthesizer) Synthesize(_ context.Context, req Request) (*Audio, error) {
	req, err := Normalize(req)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	seconds := len(strings.Fields(req.Text)) * 60 / mockWordsPerMin
	seconds = max(seconds, 1)
	return &Audio{Data: silentWAV(seconds), Format: "wav", MIMEType: "audio/wav"}, nil
}

// silentWAV encodes mono 16-bit PCM silence.
func silentWAV(seconds int) []byte {
	samples := seconds * mockSampleRate
	dataLen := uint32(samples * 2)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVEfmt ")
	for _, v := range []any{
		uint32(16), uint16(1), uint16(1),
		uint32(mockSampleRate), uint32(mockSampleRate * 2),
		uint16(2), uint16(16),
	} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}
