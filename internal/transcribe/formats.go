package transcribe

import "slices"

// MaxAudioBytes caps one decoded audio clip.
const MaxAudioBytes = 10 * 1024 * 1024

// DefaultLanguage is used when a request names none.
const DefaultLanguage = "en-US"

var mimeTypes = map[string]string{
	"webm": "audio/webm",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
}

// SupportedLanguages lists the accepted language codes.
var SupportedLanguages = []string{"en-US", "en-GB", "es-US", "fr-FR", "de-DE"}

// MIMEType returns the content type for an audio format and whether it is supported.
func MIMEType(format string) (string, bool) {
	m, ok := mimeTypes[format]
	return m, ok
}

// SupportsLanguage reports whether code is an accepted language code.
func SupportsLanguage(code string) bool {
	return slices.Contains(SupportedLanguages, code)
}
