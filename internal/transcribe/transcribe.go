// Package transcribe converts recorded measurement audio into transcript
// text. Two backends are provided: an OpenRouter multimodal chat call and an
// OpenAI-compatible audio transcription endpoint.
package transcribe

import "context"

// Transcriber converts one audio recording into transcript text.
type Transcriber interface {
	// Transcribe returns the spoken text of the audio. mimeType describes the
	// recording container, e.g. "audio/webm".
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// audioFormat maps a recording MIME type to the format token transcription
// APIs expect. Unrecognized types fall back to wav.
func audioFormat(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/ogg", "audio/webm":
		return "ogg"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "m4a"
	}
	return "wav"
}
