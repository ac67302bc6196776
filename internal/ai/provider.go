// Package ai consumes transcription and translation as opaque text-producing
// services. The algorithms themselves live behind the provider APIs.
package ai

import "context"

// Transcriber turns an audio payload into text.
type Transcriber interface {
	// Transcribe returns the spoken text of the audio payload. filename
	// carries the extension the provider uses to detect the container.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)

	// Name returns the provider name (e.g. "openai").
	Name() string
}

// Translator renders text into a target language.
type Translator interface {
	// Translate returns text rendered in the language named by languageTag
	// (e.g. "es", "fr").
	Translate(ctx context.Context, text, languageTag string) (string, error)

	Name() string
}
