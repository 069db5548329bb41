package provider

import (
	"context"
	"time"
)

type TranscriptionProvider interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (TranscribeResponse, error)
}

type TranscribeRequest struct {
	Model      string
	AudioBytes []byte

	Language string
	Prompt   string

	// Timestamps selects the verbose response representation and gates
	// whether segments are carried back at all.
	Timestamps bool
}

type TranscriptSegment struct {
	ID    int
	Start float64
	End   float64
	Text  string
}

type TranscribeResponse struct {
	Text     string
	Segments []TranscriptSegment

	Duration time.Duration

	RawResponse []byte
}

type SpeechProvider interface {
	GenerateSpeech(ctx context.Context, req SpeechRequest) (SpeechResponse, error)
}

type SpeechRequest struct {
	Model string
	Text  string

	Voice  string
	Format string
	Speed  *float64
}

type SpeechResponse struct {
	AudioBytes []byte
	MediaType  string

	Duration time.Duration
}
