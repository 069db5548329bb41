package mmcp

import (
	"context"
	"time"

	"mmcp/internal/provider"
	"mmcp/internal/retry"
)

type TranscribeRequest struct {
	AudioBytes []byte
	Model      string

	// Language is an ISO-639-1 hint for the recognizer.
	Language string

	// Prompt biases the recognizer toward expected vocabulary.
	Prompt string

	// Timestamps asks for per-segment timing. It switches the provider to
	// its verbose response shape.
	Timestamps bool
}

type TranscriptSegment struct {
	ID    int
	Start float64
	End   float64
	Text  string
}

type Transcript struct {
	Text string

	// Segments is populated only when timestamps were requested.
	Segments []TranscriptSegment

	Duration time.Duration
}

type SpeechRequest struct {
	Text  string
	Model string

	// Voice defaults to the provider's stock voice when empty.
	Voice string

	// Format selects the audio container (for example "mp3" or "wav").
	// Empty leaves the provider default in place.
	Format string

	Speed *float64
}

type SpeechAudio struct {
	Bytes     []byte
	MediaType string
	Duration  time.Duration
}

// Transcribe converts spoken audio to text.
func (c *Client) Transcribe(ctx context.Context, req TranscribeRequest) (*Transcript, error) {
	if len(req.AudioBytes) == 0 {
		return nil, &Error{Kind: KindInvalidArgument, Op: opTranscription, Message: "audio bytes are required"}
	}
	model, err := c.resolveModel(req.Model, c.cfg.TranscribeModel, opTranscription)
	if err != nil {
		return nil, err
	}

	preq := provider.TranscribeRequest{
		Model:      model,
		AudioBytes: req.AudioBytes,
		Language:   req.Language,
		Prompt:     req.Prompt,
		Timestamps: req.Timestamps,
	}
	out, err := retry.Do(ctx, c.retry, func(ctx context.Context) (provider.TranscribeResponse, error) {
		return c.provider.Transcribe(ctx, preq)
	})
	if err != nil {
		return nil, mapProviderError(opTranscription, err)
	}

	t := &Transcript{Text: out.Text, Duration: out.Duration}
	if len(out.Segments) > 0 {
		t.Segments = make([]TranscriptSegment, len(out.Segments))
		for i, s := range out.Segments {
			t.Segments[i] = TranscriptSegment{ID: s.ID, Start: s.Start, End: s.End, Text: s.Text}
		}
	}
	return t, nil
}

// GenerateSpeech synthesizes spoken audio from text.
func (c *Client) GenerateSpeech(ctx context.Context, req SpeechRequest) (*SpeechAudio, error) {
	if req.Text == "" {
		return nil, &Error{Kind: KindInvalidArgument, Op: opTTS, Message: "text is required"}
	}
	model, err := c.resolveModel(req.Model, c.cfg.SpeechModel, opTTS)
	if err != nil {
		return nil, err
	}

	preq := provider.SpeechRequest{
		Model:  model,
		Text:   req.Text,
		Voice:  req.Voice,
		Format: req.Format,
		Speed:  req.Speed,
	}
	out, err := retry.Do(ctx, c.retry, func(ctx context.Context) (provider.SpeechResponse, error) {
		return c.provider.GenerateSpeech(ctx, preq)
	})
	if err != nil {
		return nil, mapProviderError(opTTS, err)
	}

	mediaType := out.MediaType
	if mediaType == "" {
		mediaType = "audio/mpeg"
	}
	return &SpeechAudio{Bytes: out.AudioBytes, MediaType: mediaType, Duration: out.Duration}, nil
}
