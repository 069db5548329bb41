package openai

import (
	"context"
	"encoding/json"

	"mmcp/internal/provider"
)

type speechRequest struct {
	Model          string   `json:"model"`
	Input          string   `json:"input"`
	Voice          string   `json:"voice"`
	ResponseFormat string   `json:"response_format,omitempty"`
	Speed          *float64 `json:"speed,omitempty"`
}

func (p *Provider) GenerateSpeech(ctx context.Context, req provider.SpeechRequest) (provider.SpeechResponse, error) {
	voice := req.Voice
	if voice == "" {
		voice = "alloy"
	}

	body, err := json.Marshal(speechRequest{
		Model:          req.Model,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: req.Format,
		Speed:          req.Speed,
	})
	if err != nil {
		return provider.SpeechResponse{}, marshalError(opTTS, err)
	}

	// The speech endpoint answers with the audio bytes themselves.
	raw, mediaType, elapsed, err := p.post(ctx, opTTS, "/audio/speech", "application/json", body)
	if err != nil {
		return provider.SpeechResponse{}, err
	}

	return provider.SpeechResponse{AudioBytes: raw, MediaType: mediaType, Duration: elapsed}, nil
}

var _ provider.SpeechProvider = (*Provider)(nil)
