package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"

	"mmcp/internal/provider"
)

// transcriptionResponse covers both the plain and the verbose representation;
// segments only appear in the latter.
type transcriptionResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (p *Provider) Transcribe(ctx context.Context, req provider.TranscribeRequest) (provider.TranscribeResponse, error) {
	responseFormat := "json"
	if req.Timestamps {
		responseFormat = "verbose_json"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("model", req.Model)
	if req.Language != "" {
		_ = w.WriteField("language", req.Language)
	}
	if req.Prompt != "" {
		_ = w.WriteField("prompt", req.Prompt)
	}
	_ = w.WriteField("response_format", responseFormat)

	// The filename is synthetic; the provider only needs a named part.
	part, err := w.CreateFormFile("file", "audio")
	if err != nil {
		return provider.TranscribeResponse{}, requestError(opTranscription, err)
	}
	if _, err := io.Copy(part, bytes.NewReader(req.AudioBytes)); err != nil {
		return provider.TranscribeResponse{}, requestError(opTranscription, err)
	}
	_ = w.Close()

	raw, _, elapsed, err := p.post(ctx, opTranscription, "/audio/transcriptions", w.FormDataContentType(), body.Bytes())
	if err != nil {
		return provider.TranscribeResponse{}, err
	}

	var out transcriptionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return provider.TranscribeResponse{}, decodeError(opTranscription, err)
	}

	resp := provider.TranscribeResponse{Text: out.Text, Duration: elapsed, RawResponse: raw}
	if req.Timestamps && len(out.Segments) > 0 {
		resp.Segments = make([]provider.TranscriptSegment, len(out.Segments))
		for i, s := range out.Segments {
			resp.Segments[i] = provider.TranscriptSegment{ID: s.ID, Start: s.Start, End: s.End, Text: s.Text}
		}
	}
	return resp, nil
}

var _ provider.TranscriptionProvider = (*Provider)(nil)
