package mmcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"mmcp/internal/provider"
)

func TestTranscribe_Success(t *testing.T) {
	fp := &fakeProvider{}
	fp.transcribe = func(call int, req provider.TranscribeRequest) (provider.TranscribeResponse, error) {
		_ = call
		if req.Model != "stt-model" {
			t.Fatalf("model=%q", req.Model)
		}
		if string(req.AudioBytes) != "audio" || req.Language != "en" || req.Prompt != "names" || !req.Timestamps {
			t.Fatalf("req=%#v", req)
		}
		return provider.TranscribeResponse{
			Text:     "hello world",
			Segments: []provider.TranscriptSegment{{ID: 0, Start: 0, End: 1.5, Text: "hello world"}},
			Duration: 900 * time.Millisecond,
		}, nil
	}
	c := newTestClient(fp)

	out, err := c.Transcribe(context.Background(), TranscribeRequest{
		AudioBytes: []byte("audio"),
		Language:   "en",
		Prompt:     "names",
		Timestamps: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "hello world" || out.Duration != 900*time.Millisecond {
		t.Fatalf("out=%#v", out)
	}
	if len(out.Segments) != 1 || out.Segments[0].End != 1.5 || out.Segments[0].Text != "hello world" {
		t.Fatalf("segments=%#v", out.Segments)
	}
}

func TestTranscribe_RequiresAudio(t *testing.T) {
	fp := &fakeProvider{}
	c := newTestClient(fp)

	_, err := c.Transcribe(context.Background(), TranscribeRequest{})
	if !IsInvalidArgument(err) || !strings.Contains(err.Error(), "audio bytes are required") {
		t.Fatalf("err=%v", err)
	}
	if n := fp.count("Transcribe"); n != 0 {
		t.Fatalf("provider calls=%d", n)
	}
}

func TestTranscribe_RetriesThenMapsTimeout(t *testing.T) {
	fp := &fakeProvider{}
	fp.transcribe = func(call int, req provider.TranscribeRequest) (provider.TranscribeResponse, error) {
		_, _ = call, req
		return provider.TranscribeResponse{}, &provider.Error{
			Kind:      provider.KindTimeout,
			Provider:  "openai",
			Op:        "transcription",
			Code:      "timeout",
			Message:   "request timed out: context deadline exceeded",
			Retryable: true,
		}
	}
	c := newTestClient(fp)

	_, err := c.Transcribe(context.Background(), TranscribeRequest{AudioBytes: []byte("a")})
	if !IsTimeout(err) {
		t.Fatalf("err=%v", err)
	}
	if n := fp.count("Transcribe"); n != 3 {
		t.Fatalf("calls=%d", n)
	}
}

func TestGenerateSpeech_Success(t *testing.T) {
	fp := &fakeProvider{}
	speed := 1.25
	fp.speech = func(call int, req provider.SpeechRequest) (provider.SpeechResponse, error) {
		_ = call
		if req.Model != "tts-model" || req.Text != "hi" || req.Voice != "nova" || req.Format != "wav" {
			t.Fatalf("req=%#v", req)
		}
		if req.Speed == nil || *req.Speed != 1.25 {
			t.Fatalf("speed=%v", req.Speed)
		}
		return provider.SpeechResponse{AudioBytes: []byte{1, 2, 3}, MediaType: "audio/wav", Duration: time.Second}, nil
	}
	c := newTestClient(fp)

	out, err := c.GenerateSpeech(context.Background(), SpeechRequest{
		Text:   "hi",
		Voice:  "nova",
		Format: "wav",
		Speed:  &speed,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Bytes) != 3 || out.MediaType != "audio/wav" || out.Duration != time.Second {
		t.Fatalf("out=%#v", out)
	}
}

func TestGenerateSpeech_DefaultMediaType(t *testing.T) {
	fp := &fakeProvider{}
	fp.speech = func(call int, req provider.SpeechRequest) (provider.SpeechResponse, error) {
		_, _ = call, req
		return provider.SpeechResponse{AudioBytes: []byte("mp3")}, nil
	}
	c := newTestClient(fp)

	out, err := c.GenerateSpeech(context.Background(), SpeechRequest{Text: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if out.MediaType != "audio/mpeg" {
		t.Fatalf("MediaType=%q", out.MediaType)
	}
}

func TestGenerateSpeech_RequiresText(t *testing.T) {
	fp := &fakeProvider{}
	c := newTestClient(fp)

	_, err := c.GenerateSpeech(context.Background(), SpeechRequest{})
	if !IsInvalidArgument(err) || !strings.Contains(err.Error(), "text is required") {
		t.Fatalf("err=%v", err)
	}
	if n := fp.count("GenerateSpeech"); n != 0 {
		t.Fatalf("provider calls=%d", n)
	}
}
