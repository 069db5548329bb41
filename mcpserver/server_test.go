package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mmcp"
)

// fakeClient lets each test script the multimodal calls a tool makes.
type fakeClient struct {
	analyze    func(req mmcp.AnalyzeImageRequest) (*mmcp.Analysis, error)
	generate   func(req mmcp.GenerateImageRequest) (*mmcp.GeneratedImage, error)
	transcribe func(req mmcp.TranscribeRequest) (*mmcp.Transcript, error)
	speech     func(req mmcp.SpeechRequest) (*mmcp.SpeechAudio, error)
}

var _ Multimodal = (*fakeClient)(nil)

func (f *fakeClient) AnalyzeImage(_ context.Context, req mmcp.AnalyzeImageRequest) (*mmcp.Analysis, error) {
	if f.analyze == nil {
		return nil, fmt.Errorf("fakeClient.AnalyzeImage not configured")
	}
	return f.analyze(req)
}

func (f *fakeClient) GenerateImage(_ context.Context, req mmcp.GenerateImageRequest) (*mmcp.GeneratedImage, error) {
	if f.generate == nil {
		return nil, fmt.Errorf("fakeClient.GenerateImage not configured")
	}
	return f.generate(req)
}

func (f *fakeClient) Transcribe(_ context.Context, req mmcp.TranscribeRequest) (*mmcp.Transcript, error) {
	if f.transcribe == nil {
		return nil, fmt.Errorf("fakeClient.Transcribe not configured")
	}
	return f.transcribe(req)
}

func (f *fakeClient) GenerateSpeech(_ context.Context, req mmcp.SpeechRequest) (*mmcp.SpeechAudio, error) {
	if f.speech == nil {
		return nil, fmt.Errorf("fakeClient.GenerateSpeech not configured")
	}
	return f.speech(req)
}

func newTestServer(t *testing.T, fc *fakeClient) *Server {
	t.Helper()
	s, err := New(Options{Client: fc, OutputDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// decodeResult unpacks the single JSON text part every tool returns.
func decodeResult(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content parts=%d", len(res.Content))
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content=%T", res.Content[0])
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(text.Text), &body); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	return body
}

func errorKind(t *testing.T, res *mcp.CallToolResult) (kind, message string) {
	t.Helper()
	if !res.IsError {
		t.Fatal("expected IsError")
	}
	body := decodeResult(t, res)
	e, _ := body["error"].(map[string]any)
	if e == nil {
		t.Fatalf("body=%#v", body)
	}
	kind, _ = e["kind"].(string)
	message, _ = e["message"].(string)
	return kind, message
}

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnalyzeImage_Result(t *testing.T) {
	fc := &fakeClient{
		analyze: func(req mmcp.AnalyzeImageRequest) (*mmcp.Analysis, error) {
			if string(req.ImageBytes) != "img-bytes" {
				return nil, fmt.Errorf("image=%q", req.ImageBytes)
			}
			if req.Instruction != "what animal" || req.Detail != "low" {
				return nil, fmt.Errorf("req=%#v", req)
			}
			return &mmcp.Analysis{Text: "a tabby cat", Duration: 1500 * time.Millisecond}, nil
		},
	}
	s := newTestServer(t, fc)

	res, _, err := s.analyzeImage(context.Background(), nil, analyzeImageArgs{
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("img-bytes")),
		Instruction: "what animal",
		Detail:      "low",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("res=%#v", decodeResult(t, res))
	}

	body := decodeResult(t, res)
	if body["text"] != "a tabby cat" {
		t.Fatalf("text=%v", body["text"])
	}
	if body["duration_ms"] != float64(1500) {
		t.Fatalf("duration_ms=%v", body["duration_ms"])
	}
	if _, ok := body["data"]; ok {
		t.Fatalf("data should be absent: %#v", body)
	}
}

func TestAnalyzeImage_JSONSchemaAndData(t *testing.T) {
	fc := &fakeClient{
		analyze: func(req mmcp.AnalyzeImageRequest) (*mmcp.Analysis, error) {
			if req.ResponseFormat != "json" {
				return nil, fmt.Errorf("format=%q", req.ResponseFormat)
			}
			var schema map[string]any
			if err := json.Unmarshal(req.JSONSchema, &schema); err != nil {
				return nil, fmt.Errorf("schema: %w", err)
			}
			if schema["type"] != "object" {
				return nil, fmt.Errorf("schema=%#v", schema)
			}
			return &mmcp.Analysis{
				Text: `{"animal":"cat"}`,
				Data: map[string]any{"animal": "cat"},
			}, nil
		},
	}
	s := newTestServer(t, fc)

	res, _, err := s.analyzeImage(context.Background(), nil, analyzeImageArgs{
		ImageBase64:    base64.StdEncoding.EncodeToString([]byte("x")),
		Instruction:    "classify",
		ResponseFormat: "json",
		JSONSchema:     map[string]any{"type": "object"},
	})
	if err != nil {
		t.Fatal(err)
	}

	body := decodeResult(t, res)
	data, _ := body["data"].(map[string]any)
	if data["animal"] != "cat" {
		t.Fatalf("data=%#v", body["data"])
	}
}

func TestAnalyzeImage_RejectsAmbiguousInput(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	res, _, err := s.analyzeImage(context.Background(), nil, analyzeImageArgs{
		ImagePath:   "/tmp/a.png",
		ImageBase64: "aGk=",
		Instruction: "what",
	})
	if err != nil {
		t.Fatal(err)
	}
	kind, message := errorKind(t, res)
	if kind != "invalid_argument" {
		t.Fatalf("kind=%q", kind)
	}
	if !strings.Contains(message, "exactly one") {
		t.Fatalf("message=%q", message)
	}
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", &mmcp.Error{Kind: mmcp.KindTimeout, Op: "vision", Message: "request timed out"}, "timeout"},
		{"invalid argument", &mmcp.Error{Kind: mmcp.KindInvalidArgument, Op: "vision", Message: "instruction is required"}, "invalid_argument"},
		{"provider", &mmcp.Error{Kind: mmcp.KindProviderError, Op: "vision", Message: "boom"}, "provider_error"},
		{"plain error", errors.New("unexpected"), "provider_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fc := &fakeClient{
				analyze: func(mmcp.AnalyzeImageRequest) (*mmcp.Analysis, error) { return nil, tc.err },
			}
			s := newTestServer(t, fc)

			res, _, err := s.analyzeImage(context.Background(), nil, analyzeImageArgs{
				ImageBase64: "aGk=",
				Instruction: "what",
			})
			if err != nil {
				t.Fatal(err)
			}
			kind, _ := errorKind(t, res)
			if kind != tc.want {
				t.Fatalf("kind=%q, want %q", kind, tc.want)
			}
		})
	}
}

func TestGenerateImage_SavesArtifact(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), "pixels"...)
	fc := &fakeClient{
		generate: func(req mmcp.GenerateImageRequest) (*mmcp.GeneratedImage, error) {
			if req.Prompt != "a lighthouse" || req.Size != "1024x1024" {
				return nil, fmt.Errorf("req=%#v", req)
			}
			return &mmcp.GeneratedImage{Bytes: png, Duration: 2 * time.Second}, nil
		},
	}
	s := newTestServer(t, fc)

	res, _, err := s.generateImage(context.Background(), nil, generateImageArgs{
		Prompt: "a lighthouse",
		Size:   "1024x1024",
	})
	if err != nil {
		t.Fatal(err)
	}

	body := decodeResult(t, res)
	path, _ := body["path"].(string)
	if !strings.HasSuffix(path, ".png") {
		t.Fatalf("path=%q", path)
	}
	if body["size_bytes"] != float64(len(png)) {
		t.Fatalf("size_bytes=%v", body["size_bytes"])
	}
	if body["duration_ms"] != float64(2000) {
		t.Fatalf("duration_ms=%v", body["duration_ms"])
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(png) {
		t.Fatalf("file=%q", got)
	}
}

func TestTranscribe_SegmentsAndPathInput(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(audioPath, []byte("wav-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	fc := &fakeClient{
		transcribe: func(req mmcp.TranscribeRequest) (*mmcp.Transcript, error) {
			if string(req.AudioBytes) != "wav-bytes" {
				return nil, fmt.Errorf("audio=%q", req.AudioBytes)
			}
			if !req.Timestamps {
				return nil, fmt.Errorf("timestamps not set")
			}
			return &mmcp.Transcript{
				Text:     "hello world",
				Segments: []mmcp.TranscriptSegment{{ID: 0, Start: 0, End: 1.5, Text: "hello world"}},
			}, nil
		},
	}
	s := newTestServer(t, fc)

	res, _, err := s.transcribe(context.Background(), nil, transcribeArgs{
		AudioPath:  audioPath,
		Timestamps: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	body := decodeResult(t, res)
	if body["text"] != "hello world" {
		t.Fatalf("text=%v", body["text"])
	}
	segments, _ := body["segments"].([]any)
	if len(segments) != 1 {
		t.Fatalf("segments=%#v", body["segments"])
	}
	seg := segments[0].(map[string]any)
	if seg["end"] != float64(1.5) || seg["text"] != "hello world" {
		t.Fatalf("segment=%#v", seg)
	}
}

func TestTranscribe_NoSegmentsKeyWithoutTimestamps(t *testing.T) {
	fc := &fakeClient{
		transcribe: func(req mmcp.TranscribeRequest) (*mmcp.Transcript, error) {
			return &mmcp.Transcript{Text: "hi"}, nil
		},
	}
	s := newTestServer(t, fc)

	res, _, err := s.transcribe(context.Background(), nil, transcribeArgs{AudioBase64: "aGk="})
	if err != nil {
		t.Fatal(err)
	}
	body := decodeResult(t, res)
	if _, ok := body["segments"]; ok {
		t.Fatalf("segments should be absent: %#v", body)
	}
}

func TestTextToSpeech_SavesWithDeclaredFormat(t *testing.T) {
	fc := &fakeClient{
		speech: func(req mmcp.SpeechRequest) (*mmcp.SpeechAudio, error) {
			if req.Text != "hello" || req.Voice != "nova" || req.Format != "wav" {
				return nil, fmt.Errorf("req=%#v", req)
			}
			return &mmcp.SpeechAudio{Bytes: []byte("wav-bytes"), MediaType: "audio/wav"}, nil
		},
	}
	s := newTestServer(t, fc)

	res, _, err := s.textToSpeech(context.Background(), nil, textToSpeechArgs{
		Text:   "hello",
		Voice:  "nova",
		Format: "wav",
	})
	if err != nil {
		t.Fatal(err)
	}

	body := decodeResult(t, res)
	path, _ := body["path"].(string)
	if !strings.HasSuffix(path, ".wav") {
		t.Fatalf("path=%q", path)
	}
	if body["media_type"] != "audio/wav" {
		t.Fatalf("media_type=%v", body["media_type"])
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

func TestTextToSpeech_HonorsOutputPath(t *testing.T) {
	fc := &fakeClient{
		speech: func(req mmcp.SpeechRequest) (*mmcp.SpeechAudio, error) {
			return &mmcp.SpeechAudio{Bytes: []byte("bytes"), MediaType: "audio/mpeg"}, nil
		},
	}
	s := newTestServer(t, fc)

	want := filepath.Join(t.TempDir(), "clips", "greeting.mp3")
	res, _, err := s.textToSpeech(context.Background(), nil, textToSpeechArgs{
		Text:       "hello",
		OutputPath: want,
	})
	if err != nil {
		t.Fatal(err)
	}
	body := decodeResult(t, res)
	if body["path"] != want {
		t.Fatalf("path=%v", body["path"])
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatal(err)
	}
}

func TestTextToSpeech_SniffsExtensionWhenFormatUnset(t *testing.T) {
	fc := &fakeClient{
		speech: func(req mmcp.SpeechRequest) (*mmcp.SpeechAudio, error) {
			return &mmcp.SpeechAudio{Bytes: []byte("ID3\x04tag"), MediaType: "audio/mpeg"}, nil
		},
	}
	s := newTestServer(t, fc)

	res, _, err := s.textToSpeech(context.Background(), nil, textToSpeechArgs{Text: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	body := decodeResult(t, res)
	path, _ := body["path"].(string)
	if !strings.HasSuffix(path, ".mp3") {
		t.Fatalf("path=%q", path)
	}
}
