package mmcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mmcp/internal/provider"
	"mmcp/internal/retry"
)

// fakeProvider implements provider.Client with per-operation hooks. Each
// hook receives the zero-based call number for its operation.
type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int

	analyze    func(call int, req provider.AnalyzeRequest) (provider.AnalyzeResponse, error)
	generate   func(call int, req provider.GenerateImageRequest) (provider.GenerateImageResponse, error)
	transcribe func(call int, req provider.TranscribeRequest) (provider.TranscribeResponse, error)
	speech     func(call int, req provider.SpeechRequest) (provider.SpeechResponse, error)
}

var _ provider.Client = (*fakeProvider)(nil)

func (p *fakeProvider) next(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = map[string]int{}
	}
	n := p.calls[name]
	p.calls[name] = n + 1
	return n
}

func (p *fakeProvider) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *fakeProvider) AnalyzeImage(ctx context.Context, req provider.AnalyzeRequest) (provider.AnalyzeResponse, error) {
	_ = ctx
	call := p.next("AnalyzeImage")
	if p.analyze == nil {
		return provider.AnalyzeResponse{}, fmt.Errorf("fakeProvider.AnalyzeImage not configured")
	}
	return p.analyze(call, req)
}

func (p *fakeProvider) GenerateImage(ctx context.Context, req provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
	_ = ctx
	call := p.next("GenerateImage")
	if p.generate == nil {
		return provider.GenerateImageResponse{}, fmt.Errorf("fakeProvider.GenerateImage not configured")
	}
	return p.generate(call, req)
}

func (p *fakeProvider) Transcribe(ctx context.Context, req provider.TranscribeRequest) (provider.TranscribeResponse, error) {
	_ = ctx
	call := p.next("Transcribe")
	if p.transcribe == nil {
		return provider.TranscribeResponse{}, fmt.Errorf("fakeProvider.Transcribe not configured")
	}
	return p.transcribe(call, req)
}

func (p *fakeProvider) GenerateSpeech(ctx context.Context, req provider.SpeechRequest) (provider.SpeechResponse, error) {
	_ = ctx
	call := p.next("GenerateSpeech")
	if p.speech == nil {
		return provider.SpeechResponse{}, fmt.Errorf("fakeProvider.GenerateSpeech not configured")
	}
	return p.speech(call, req)
}

// newTestClient wires a client straight to fp with millisecond backoff so
// retry tests stay fast.
func newTestClient(fp provider.Client) *Client {
	return &Client{
		cfg: normalizeConfig(Config{
			APIKey:          "test-key",
			VisionModel:     "vision-model",
			ImageModel:      "image-model",
			TranscribeModel: "stt-model",
			SpeechModel:     "tts-model",
		}),
		provider: fp,
		retry: retry.Policy{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   4 * time.Millisecond,
			Retryable:  provider.Retryable,
		},
	}
}

func transientError(op string) *provider.Error {
	return &provider.Error{
		Kind:      provider.KindProviderError,
		Provider:  "openai",
		Op:        op,
		Code:      "http_error",
		Status:    500,
		Message:   "upstream unavailable",
		Retryable: true,
	}
}
