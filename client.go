// Package mmcp is a client for an OpenAI-compatible multimodal provider. It
// exposes image analysis, image generation, transcription, and speech
// synthesis behind one request/response contract, with uniform retry and a
// fixed error taxonomy.
package mmcp

import (
	"net/http"
	"time"

	"mmcp/internal/openai"
	"mmcp/internal/provider"
	"mmcp/internal/retry"
)

const (
	opVision        = "vision"
	opImage         = "image"
	opTranscription = "transcription"
	opTTS           = "tts"
)

type Config struct {
	APIKey    string
	BaseURL   string
	APIPrefix string
	OrgID     string
	Project   string

	// Per-modality defaults, used when a request carries no model override.
	VisionModel     string
	ImageModel      string
	TranscribeModel string
	SpeechModel     string

	Headers map[string]string

	// HTTPClient overrides the built-in client. When nil, one is built with
	// Timeout as its deadline.
	HTTPClient *http.Client

	// Timeout is generous because image generation can run long.
	// FetchTimeout bounds the secondary download of a generated image URL.
	Timeout      time.Duration
	FetchTimeout time.Duration

	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

type Client struct {
	cfg      Config
	provider provider.Client
	retry    retry.Policy
}

// NewClient validates the credential and builds the client. No network
// traffic happens here.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &Error{Kind: KindInvalidArgument, Message: "api key is required"}
	}
	cfg = normalizeConfig(cfg)
	return &Client{
		cfg: cfg,
		provider: openai.New(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			APIPrefix:   cfg.APIPrefix,
			OrgID:       cfg.OrgID,
			Project:     cfg.Project,
			Headers:     cfg.Headers,
			HTTPClient:  cfg.HTTPClient,
			FetchClient: &http.Client{Timeout: cfg.FetchTimeout},
		}),
		retry: retry.Policy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.BaseBackoff,
			MaxDelay:   cfg.MaxBackoff,
			Retryable:  provider.Retryable,
		},
	}, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.BaseBackoff == 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 4 * time.Second
	}
	return cfg
}

// resolveModel applies the override-then-default rule before any I/O.
func (c *Client) resolveModel(override, configured, label string) (string, error) {
	if override != "" {
		return override, nil
	}
	if configured != "" {
		return configured, nil
	}
	return "", &Error{Kind: KindInvalidArgument, Op: label, Message: "model not configured for " + label}
}
