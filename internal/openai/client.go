// Package openai speaks the provider wire protocol: it shapes one payload
// per operation, issues a single attempt per call, and normalizes the
// provider's uneven response shapes into the neutral types.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"mmcp/internal/httpx"
	"mmcp/internal/provider"
)

const providerName = "openai"

// Operation labels, used both for model resolution messages and for error
// traceability.
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
	Headers   map[string]string

	// HTTPClient carries the primary call timeout. FetchClient bounds the
	// secondary image download, which is allowed far less time.
	HTTPClient  *http.Client
	FetchClient *http.Client
}

type Provider struct {
	cfg Config
}

func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/v1"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.FetchClient == nil {
		cfg.FetchClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Provider{cfg: cfg}
}

var _ provider.Client = (*Provider)(nil)

func (p *Provider) endpoint(path string) string {
	base := strings.TrimRight(p.cfg.BaseURL, "/")
	prefix := strings.TrimRight(p.cfg.APIPrefix, "/")
	return base + prefix + path
}

func (p *Provider) headers() http.Header {
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+p.cfg.APIKey)
	if p.cfg.OrgID != "" {
		h.Set("OpenAI-Organization", p.cfg.OrgID)
	}
	if p.cfg.Project != "" {
		h.Set("OpenAI-Project", p.cfg.Project)
	}
	for k, v := range p.cfg.Headers {
		h.Set(k, v)
	}
	return h
}

// post issues one attempt and returns the raw body, the response content
// type, and the elapsed network window (request sent to body fully read).
func (p *Provider) post(ctx context.Context, op, path, contentType string, body []byte) ([]byte, string, time.Duration, error) {
	h := p.headers()
	h.Set("Content-Type", contentType)

	started := time.Now()
	resp, err := httpx.Do(ctx, p.cfg.HTTPClient, http.MethodPost, p.endpoint(path), body, h)
	if err != nil {
		return nil, "", 0, transportError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", 0, readError(op, err)
	}
	elapsed := time.Since(started)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", 0, apiError(op, resp.StatusCode, raw)
	}
	return raw, resp.Header.Get("Content-Type"), elapsed, nil
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func apiError(op string, status int, body []byte) *provider.Error {
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
		return &provider.Error{
			Kind:      provider.KindProviderError,
			Provider:  providerName,
			Op:        op,
			Code:      stringifyCode(er.Error.Code, er.Error.Type),
			Status:    status,
			Message:   er.Error.Message,
			Retryable: shouldRetryStatus(status),
		}
	}
	return &provider.Error{
		Kind:      provider.KindProviderError,
		Provider:  providerName,
		Op:        op,
		Code:      "http_error",
		Status:    status,
		Message:   strings.TrimSpace(string(body)),
		Retryable: shouldRetryStatus(status),
	}
}

func transportError(op string, err error) *provider.Error {
	kind, code, retryable := classifyNetworkErr(err)
	msg := err.Error()
	if kind == provider.KindTimeout {
		msg = "request timed out: " + err.Error()
	}
	return &provider.Error{
		Kind:      kind,
		Provider:  providerName,
		Op:        op,
		Code:      code,
		Message:   msg,
		Retryable: retryable,
		Cause:     err,
	}
}

func marshalError(op string, err error) *provider.Error {
	return &provider.Error{Kind: provider.KindProviderError, Provider: providerName, Op: op, Code: "marshal_error", Message: err.Error(), Retryable: false, Cause: err}
}

func requestError(op string, err error) *provider.Error {
	return &provider.Error{Kind: provider.KindProviderError, Provider: providerName, Op: op, Code: "request_error", Message: err.Error(), Retryable: false, Cause: err}
}

func readError(op string, err error) *provider.Error {
	return &provider.Error{Kind: provider.KindProviderError, Provider: providerName, Op: op, Code: "read_error", Message: err.Error(), Retryable: true, Cause: err}
}

func decodeError(op string, err error) *provider.Error {
	return &provider.Error{Kind: provider.KindProviderError, Provider: providerName, Op: op, Code: "decode_error", Message: err.Error(), Retryable: false, Cause: err}
}

func shouldRetryStatus(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusConflict ||
		status == http.StatusTooManyRequests ||
		(status >= 500 && status <= 599)
}

func classifyNetworkErr(err error) (provider.Kind, string, bool) {
	if errors.Is(err, context.Canceled) {
		return provider.KindProviderError, "canceled", false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return provider.KindTimeout, "timeout", true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return provider.KindTimeout, "timeout", true
	}
	return provider.KindProviderError, "network_error", true
}

func stringifyCode(code any, fallback string) string {
	if v, ok := code.(string); ok && v != "" {
		return v
	}
	if fallback != "" {
		return fallback
	}
	return "unknown"
}
