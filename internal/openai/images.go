package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mmcp/internal/httpx"
	"mmcp/internal/provider"
)

// Output-format hints are deliberately absent: some models reject them, and
// the caller infers the format from the returned bytes.
type imagesRequest struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	Size       string `json:"size,omitempty"`
	Background string `json:"background,omitempty"`
	Quality    string `json:"quality,omitempty"`
}

type imagesResponse struct {
	Data []struct {
		B64JSON *string `json:"b64_json"`
		URL     *string `json:"url"`
	} `json:"data"`
}

func (p *Provider) GenerateImage(ctx context.Context, req provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
	body, err := json.Marshal(imagesRequest{
		Model:      req.Model,
		Prompt:     req.Prompt,
		Size:       req.Size,
		Background: req.Background,
		Quality:    req.Quality,
	})
	if err != nil {
		return provider.GenerateImageResponse{}, marshalError(opImage, err)
	}

	raw, _, elapsed, err := p.post(ctx, opImage, "/images/generations", "application/json", body)
	if err != nil {
		return provider.GenerateImageResponse{}, err
	}

	var out imagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return provider.GenerateImageResponse{}, decodeError(opImage, err)
	}

	// Some model families answer inline, others hand back a URL.
	var hasB64, hasURL bool
	var b64Val, urlVal string
	if len(out.Data) > 0 {
		d := out.Data[0]
		if d.B64JSON != nil && *d.B64JSON != "" {
			hasB64, b64Val = true, *d.B64JSON
		}
		if d.URL != nil && *d.URL != "" {
			hasURL, urlVal = true, *d.URL
		}
	}

	var img []byte
	switch {
	case hasB64:
		img, err = base64.StdEncoding.DecodeString(b64Val)
		if err != nil {
			return provider.GenerateImageResponse{}, decodeError(opImage, err)
		}
	case hasURL:
		img, err = p.fetchImage(ctx, urlVal)
		if err != nil {
			return provider.GenerateImageResponse{}, err
		}
	default:
		return provider.GenerateImageResponse{}, &provider.Error{
			Kind:     provider.KindProviderError,
			Provider: providerName,
			Op:       opImage,
			Code:     "invalid_response",
			Message:  fmt.Sprintf("no image data in response (b64_json=%t, url=%t)", hasB64, hasURL),
		}
	}

	return provider.GenerateImageResponse{Bytes: img, Duration: elapsed, RawResponse: raw}, nil
}

// fetchImage downloads a result URL under the fetch client's shorter
// timeout. The download is not part of the reported duration.
func (p *Provider) fetchImage(ctx context.Context, url string) ([]byte, error) {
	resp, err := httpx.Do(ctx, p.cfg.FetchClient, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, transportError(opImage, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, readError(opImage, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &provider.Error{
			Kind:      provider.KindProviderError,
			Provider:  providerName,
			Op:        opImage,
			Code:      "http_error",
			Status:    resp.StatusCode,
			Message:   fmt.Sprintf("image download failed with status %d", resp.StatusCode),
			Retryable: shouldRetryStatus(resp.StatusCode),
		}
	}
	return b, nil
}

var _ provider.ImageProvider = (*Provider)(nil)
