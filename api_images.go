package mmcp

import (
	"context"
	"time"

	"mmcp/internal/provider"
	"mmcp/internal/retry"
)

type GenerateImageRequest struct {
	Prompt string
	Model  string

	// Size, Background and Quality are passed through verbatim when set and
	// omitted from the wire request otherwise, leaving the provider's
	// defaults in charge.
	Size       string
	Background string
	Quality    string
}

type GeneratedImage struct {
	// Bytes is the decoded image, regardless of whether the provider
	// answered inline or with a download URL.
	Bytes    []byte
	Duration time.Duration
}

// GenerateImage renders an image from a text prompt.
func (c *Client) GenerateImage(ctx context.Context, req GenerateImageRequest) (*GeneratedImage, error) {
	if req.Prompt == "" {
		return nil, &Error{Kind: KindInvalidArgument, Op: opImage, Message: "prompt is required"}
	}
	model, err := c.resolveModel(req.Model, c.cfg.ImageModel, opImage)
	if err != nil {
		return nil, err
	}

	preq := provider.GenerateImageRequest{
		Model:      model,
		Prompt:     req.Prompt,
		Size:       req.Size,
		Background: req.Background,
		Quality:    req.Quality,
	}
	out, err := retry.Do(ctx, c.retry, func(ctx context.Context) (provider.GenerateImageResponse, error) {
		return c.provider.GenerateImage(ctx, preq)
	})
	if err != nil {
		return nil, mapProviderError(opImage, err)
	}
	return &GeneratedImage{Bytes: out.Bytes, Duration: out.Duration}, nil
}
