package provider

import (
	"context"
	"time"
)

type ImageProvider interface {
	GenerateImage(ctx context.Context, req GenerateImageRequest) (GenerateImageResponse, error)
}

type GenerateImageRequest struct {
	Model  string
	Prompt string

	Size       string
	Background string
	Quality    string
}

type GenerateImageResponse struct {
	// Bytes holds the decoded image, whether it arrived inline or was
	// fetched from a result URL.
	Bytes []byte

	Duration time.Duration

	RawResponse []byte
}
