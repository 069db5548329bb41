package provider

import (
	"context"
	"encoding/json"
	"time"
)

type VisionProvider interface {
	AnalyzeImage(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error)
}

type AnalyzeRequest struct {
	Model       string
	ImageBytes  []byte
	Instruction string

	// ResponseFormat is "text" or "json". When "json", Schema carries the
	// strict output schema sent with the request.
	ResponseFormat string
	Schema         json.RawMessage

	MaxOutputTokens *int
	Detail          string
	Language        string
}

type AnalyzeResponse struct {
	Text string

	// Duration covers the network window of the successful attempt only.
	Duration time.Duration

	RawResponse []byte
}
