package mmcp

import (
	"context"
	"encoding/json"
	"time"

	"mmcp/internal/provider"
	"mmcp/internal/retry"
	"mmcp/internal/schema"
)

type AnalyzeImageRequest struct {
	ImageBytes  []byte
	Instruction string

	Model string

	// ResponseFormat selects "text" (default) or "json". JSON output
	// requires JSONSchema and the model is held to it strictly.
	ResponseFormat string
	JSONSchema     json.RawMessage

	MaxOutputTokens *int

	// Detail is the provider's image fidelity hint ("low", "high", "auto").
	Detail string

	// Language, when set, asks the model to answer in that language.
	Language string
}

type Analysis struct {
	Text string

	// Data holds the parsed object when JSON output was requested.
	Data map[string]any

	Duration time.Duration
}

// AnalyzeImage sends one image with an instruction to the vision model and
// returns the model's answer. With ResponseFormat "json" the answer is also
// parsed and checked against JSONSchema.
func (c *Client) AnalyzeImage(ctx context.Context, req AnalyzeImageRequest) (*Analysis, error) {
	if len(req.ImageBytes) == 0 {
		return nil, &Error{Kind: KindInvalidArgument, Op: opVision, Message: "image bytes are required"}
	}
	if req.Instruction == "" {
		return nil, &Error{Kind: KindInvalidArgument, Op: opVision, Message: "instruction is required"}
	}
	format := req.ResponseFormat
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		return nil, &Error{Kind: KindInvalidArgument, Op: opVision, Message: `response format must be "text" or "json"`}
	}
	if format == "json" {
		if len(req.JSONSchema) == 0 {
			return nil, &Error{Kind: KindInvalidArgument, Op: opVision, Message: "json_schema is required for JSON responses"}
		}
		if err := schema.Compile(req.JSONSchema); err != nil {
			return nil, &Error{Kind: KindInvalidArgument, Op: opVision, Message: "invalid json_schema: " + err.Error(), Cause: err}
		}
	}
	model, err := c.resolveModel(req.Model, c.cfg.VisionModel, opVision)
	if err != nil {
		return nil, err
	}

	preq := provider.AnalyzeRequest{
		Model:           model,
		ImageBytes:      req.ImageBytes,
		Instruction:     req.Instruction,
		ResponseFormat:  format,
		Schema:          req.JSONSchema,
		MaxOutputTokens: req.MaxOutputTokens,
		Detail:          req.Detail,
		Language:        req.Language,
	}
	out, err := retry.Do(ctx, c.retry, func(ctx context.Context) (provider.AnalyzeResponse, error) {
		return c.provider.AnalyzeImage(ctx, preq)
	})
	if err != nil {
		return nil, mapProviderError(opVision, err)
	}

	a := &Analysis{Text: out.Text, Duration: out.Duration}
	if format == "json" {
		var data map[string]any
		if err := json.Unmarshal([]byte(out.Text), &data); err != nil {
			return nil, &Error{Kind: KindProviderError, Op: opVision, Message: "model output was not valid JSON", Cause: err}
		}
		if err := schema.Validate(req.JSONSchema, []byte(out.Text)); err != nil {
			return nil, &Error{Kind: KindProviderError, Op: opVision, Message: "model output does not match json_schema: " + err.Error(), Cause: err}
		}
		a.Data = data
	}
	return a, nil
}
