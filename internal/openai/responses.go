package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"mmcp/internal/provider"
)

type responsesRequest struct {
	Model           string          `json:"model"`
	Input           []messageInput  `json:"input"`
	MaxOutputTokens *int            `json:"max_output_tokens,omitempty"`
	ResponseFormat  *responseFormat `json:"response_format,omitempty"`
}

type messageInput struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

type responsesResponse struct {
	// OutputText is the convenience field; older models only populate the
	// nested output items.
	OutputText *string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (p *Provider) AnalyzeImage(ctx context.Context, req provider.AnalyzeRequest) (provider.AnalyzeResponse, error) {
	instruction := req.Instruction
	if req.Language != "" {
		instruction = "Respond in " + req.Language + ". " + instruction
	}

	image := contentPart{
		Type:        "input_image",
		ImageBase64: base64.StdEncoding.EncodeToString(req.ImageBytes),
		Detail:      req.Detail,
	}
	payload := responsesRequest{
		Model: req.Model,
		Input: []messageInput{{
			Role:    "user",
			Content: []contentPart{{Type: "input_text", Text: instruction}, image},
		}},
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.ResponseFormat == "json" {
		payload.ResponseFormat = &responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchema{Name: "image_analysis", Schema: req.Schema, Strict: true},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return provider.AnalyzeResponse{}, marshalError(opVision, err)
	}

	raw, _, elapsed, err := p.post(ctx, opVision, "/responses", "application/json", body)
	if err != nil {
		return provider.AnalyzeResponse{}, err
	}

	var out responsesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return provider.AnalyzeResponse{}, decodeError(opVision, err)
	}
	text, ok := outputText(out)
	if !ok {
		return provider.AnalyzeResponse{}, &provider.Error{
			Kind:     provider.KindProviderError,
			Provider: providerName,
			Op:       opVision,
			Code:     "invalid_response",
			Message:  "response has no output text",
		}
	}
	return provider.AnalyzeResponse{Text: text, Duration: elapsed, RawResponse: raw}, nil
}

func outputText(r responsesResponse) (string, bool) {
	if r.OutputText != nil {
		return *r.OutputText, true
	}
	if len(r.Output) > 0 && len(r.Output[0].Content) > 0 {
		return r.Output[0].Content[0].Text, true
	}
	return "", false
}

var _ provider.VisionProvider = (*Provider)(nil)
