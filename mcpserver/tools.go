package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"mmcp"
	"mmcp/internal/fileio"
)

var analyzeImageTool = &mcp.Tool{
	Name:        "analyze_image",
	Description: "Analyze an image with a vision model. Provide the image as exactly one of image_path, image_base64, or image_url.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"image_path":        {Type: "string", Description: "Filesystem path of the image."},
			"image_base64":      {Type: "string", Description: "Base64-encoded image bytes."},
			"image_url":         {Type: "string", Description: "URL to download the image from."},
			"instruction":       {Type: "string", Description: "What to describe or answer about the image."},
			"response_format":   {Type: "string", Enum: []any{"text", "json"}, Description: "Plain text (default) or JSON matching json_schema."},
			"json_schema":       {Type: "object", Description: "JSON Schema the model output must satisfy. Required when response_format is \"json\"."},
			"max_output_tokens": {Type: "integer", Description: "Cap on response tokens."},
			"detail":            {Type: "string", Enum: []any{"low", "high", "auto"}, Description: "Image fidelity hint."},
			"language":          {Type: "string", Description: "Language the answer should be written in."},
			"model":             {Type: "string", Description: "Override the configured vision model."},
		},
		Required: []string{"instruction"},
	},
}

type analyzeImageArgs struct {
	ImagePath       string         `json:"image_path,omitempty"`
	ImageBase64     string         `json:"image_base64,omitempty"`
	ImageURL        string         `json:"image_url,omitempty"`
	Instruction     string         `json:"instruction"`
	ResponseFormat  string         `json:"response_format,omitempty"`
	JSONSchema      map[string]any `json:"json_schema,omitempty"`
	MaxOutputTokens *int           `json:"max_output_tokens,omitempty"`
	Detail          string         `json:"detail,omitempty"`
	Language        string         `json:"language,omitempty"`
	Model           string         `json:"model,omitempty"`
}

func (s *Server) analyzeImage(ctx context.Context, _ *mcp.CallToolRequest, args analyzeImageArgs) (*mcp.CallToolResult, any, error) {
	image, err := fileio.ResolveInput(ctx, s.fetch, "image", args.ImagePath, args.ImageBase64, args.ImageURL)
	if err != nil {
		return badInput("analyze_image", err), nil, nil
	}

	var schemaRaw json.RawMessage
	if len(args.JSONSchema) > 0 {
		schemaRaw, err = json.Marshal(args.JSONSchema)
		if err != nil {
			return badInput("analyze_image", err), nil, nil
		}
	}

	out, err := s.client.AnalyzeImage(ctx, mmcp.AnalyzeImageRequest{
		ImageBytes:      image,
		Instruction:     args.Instruction,
		Model:           args.Model,
		ResponseFormat:  args.ResponseFormat,
		JSONSchema:      schemaRaw,
		MaxOutputTokens: args.MaxOutputTokens,
		Detail:          args.Detail,
		Language:        args.Language,
	})
	if err != nil {
		log.Error().Err(err).Str("tool", "analyze_image").Msg("tool failed")
		return errorResult(err), nil, nil
	}

	log.Debug().Str("tool", "analyze_image").Dur("duration", out.Duration).Msg("image analyzed")
	res := map[string]any{"text": out.Text, "duration_ms": out.Duration.Milliseconds()}
	if out.Data != nil {
		res["data"] = out.Data
	}
	return jsonResult(res), nil, nil
}

var generateImageTool = &mcp.Tool{
	Name:        "generate_image",
	Description: "Generate an image from a text prompt and save it in the output directory.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"prompt":      {Type: "string", Description: "What the image should show."},
			"size":        {Type: "string", Description: "Image dimensions, for example \"1024x1024\" or \"auto\"."},
			"background":  {Type: "string", Enum: []any{"transparent", "opaque", "auto"}, Description: "Background treatment."},
			"quality":     {Type: "string", Description: "Rendering quality, for example \"low\", \"medium\", or \"high\"."},
			"output_path": {Type: "string", Description: "Explicit file path for the image. Defaults to a generated name in the output directory."},
			"model":       {Type: "string", Description: "Override the configured image model."},
		},
		Required: []string{"prompt"},
	},
}

type generateImageArgs struct {
	Prompt     string `json:"prompt"`
	Size       string `json:"size,omitempty"`
	Background string `json:"background,omitempty"`
	Quality    string `json:"quality,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	Model      string `json:"model,omitempty"`
}

func (s *Server) generateImage(ctx context.Context, _ *mcp.CallToolRequest, args generateImageArgs) (*mcp.CallToolResult, any, error) {
	out, err := s.client.GenerateImage(ctx, mmcp.GenerateImageRequest{
		Prompt:     args.Prompt,
		Model:      args.Model,
		Size:       args.Size,
		Background: args.Background,
		Quality:    args.Quality,
	})
	if err != nil {
		log.Error().Err(err).Str("tool", "generate_image").Msg("tool failed")
		return errorResult(err), nil, nil
	}

	path := args.OutputPath
	if path != "" {
		err = fileio.SaveAt(path, out.Bytes)
	} else {
		path, err = s.writer.Save("image", "", out.Bytes)
	}
	if err != nil {
		log.Error().Err(err).Str("tool", "generate_image").Msg("save failed")
		return errorResult(err), nil, nil
	}

	log.Info().Str("tool", "generate_image").Str("path", path).Int("size", len(out.Bytes)).Dur("duration", out.Duration).Msg("image saved")
	return jsonResult(map[string]any{
		"path":        path,
		"size_bytes":  len(out.Bytes),
		"duration_ms": out.Duration.Milliseconds(),
	}), nil, nil
}

var transcribeTool = &mcp.Tool{
	Name:        "transcribe_audio",
	Description: "Transcribe spoken audio to text. Provide the audio as exactly one of audio_path, audio_base64, or audio_url.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"audio_path":   {Type: "string", Description: "Filesystem path of the audio file."},
			"audio_base64": {Type: "string", Description: "Base64-encoded audio bytes."},
			"audio_url":    {Type: "string", Description: "URL to download the audio from."},
			"language":     {Type: "string", Description: "ISO-639-1 hint for the spoken language."},
			"prompt":       {Type: "string", Description: "Vocabulary hint for the recognizer."},
			"timestamps":   {Type: "boolean", Description: "Include per-segment timing."},
			"model":        {Type: "string", Description: "Override the configured transcription model."},
		},
	},
}

type transcribeArgs struct {
	AudioPath   string `json:"audio_path,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	AudioURL    string `json:"audio_url,omitempty"`
	Language    string `json:"language,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Timestamps  bool   `json:"timestamps,omitempty"`
	Model       string `json:"model,omitempty"`
}

func (s *Server) transcribe(ctx context.Context, _ *mcp.CallToolRequest, args transcribeArgs) (*mcp.CallToolResult, any, error) {
	audio, err := fileio.ResolveInput(ctx, s.fetch, "audio", args.AudioPath, args.AudioBase64, args.AudioURL)
	if err != nil {
		return badInput("transcribe_audio", err), nil, nil
	}

	out, err := s.client.Transcribe(ctx, mmcp.TranscribeRequest{
		AudioBytes: audio,
		Model:      args.Model,
		Language:   args.Language,
		Prompt:     args.Prompt,
		Timestamps: args.Timestamps,
	})
	if err != nil {
		log.Error().Err(err).Str("tool", "transcribe_audio").Msg("tool failed")
		return errorResult(err), nil, nil
	}

	log.Debug().Str("tool", "transcribe_audio").Dur("duration", out.Duration).Msg("audio transcribed")
	res := map[string]any{"text": out.Text, "duration_ms": out.Duration.Milliseconds()}
	if len(out.Segments) > 0 {
		segments := make([]map[string]any, len(out.Segments))
		for i, seg := range out.Segments {
			segments[i] = map[string]any{"id": seg.ID, "start": seg.Start, "end": seg.End, "text": seg.Text}
		}
		res["segments"] = segments
	}
	return jsonResult(res), nil, nil
}

var textToSpeechTool = &mcp.Tool{
	Name:        "text_to_speech",
	Description: "Synthesize speech from text and save the audio in the output directory.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text":        {Type: "string", Description: "Text to speak."},
			"voice":       {Type: "string", Description: "Voice name, for example \"alloy\"."},
			"format":      {Type: "string", Enum: []any{"mp3", "opus", "aac", "flac", "wav", "pcm"}, Description: "Audio container."},
			"speed":       {Type: "number", Description: "Playback speed between 0.25 and 4.0."},
			"output_path": {Type: "string", Description: "Explicit file path for the audio. Defaults to a generated name in the output directory."},
			"model":       {Type: "string", Description: "Override the configured speech model."},
		},
		Required: []string{"text"},
	},
}

type textToSpeechArgs struct {
	Text       string   `json:"text"`
	Voice      string   `json:"voice,omitempty"`
	Format     string   `json:"format,omitempty"`
	Speed      *float64 `json:"speed,omitempty"`
	OutputPath string   `json:"output_path,omitempty"`
	Model      string   `json:"model,omitempty"`
}

func (s *Server) textToSpeech(ctx context.Context, _ *mcp.CallToolRequest, args textToSpeechArgs) (*mcp.CallToolResult, any, error) {
	out, err := s.client.GenerateSpeech(ctx, mmcp.SpeechRequest{
		Text:   args.Text,
		Model:  args.Model,
		Voice:  args.Voice,
		Format: args.Format,
		Speed:  args.Speed,
	})
	if err != nil {
		log.Error().Err(err).Str("tool", "text_to_speech").Msg("tool failed")
		return errorResult(err), nil, nil
	}

	path := args.OutputPath
	if path != "" {
		err = fileio.SaveAt(path, out.Bytes)
	} else {
		path, err = s.writer.Save("speech", args.Format, out.Bytes)
	}
	if err != nil {
		log.Error().Err(err).Str("tool", "text_to_speech").Msg("save failed")
		return errorResult(err), nil, nil
	}

	log.Info().Str("tool", "text_to_speech").Str("path", path).Int("size", len(out.Bytes)).Dur("duration", out.Duration).Msg("speech saved")
	return jsonResult(map[string]any{
		"path":        path,
		"size_bytes":  len(out.Bytes),
		"media_type":  out.MediaType,
		"duration_ms": out.Duration.Milliseconds(),
	}), nil, nil
}
