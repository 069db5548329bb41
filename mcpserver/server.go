// Package mcpserver exposes the multimodal client as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mmcp"
	"mmcp/internal/fileio"
)

const serverVersion = "0.1.0"

// Multimodal is the slice of the client the tools need. *mmcp.Client
// satisfies it.
type Multimodal interface {
	AnalyzeImage(ctx context.Context, req mmcp.AnalyzeImageRequest) (*mmcp.Analysis, error)
	GenerateImage(ctx context.Context, req mmcp.GenerateImageRequest) (*mmcp.GeneratedImage, error)
	Transcribe(ctx context.Context, req mmcp.TranscribeRequest) (*mmcp.Transcript, error)
	GenerateSpeech(ctx context.Context, req mmcp.SpeechRequest) (*mmcp.SpeechAudio, error)
}

type Options struct {
	Client Multimodal

	// OutputDir receives generated images and audio. Defaults to "output".
	OutputDir string

	// FetchClient downloads image_url and audio_url tool inputs. Defaults
	// to a 60-second client.
	FetchClient *http.Client
}

type Server struct {
	client Multimodal
	writer fileio.Writer
	fetch  *http.Client
	mcp    *mcp.Server
}

func New(opts Options) (*Server, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("mcpserver: client is required")
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = "output"
	}
	fetch := opts.FetchClient
	if fetch == nil {
		fetch = &http.Client{Timeout: 60 * time.Second}
	}

	s := &Server{client: opts.Client, writer: fileio.Writer{Dir: dir}, fetch: fetch}
	srv := mcp.NewServer(&mcp.Implementation{Name: "mmcp", Version: serverVersion}, nil)
	mcp.AddTool(srv, analyzeImageTool, s.analyzeImage)
	mcp.AddTool(srv, generateImageTool, s.generateImage)
	mcp.AddTool(srv, transcribeTool, s.transcribe)
	mcp.AddTool(srv, textToSpeechTool, s.textToSpeech)
	s.mcp = srv
	return s, nil
}

// Run serves MCP over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// jsonResult wraps v, JSON-encoded, in a single text content part.
func jsonResult(v any) *mcp.CallToolResult {
	body, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(body)}}}
}

// errorResult renders err as {"error":{"kind":...,"message":...}} so callers
// get the taxonomy kind alongside the message.
func errorResult(err error) *mcp.CallToolResult {
	kind := "provider_error"
	switch {
	case mmcp.IsInvalidArgument(err):
		kind = "invalid_argument"
	case mmcp.IsTimeout(err):
		kind = "timeout"
	}
	body, _ := json.Marshal(map[string]any{
		"error": map[string]string{"kind": kind, "message": err.Error()},
	})
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}
}

// badInput marks input-resolution failures as invalid arguments.
func badInput(op string, err error) *mcp.CallToolResult {
	return errorResult(&mmcp.Error{Kind: mmcp.KindInvalidArgument, Op: op, Message: err.Error(), Cause: err})
}
