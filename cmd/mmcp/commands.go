package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"mmcp"
	"mmcp/internal/config"
	"mmcp/internal/fileio"
	"mmcp/mcpserver"
)

func buildClient(s *config.Settings) (*mmcp.Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return mmcp.NewClient(mmcp.Config{
		APIKey:          s.APIKey,
		BaseURL:         s.BaseURL,
		OrgID:           s.OrgID,
		Project:         s.Project,
		VisionModel:     s.VisionModel,
		ImageModel:      s.ImageModel,
		TranscribeModel: s.TranscribeModel,
		SpeechModel:     s.SpeechModel,
	})
}

type ServeCMD struct {
	OutputDir string `short:"o" type:"path" help:"Directory for generated images and audio"`
}

func (c *ServeCMD) Run(s *config.Settings) error {
	client, err := buildClient(s)
	if err != nil {
		return err
	}
	dir := c.OutputDir
	if dir == "" {
		dir = s.OutputDir
	}
	srv, err := mcpserver.New(mcpserver.Options{Client: client, OutputDir: dir})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("output_dir", dir).Msg("serving multimodal tools over MCP stdio")
	return srv.Run(ctx)
}

type AnalyzeCMD struct {
	Image       string   `arg:"" type:"path" help:"Image file to analyze"`
	Instruction []string `arg:"" help:"What to describe or answer about the image"`

	Model    string `short:"m" help:"Override the configured vision model"`
	Format   string `default:"text" enum:"text,json" help:"Response format [${enum}]"`
	Schema   string `type:"path" help:"JSON Schema file, required with --format=json"`
	Detail   string `help:"Image fidelity hint (low, high, or auto)"`
	Language string `help:"Language the answer should be written in"`
}

func (c *AnalyzeCMD) Run(s *config.Settings) error {
	client, err := buildClient(s)
	if err != nil {
		return err
	}
	image, err := os.ReadFile(c.Image)
	if err != nil {
		return err
	}
	req := mmcp.AnalyzeImageRequest{
		ImageBytes:     image,
		Instruction:    strings.Join(c.Instruction, " "),
		Model:          c.Model,
		ResponseFormat: c.Format,
		Detail:         c.Detail,
		Language:       c.Language,
	}
	if c.Schema != "" {
		raw, err := os.ReadFile(c.Schema)
		if err != nil {
			return err
		}
		req.JSONSchema = raw
	}
	out, err := client.AnalyzeImage(context.Background(), req)
	if err != nil {
		return err
	}
	if out.Data != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Data)
	}
	fmt.Println(out.Text)
	return nil
}

type GenerateCMD struct {
	Prompt []string `arg:"" help:"What the image should show"`

	Model      string `short:"m" help:"Override the configured image model"`
	Size       string `help:"Image dimensions, for example 1024x1024"`
	Background string `help:"Background treatment (transparent, opaque, or auto)"`
	Quality    string `help:"Rendering quality, for example low, medium, or high"`
	OutputFile string `short:"o" type:"path" help:"Path to write the image file"`
	OutputDir  string `type:"path" help:"Directory to save the image when --output-file is not set"`
}

func (c *GenerateCMD) Run(s *config.Settings) error {
	client, err := buildClient(s)
	if err != nil {
		return err
	}
	out, err := client.GenerateImage(context.Background(), mmcp.GenerateImageRequest{
		Prompt:     strings.Join(c.Prompt, " "),
		Model:      c.Model,
		Size:       c.Size,
		Background: c.Background,
		Quality:    c.Quality,
	})
	if err != nil {
		return err
	}
	if c.OutputFile != "" {
		if err := fileio.SaveAt(c.OutputFile, out.Bytes); err != nil {
			return err
		}
		fmt.Println(c.OutputFile)
		return nil
	}
	dir := c.OutputDir
	if dir == "" {
		dir = s.OutputDir
	}
	path, err := fileio.Writer{Dir: dir}.Save("image", "", out.Bytes)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

type TranscribeCMD struct {
	Audio string `arg:"" type:"path" help:"Audio file to transcribe"`

	Model      string `short:"m" help:"Override the configured transcription model"`
	Language   string `short:"l" help:"ISO-639-1 hint for the spoken language"`
	Prompt     string `help:"Vocabulary hint for the recognizer"`
	Timestamps bool   `help:"Print per-segment timing"`
}

func (c *TranscribeCMD) Run(s *config.Settings) error {
	client, err := buildClient(s)
	if err != nil {
		return err
	}
	audio, err := os.ReadFile(c.Audio)
	if err != nil {
		return err
	}
	out, err := client.Transcribe(context.Background(), mmcp.TranscribeRequest{
		AudioBytes: audio,
		Model:      c.Model,
		Language:   c.Language,
		Prompt:     c.Prompt,
		Timestamps: c.Timestamps,
	})
	if err != nil {
		return err
	}
	if len(out.Segments) > 0 {
		for _, seg := range out.Segments {
			fmt.Printf("[%.2f-%.2f] %s\n", seg.Start, seg.End, strings.TrimSpace(seg.Text))
		}
		return nil
	}
	fmt.Println(out.Text)
	return nil
}

type TTSCMD struct {
	Text []string `arg:"" help:"Text to speak"`

	Model      string  `short:"m" help:"Override the configured speech model"`
	Voice      string  `short:"v" help:"Voice name, for example alloy"`
	Format     string  `help:"Audio container (mp3, opus, aac, flac, wav, or pcm)"`
	Speed      float64 `help:"Playback speed between 0.25 and 4.0"`
	OutputFile string  `short:"o" type:"path" help:"Path to write the audio file"`
	OutputDir  string  `type:"path" help:"Directory to save the audio when --output-file is not set"`
}

func (t *TTSCMD) Run(s *config.Settings) error {
	client, err := buildClient(s)
	if err != nil {
		return err
	}
	req := mmcp.SpeechRequest{
		Text:   strings.Join(t.Text, " "),
		Model:  t.Model,
		Voice:  t.Voice,
		Format: t.Format,
	}
	if t.Speed != 0 {
		req.Speed = &t.Speed
	}
	out, err := client.GenerateSpeech(context.Background(), req)
	if err != nil {
		return err
	}
	if t.OutputFile != "" {
		if err := fileio.SaveAt(t.OutputFile, out.Bytes); err != nil {
			return err
		}
		fmt.Println(t.OutputFile)
		return nil
	}
	dir := t.OutputDir
	if dir == "" {
		dir = s.OutputDir
	}
	path, err := fileio.Writer{Dir: dir}.Save("speech", t.Format, out.Bytes)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
