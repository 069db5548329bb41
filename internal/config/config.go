// Package config loads server settings from the environment.
package config

import (
	"errors"
	"os"
)

// Settings carries everything the server and CLI need. Model names are
// optional; an operation whose model is unset fails only when invoked.
type Settings struct {
	APIKey  string
	BaseURL string
	OrgID   string
	Project string

	VisionModel     string
	ImageModel      string
	TranscribeModel string
	SpeechModel     string

	OutputDir string
}

// FromEnv reads settings from the process environment. Call godotenv.Load
// first if a .env file should participate.
func FromEnv() Settings {
	s := Settings{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		OrgID:   os.Getenv("OPENAI_ORG_ID"),
		Project: os.Getenv("OPENAI_PROJECT"),

		VisionModel:     os.Getenv("OPENAI_MODEL_VISION"),
		ImageModel:      os.Getenv("OPENAI_MODEL_IMAGE"),
		TranscribeModel: os.Getenv("OPENAI_MODEL_STT"),
		SpeechModel:     os.Getenv("OPENAI_MODEL_TTS"),

		OutputDir: os.Getenv("MMCP_OUTPUT_DIR"),
	}
	if s.OutputDir == "" {
		s.OutputDir = "output"
	}
	return s
}

func (s Settings) Validate() error {
	if s.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	return nil
}
