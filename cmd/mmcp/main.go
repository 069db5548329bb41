package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mmcp/internal/config"
)

var cli struct {
	Debug    bool   `env:"MMCP_DEBUG" default:"false" help:"Enable debug logging"`
	LogLevel string `env:"MMCP_LOG_LEVEL" default:"info" enum:"error,warn,info,debug,trace" help:"Set the level of logs to output [${enum}]"`

	Serve      ServeCMD      `cmd:"" default:"withargs" help:"Serve the multimodal tools over MCP stdio. This is the default command"`
	Analyze    AnalyzeCMD    `cmd:"" help:"Analyze an image with the vision model"`
	Generate   GenerateCMD   `cmd:"" help:"Generate an image from a text prompt"`
	Transcribe TranscribeCMD `cmd:"" help:"Transcribe an audio file to text"`
	TTS        TTSCMD        `cmd:"" help:"Convert text to speech"`
}

func main() {
	// Load .env when present. MCP hosts usually launch the server with a
	// bare environment, so a missing file is not an error.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg("failed to load .env")
		}
	}

	ctx := kong.Parse(&cli,
		kong.Description("Multimodal MCP server and CLI: image analysis, image generation, transcription, and text to speech over an OpenAI-compatible API."),
		kong.UsageOnError(),
	)

	// Logs go to stderr; stdout belongs to the MCP protocol.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level := cli.LogLevel
	if cli.Debug {
		level = "debug"
	}
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	settings := config.FromEnv()
	if err := ctx.Run(&settings); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
