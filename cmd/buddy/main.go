package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"gpt-buddy/config"
	"gpt-buddy/internal/application"
	"gpt-buddy/internal/domain"
	"gpt-buddy/internal/infra/audio"
	"gpt-buddy/internal/infra/display"
	"gpt-buddy/internal/infra/gallery"
	"gpt-buddy/internal/infra/openai"
	"gpt-buddy/internal/infra/player"
	"gpt-buddy/internal/infra/porcupine"
	"gpt-buddy/internal/infra/pushover"
	"gpt-buddy/internal/infra/sd"
)

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "path to config file")
	envPath := pflag.StringP("env", "e", ".env", "path to env file")
	pflag.Parse()

	// Missing .env is fine; the config file expands whatever the environment
	// already carries.
	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("loading env file", "path", *envPath, "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	assistantClient := openai.NewAssistantClient(cfg.OpenAI.APIKey, cfg.OpenAI.AssistantID)
	if err := assistantClient.Ping(ctx); err != nil {
		logger.Error("openai api unreachable", "error", err)
		os.Exit(1)
	}

	images := sd.NewClient(cfg.SD.Host, cfg.SD.Port, cfg.SD.Steps, cfg.Paths.SavedImages)
	if images.Configured() {
		if err := images.Ping(ctx); err != nil {
			logger.Warn("stable diffusion unreachable, image generation will fail", "error", err)
		}
	} else {
		logger.Warn("stable diffusion not configured, image generation disabled")
	}

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	pics := gallery.New(cfg.Paths.SavedImages)
	if err := pics.EnsureDir(); err != nil {
		logger.Error("creating saved images directory", "error", err)
		os.Exit(1)
	}

	session := application.NewSession(
		application.Deps{
			WakeWord:    porcupine.NewEngine(cfg.WakeWord.AccessKey, cfg.WakeWord.Keywords, logger),
			Microphone:  audio.NewMicrophone(cfg.Audio.SampleRate, logger),
			STT:         openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language),
			Assistant:   assistantClient,
			Images:      images,
			Illustrator: openai.NewDalleClient(cfg.OpenAI.APIKey, cfg.OpenAI.ImageModel, cfg.Paths.FullImage, cfg.Paths.LastResult),
			TTS:         openai.NewSpeechClient(cfg.OpenAI.APIKey, cfg.OpenAI.TTSVoice, "speech.mp3"),
			Notifier:    notifier,
			Display:     display.New(logger),
			Player:      player.New(),
			Gallery:     pics,
			Logger:      logger,
		},
		application.Options{
			Table:           domain.DefaultTable(),
			PhraseTimeLimit: cfg.PhraseTimeLimit(),
			PollInterval:    cfg.PollInterval(),
			PollDeadline:    cfg.PollDeadline(),
			JoinTimeout:     cfg.JoinTimeout(),
			TTSEnabled:      *cfg.OpenAI.TTSEnabled,
			Styles:          cfg.SD.Styles,
			AltStyles:       cfg.SD.AltStyles,
			Paths: application.Paths{
				ListeningImage: cfg.Paths.ListeningImage,
				ThinkingImage:  cfg.Paths.ThinkingImage,
				LastResult:     cfg.Paths.LastResult,
				FullImage:      cfg.Paths.FullImage,
				ThreadFile:     cfg.Paths.ThreadFile,
			},
			Sounds: application.Sounds{
				Wake:     cfg.Sounds.Wake,
				Ack:      cfg.Sounds.Ack,
				Sending:  cfg.Sounds.Sending,
				Thinking: cfg.Sounds.Thinking,
			},
		},
	)

	logger.Info("starting assistant", "keywords", cfg.WakeWord.Keywords)

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
