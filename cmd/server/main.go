package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rrens/doc-chat/internal/api"
	"github.com/Rrens/doc-chat/internal/chat"
	"github.com/Rrens/doc-chat/internal/config"
	"github.com/Rrens/doc-chat/internal/extractor"
	"github.com/Rrens/doc-chat/internal/llm"
	"github.com/Rrens/doc-chat/internal/llm/anthropic"
	"github.com/Rrens/doc-chat/internal/llm/deepseek"
	"github.com/Rrens/doc-chat/internal/llm/gemini"
	"github.com/Rrens/doc-chat/internal/llm/ollama"
	"github.com/Rrens/doc-chat/internal/llm/openai"
	"github.com/Rrens/doc-chat/internal/service"
	"github.com/Rrens/doc-chat/internal/storage"
	"github.com/joho/godotenv"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Logging)

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting document chat server")

	// Upload storage
	uploads, err := storage.NewUploadStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload storage")
	}

	// Text extractor
	ext := newExtractor(cfg.Extractor)
	log.Info().Str("extractor", ext.Name()).Msg("Text extractor selected")

	// LLM router and providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	registerProviders(llmRouter, cfg.LLM)
	log.Info().
		Strs("providers", llmRouter.ListProviders()).
		Str("default", cfg.LLM.DefaultProvider).
		Msg("LLM providers registered")

	// Session registry and chat service
	registry := chat.NewRegistry(cfg.Session.MaxSessions)
	chatService := service.NewChatService(
		registry,
		ext,
		llmRouter,
		uploads,
		cfg.Session.ExtractTimeout,
		cfg.Session.GenerateTimeout,
	)

	// Initialize router
	router := api.NewRouter(cfg, chatService, llmRouter)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func setupLogger(cfg config.LoggingConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.File != "" {
		writer, err := rotatelogs.New(
			cfg.File+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithRotationTime(24*time.Hour),
			rotatelogs.WithMaxAge(7*24*time.Hour),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open log file")
		}
		log.Logger = log.Output(zerolog.MultiLevelWriter(os.Stderr, writer))
		return
	}

	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func newExtractor(cfg config.ExtractorConfig) extractor.Extractor {
	switch cfg.Kind {
	case "plaintext":
		return extractor.NewPlainText()
	default:
		if !extractor.DetectPdfToText() && cfg.Binary == "" {
			log.Warn().Msg("pdftotext not found on PATH, falling back to plain text extraction")
			return extractor.NewPlainText()
		}
		return extractor.NewPdfToText(cfg.Binary)
	}
}

func registerProviders(llmRouter *llm.Router, cfg config.LLMConfig) {
	if cfg.Ollama.Host != "" {
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))
	}
	if cfg.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
	}
	if cfg.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model))
	}
	if cfg.DeepSeek.APIKey != "" {
		llmRouter.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model))
	}
	if cfg.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.Gemini.APIKey, cfg.Gemini.Model))
	}
}
