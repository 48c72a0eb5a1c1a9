package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/doc-chat/internal/chat"
	"github.com/Rrens/doc-chat/internal/domain"
	"github.com/Rrens/doc-chat/internal/extractor"
	"github.com/Rrens/doc-chat/internal/llm"
	"github.com/Rrens/doc-chat/internal/storage"
	"github.com/rs/zerolog/log"
)

var (
	// ErrExtraction wraps any text extraction failure
	ErrExtraction = errors.New("failed to extract document text")

	// ErrGeneration wraps any text generation backend failure
	ErrGeneration = errors.New("failed to generate a reply")
)

// ChatService orchestrates uploads, extraction, the session registry and
// the text generation backend.
type ChatService struct {
	registry        *chat.Registry
	extractor       extractor.Extractor
	llmRouter       *llm.Router
	uploads         *storage.UploadStore
	extractTimeout  time.Duration
	generateTimeout time.Duration
}

// NewChatService creates a new chat service. Zero timeouts disable the
// corresponding deadline.
func NewChatService(
	registry *chat.Registry,
	ext extractor.Extractor,
	llmRouter *llm.Router,
	uploads *storage.UploadStore,
	extractTimeout time.Duration,
	generateTimeout time.Duration,
) *ChatService {
	return &ChatService{
		registry:        registry,
		extractor:       ext,
		llmRouter:       llmRouter,
		uploads:         uploads,
		extractTimeout:  extractTimeout,
		generateTimeout: generateTimeout,
	}
}

// CreateSession persists the uploaded document, extracts its text and
// registers a fresh chat session for it. No session is registered when
// extraction fails.
func (s *ChatService) CreateSession(ctx context.Context, data []byte, filename, customInstruction string) (*domain.UploadResponse, error) {
	storedName, fileURL, err := s.uploads.Save(data, filename)
	if err != nil {
		return nil, err
	}

	if s.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.extractTimeout)
		defer cancel()
	}

	text, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	session := s.registry.Create(text, customInstruction)
	info := session.Info()

	log.Info().
		Str("session_id", session.ID()).
		Str("stored_file", storedName).
		Int("text_length", info.TextLength).
		Msg("chat session created")

	if filename == "" {
		filename = "uploaded.pdf"
	}

	return &domain.UploadResponse{
		SessionID:   session.ID(),
		SessionInfo: info,
		Filename:    filename,
		FileURL:     fileURL,
		Message:     "PDF uploaded and chat initialized successfully",
	}, nil
}

// SendMessage routes a user message to the session's generation backend
// and returns the reply together with the full history.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, message string) (*domain.ChatResponse, error) {
	session, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	provider, err := s.llmRouter.GetProvider("")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	gen := providerGenerator{provider: provider, timeout: s.generateTimeout}
	reply, err := session.SendMessage(ctx, gen, message)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("generation failed")
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return &domain.ChatResponse{
		Response:            reply,
		ConversationHistory: session.History(),
		Timestamp:           time.Now(),
	}, nil
}

// GetConversation returns a session's history and metadata
func (s *ChatService) GetConversation(sessionID string) (*domain.ConversationResponse, error) {
	session, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	return &domain.ConversationResponse{
		ConversationHistory: session.History(),
		SessionInfo:         session.Info(),
	}, nil
}

// ClearConversation empties a session's history
func (s *ChatService) ClearConversation(sessionID string) error {
	return s.registry.Clear(sessionID)
}

// providerGenerator adapts an llm.Provider to the chat.Generator
// contract, applying the configured per-call deadline.
type providerGenerator struct {
	provider llm.Provider
	timeout  time.Duration
}

func (g providerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.provider.Generate(ctx, prompt, "")
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("provider", g.provider.Name()).
		Str("model", resp.Model).
		Int("tokens_used", resp.TokensUsed).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("generation completed")

	return resp.Text, nil
}
