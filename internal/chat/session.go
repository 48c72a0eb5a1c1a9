package chat

import (
	"context"
	"sync"
	"time"

	"github.com/Rrens/doc-chat/internal/domain"
)

// Generator produces a reply for a fully assembled prompt. Satisfied by
// an adapter over an llm.Provider; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Session binds one document's extracted text and system instruction to
// an append-only conversation history. Document text and system prompt
// never change after construction.
//
// SendMessage calls are serialized per session via opMu, held across the
// backend call, so interleaved sends on the same session cannot lose an
// exchange. Reads take only the state mutex and do not block behind an
// in-flight generation.
type Session struct {
	id           string
	documentText string
	systemPrompt string

	opMu sync.Mutex // serializes SendMessage end to end

	mu      sync.Mutex // guards history
	history []domain.ChatMessage
}

// NewSession creates a session from already-extracted document text. The
// text is whitespace-normalized before storage. An empty custom
// instruction falls back to DefaultSystemPrompt.
func NewSession(id, documentText, customInstruction string) *Session {
	systemPrompt := customInstruction
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Session{
		id:           id,
		documentText: CleanText(documentText),
		systemPrompt: systemPrompt,
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// SendMessage builds a grounded prompt from the stored document text,
// the system instruction and userText, obtains a reply from gen, then
// appends the user and assistant turns to history. On generator failure
// the history is left unmodified.
func (s *Session) SendMessage(ctx context.Context, gen Generator, userText string) (string, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	prompt := BuildPrompt(s.systemPrompt, s.documentText, userText)

	reply, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.history = append(s.history,
		domain.ChatMessage{Role: domain.RoleUser, Content: userText, Timestamp: time.Now()},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: reply, Timestamp: time.Now()},
	)
	s.mu.Unlock()

	return reply, nil
}

// History returns a copy of the conversation history
func (s *Session) History() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]domain.ChatMessage, len(s.history))
	copy(cp, s.history)
	return cp
}

// Clear empties the conversation history. Idempotent; document text and
// system prompt are unaffected.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = s.history[:0]
}

// Info returns derived session metadata
func (s *Session) Info() domain.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionInfo{
		TextLength:   len(s.documentText),
		MessageCount: len(s.history),
	}
}
