package domain

import "time"

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage represents one turn in a document conversation.
// Immutable once appended; ordering is append order.
type ChatMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// SessionInfo contains derived, read-only session metadata
type SessionInfo struct {
	TextLength   int `json:"textLength"`
	MessageCount int `json:"messageCount"`
}
