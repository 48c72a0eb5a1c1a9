package domain

import "time"

// UploadResponse is returned after a successful document upload
type UploadResponse struct {
	SessionID   string      `json:"sessionId"`
	SessionInfo SessionInfo `json:"sessionInfo"`
	Filename    string      `json:"filename"`
	FileURL     string      `json:"fileUrl"`
	Message     string      `json:"message"`
}

// SendMessageRequest is the body of POST /send-message
type SendMessageRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ChatResponse is returned after a successful exchange
type ChatResponse struct {
	Response            string        `json:"response"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
	Timestamp           time.Time     `json:"timestamp"`
}

// ConversationResponse carries a session's full history and metadata
type ConversationResponse struct {
	ConversationHistory []ChatMessage `json:"conversationHistory"`
	SessionInfo         SessionInfo   `json:"sessionInfo"`
}
