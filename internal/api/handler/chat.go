package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Rrens/doc-chat/internal/api/response"
	"github.com/Rrens/doc-chat/internal/domain"
	"github.com/Rrens/doc-chat/internal/multipart"
	"github.com/Rrens/doc-chat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ChatHandler handles the document chat endpoints
type ChatHandler struct {
	chatService    *service.ChatService
	maxUploadBytes int64
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, maxUploadBytes int64) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload handles POST /upload-pdf. The whole multipart body is buffered
// before parsing; a size cap guards against oversized payloads.
func (h *ChatHandler) Upload(w http.ResponseWriter, r *http.Request) {
	boundary, err := multipart.Boundary(r.Header.Get("Content-Type"))
	if err != nil {
		response.BadRequest(w, "no boundary found in content-type")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		response.BadRequest(w, "failed to read request body")
		return
	}

	parts, err := multipart.Parse(body, boundary)
	if err != nil {
		response.BadRequest(w, "invalid multipart form data")
		return
	}

	var file *multipart.Part
	var customPrompt string
	for i := range parts {
		switch parts[i].Name {
		case "pdf":
			if file == nil {
				file = &parts[i]
			}
		case "customPrompt":
			customPrompt = string(parts[i].Data)
		}
	}

	if file == nil {
		response.BadRequest(w, "no PDF file uploaded")
		return
	}

	result, err := h.chatService.CreateSession(r.Context(), file.Data, file.Filename, customPrompt)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, result)
}

// SendMessage handles POST /send-message
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "session ID and message are required")
		return
	}

	result, err := h.chatService.SendMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, result)
}

// GetConversation handles GET /conversation/{sessionID}
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, err := h.chatService.GetConversation(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, result)
}

// ClearConversation handles POST /clear-conversation/{sessionID}
func (h *ChatHandler) ClearConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatService.ClearConversation(sessionID); err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "Conversation cleared successfully"})
}

// writeError maps service failures to response statuses: extraction and
// parse problems are client errors, unknown sessions are 404, backend
// generation failures and anything unexpected are 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrExtraction):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrGeneration):
		response.InternalError(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
