package api

import (
	"net/http"

	"github.com/Rrens/doc-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/doc-chat/internal/api/middleware"
	"github.com/Rrens/doc-chat/internal/api/response"
	"github.com/Rrens/doc-chat/internal/config"
	"github.com/Rrens/doc-chat/internal/llm"
	"github.com/Rrens/doc-chat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, chatService *service.ChatService, llmRouter *llm.Router) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	chatHandler := handler.NewChatHandler(chatService, cfg.Upload.MaxBytes)

	r.Get("/health", handler.HealthCheck)
	r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

	r.Post("/upload-pdf", chatHandler.Upload)
	r.Post("/send-message", chatHandler.SendMessage)
	r.Get("/conversation/{sessionID}", chatHandler.GetConversation)
	r.Post("/clear-conversation/{sessionID}", chatHandler.ClearConversation)

	// Uploaded documents are served back at a predictable static URL
	uploadsDir := http.Dir(cfg.Upload.Dir)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadsDir)))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Not found")
	})

	return r
}
