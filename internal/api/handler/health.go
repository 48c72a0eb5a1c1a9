package handler

import (
	"net/http"

	"github.com/Rrens/doc-chat/internal/api/response"
	"github.com/Rrens/doc-chat/internal/llm"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ListLLMProviders returns the configured text generation providers
func ListLLMProviders(llmRouter *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        llmRouter.GetProvidersInfo(),
			"default_provider": llmRouter.DefaultProvider(),
		})
	}
}
