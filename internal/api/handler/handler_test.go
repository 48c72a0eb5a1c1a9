package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdmultipart "mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/doc-chat/internal/api"
	"github.com/Rrens/doc-chat/internal/chat"
	"github.com/Rrens/doc-chat/internal/config"
	"github.com/Rrens/doc-chat/internal/domain"
	"github.com/Rrens/doc-chat/internal/extractor"
	"github.com/Rrens/doc-chat/internal/llm"
	"github.com/Rrens/doc-chat/internal/service"
	"github.com/Rrens/doc-chat/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider answers every prompt with a fixed reply
type fakeProvider struct {
	reply string
	err   error
}

func (p *fakeProvider) Name() string              { return "fake" }
func (p *fakeProvider) AvailableModels() []string { return []string{"fake-model"} }
func (p *fakeProvider) DefaultModel() string      { return "fake-model" }
func (p *fakeProvider) IsConfigured() bool        { return true }

func (p *fakeProvider) Generate(_ context.Context, prompt string, _ string) (*llm.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Text: p.reply, Model: "fake-model"}, nil
}

func newTestServer(t *testing.T, provider llm.Provider) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{RequestTimeout: 30 * time.Second},
		Upload: config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20},
	}

	uploads, err := storage.NewUploadStore(cfg.Upload.Dir)
	require.NoError(t, err)

	llmRouter := llm.NewRouter("fake")
	llmRouter.RegisterProvider(provider)

	chatService := service.NewChatService(
		chat.NewRegistry(10),
		extractor.NewPlainText(),
		llmRouter,
		uploads,
		0, 0,
	)

	return api.NewRouter(cfg, chatService, llmRouter)
}

func uploadDocument(t *testing.T, srv http.Handler, content, customPrompt string) domain.UploadResponse {
	t.Helper()

	var buf bytes.Buffer
	w := stdmultipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("pdf", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	if customPrompt != "" {
		require.NoError(t, w.WriteField("customPrompt", customPrompt))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp domain.UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func postJSON(t *testing.T, srv http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndChatFlow(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "It is about release planning."})

	up := uploadDocument(t, srv, "Quarterly release planning notes for the platform team.", "")
	assert.NotEmpty(t, up.SessionID)
	assert.Equal(t, "notes.txt", up.Filename)
	assert.Contains(t, up.FileURL, "/uploads/")
	assert.Positive(t, up.SessionInfo.TextLength)
	assert.Zero(t, up.SessionInfo.MessageCount)

	// Send a message
	rec := postJSON(t, srv, "/send-message", domain.SendMessageRequest{
		SessionID: up.SessionID,
		Message:   "What is this about?",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var chatResp domain.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&chatResp))
	assert.Equal(t, "It is about release planning.", chatResp.Response)
	require.Len(t, chatResp.ConversationHistory, 2)
	assert.Equal(t, domain.RoleUser, chatResp.ConversationHistory[0].Role)
	assert.Equal(t, "What is this about?", chatResp.ConversationHistory[0].Content)
	assert.Equal(t, domain.RoleAssistant, chatResp.ConversationHistory[1].Role)
	assert.NotEmpty(t, chatResp.ConversationHistory[1].Content)

	// Fetching the conversation returns the identical history
	req := httptest.NewRequest(http.MethodGet, "/conversation/"+up.SessionID, nil)
	getRec := httptest.NewRecorder()
	srv.ServeHTTP(getRec, req)
	require.Equal(t, http.StatusOK, getRec.Code)

	var conv domain.ConversationResponse
	require.NoError(t, json.NewDecoder(getRec.Body).Decode(&conv))
	require.Len(t, conv.ConversationHistory, 2)
	assert.Equal(t, chatResp.ConversationHistory[0].Content, conv.ConversationHistory[0].Content)
	assert.Equal(t, chatResp.ConversationHistory[1].Content, conv.ConversationHistory[1].Content)
	assert.Equal(t, 2, conv.SessionInfo.MessageCount)
}

func TestClearConversation_Idempotent(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	up := uploadDocument(t, srv, "some document text", "")

	rec := postJSON(t, srv, "/send-message", domain.SendMessageRequest{SessionID: up.SessionID, Message: "hi"})
	require.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 2; i++ {
		rec := postJSON(t, srv, "/clear-conversation/"+up.SessionID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/conversation/"+up.SessionID, nil)
	getRec := httptest.NewRecorder()
	srv.ServeHTTP(getRec, req)

	var conv domain.ConversationResponse
	require.NoError(t, json.NewDecoder(getRec.Body).Decode(&conv))
	assert.Empty(t, conv.ConversationHistory)
}

func TestSessionIsolation(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	a := uploadDocument(t, srv, "document a", "")
	b := uploadDocument(t, srv, "document b", "")
	require.NotEqual(t, a.SessionID, b.SessionID)

	rec := postJSON(t, srv, "/send-message", domain.SendMessageRequest{SessionID: a.SessionID, Message: "only a"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/conversation/"+b.SessionID, nil)
	getRec := httptest.NewRecorder()
	srv.ServeHTTP(getRec, req)

	var conv domain.ConversationResponse
	require.NoError(t, json.NewDecoder(getRec.Body).Decode(&conv))
	assert.Empty(t, conv.ConversationHistory)
}

func TestUpload_MissingFilePart(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	var buf bytes.Buffer
	w := stdmultipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("customPrompt", "no file here"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestUpload_MissingBoundary(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", bytes.NewBufferString("body"))
	req.Header.Set("Content-Type", "multipart/form-data")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_EmptyDocument(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	var buf bytes.Buffer
	w := stdmultipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("pdf", "empty.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("   \n  "))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage_Validation(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	tests := []struct {
		name string
		body domain.SendMessageRequest
	}{
		{"missing message", domain.SendMessageRequest{SessionID: "session_x"}},
		{"missing session id", domain.SendMessageRequest{Message: "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, srv, "/send-message", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSendMessage_UnknownSession(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	rec := postJSON(t, srv, "/send-message", domain.SendMessageRequest{SessionID: "session_missing", Message: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendMessage_BackendFailure(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{err: errors.New("model unavailable")})

	up := uploadDocument(t, srv, "document text", "")

	rec := postJSON(t, srv, "/send-message", domain.SendMessageRequest{SessionID: up.SessionID, Message: "hi"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// History must be untouched by the failed exchange
	req := httptest.NewRequest(http.MethodGet, "/conversation/"+up.SessionID, nil)
	getRec := httptest.NewRecorder()
	srv.ServeHTTP(getRec, req)

	var conv domain.ConversationResponse
	require.NoError(t, json.NewDecoder(getRec.Body).Decode(&conv))
	assert.Empty(t, conv.ConversationHistory)
}

func TestGetConversation_UnknownSession(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	req := httptest.NewRequest(http.MethodGet, "/conversation/session_missing", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Not found", body["error"])
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestListLLMProviders(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{reply: "reply"})

	req := httptest.NewRequest(http.MethodGet, "/llm-providers", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Providers       []llm.ProviderInfo `json:"providers"`
		DefaultProvider string             `json:"default_provider"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "fake", body.DefaultProvider)
	require.Len(t, body.Providers, 1)
	assert.Equal(t, "fake", body.Providers[0].Name)
	assert.True(t, body.Providers[0].Default)
}
