package service

import (
	"context"

	"github.com/Rrens/doc-chat/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockExtractor mocks the extractor.Extractor interface
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Name() string {
	return "mock-extractor"
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

// MockLLMProvider mocks the llm.Provider interface
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Name() string {
	return "mock-provider"
}

func (m *MockLLMProvider) AvailableModels() []string {
	return []string{"mock-model"}
}

func (m *MockLLMProvider) DefaultModel() string {
	return "mock-model"
}

func (m *MockLLMProvider) IsConfigured() bool {
	return true
}

func (m *MockLLMProvider) Generate(ctx context.Context, prompt string, model string) (*llm.Response, error) {
	args := m.Called(ctx, prompt, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}
