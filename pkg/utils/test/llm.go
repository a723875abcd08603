package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/coursewise/pkg/llm"
)

// MockLLMClient returns canned replies and records requests.
type MockLLMClient struct {
	mu sync.Mutex

	Reply string
	err   error

	requests []*llm.ChatRequest
}

func NewMockLLMClient(reply string) *MockLLMClient {
	return &MockLLMClient{Reply: reply}
}

// FailWith makes every later Chat call return err.
func (m *MockLLMClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockLLMClient) Name() string {
	return "mock"
}

func (m *MockLLMClient) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}

	prompt := len(req.System)
	for _, msg := range req.Messages {
		prompt += len(msg.GetText())
	}
	return &llm.ChatResponse{
		Model:   "mock-model",
		Message: llm.NewTextMessage(llm.RoleAssistant, m.Reply),
		Usage: llm.Usage{
			PromptTokens:     prompt/4 + 1,
			CompletionTokens: len(m.Reply)/4 + 1,
		}.Normalize(),
	}, nil
}

// Calls returns the number of Chat calls.
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil.
func (m *MockLLMClient) LastRequest() *llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func (m *MockLLMClient) Close() error {
	return nil
}

var _ llm.Client = (*MockLLMClient)(nil)
