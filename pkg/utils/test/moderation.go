package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/coursewise/pkg/moderation"
)

// MockModerator returns a fixed verdict or error.
type MockModerator struct {
	mu sync.Mutex

	Verdict moderation.Result
	Err     error

	checked []string
}

func (m *MockModerator) Name() string {
	return "mock"
}

func (m *MockModerator) Moderate(_ context.Context, text string) (moderation.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checked = append(m.checked, text)
	if m.Err != nil {
		return moderation.Result{}, m.Err
	}
	return m.Verdict, nil
}

// Checked returns the texts passed to Moderate.
func (m *MockModerator) Checked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.checked...)
}

var _ moderation.Provider = (*MockModerator)(nil)
