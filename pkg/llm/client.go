package llm

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable is returned when the provider cannot be reached
	// or answers with a non-success status.
	ErrProviderUnavailable = errors.New("generation provider unavailable")

	// ErrEmptyResponse is returned when the provider answers without any text.
	ErrEmptyResponse = errors.New("generation provider returned an empty response")
)

// Client is a chat completion client for one provider.
type Client interface {
	// Name returns the canonical provider name (e.g., "openai", "anthropic").
	Name() string

	// Chat sends a single completion request. Implementations do not retry.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Close releases any resources held by the client.
	Close() error
}
