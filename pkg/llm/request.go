package llm

// ChatRequest represents a provider-agnostic chat completion request.
type ChatRequest struct {
	// Model name (e.g., "gpt-4o-mini", "claude-sonnet-4-5", "llama3.2").
	// Empty uses the client's configured model.
	Model string `json:"model,omitempty"`

	// System prompt. Providers that take system text as a message receive it
	// as the first message.
	System string `json:"system,omitempty"`

	// Conversation messages in order, ending with the new user turn.
	Messages []Message `json:"messages"`

	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// IntPtr and Float64Ptr help fill optional generation parameters.
func IntPtr(v int) *int { return &v }

func Float64Ptr(v float64) *float64 { return &v }
