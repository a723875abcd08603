// Package generation is the Generation Gateway: it turns a system and user
// prompt into a chat request for the configured llm.Client.
package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/llm"
)

// Request is a single generation call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Budget       Budget
}

// Turn is one prior message of a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the generated text and its token accounting.
type Result struct {
	Text  string    `json:"text"`
	Model string    `json:"model,omitempty"`
	Usage llm.Usage `json:"usage"`
}

// Gateway sends prompts to a provider. It performs no retries.
type Gateway struct {
	client llm.Client
	logger *zap.Logger
}

// NewGateway creates a Gateway over client.
func NewGateway(client llm.Client, logger *zap.Logger) *Gateway {
	return &Gateway{client: client, logger: logger}
}

// Generate sends the system prompt and a single user turn.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Result, error) {
	return g.GenerateWithHistory(ctx, req, nil)
}

// GenerateWithHistory places history between the system prompt and the new
// user turn, preserving order. Turns with unknown roles are sent as user turns.
func (g *Gateway) GenerateWithHistory(ctx context.Context, req Request, history []Turn) (*Result, error) {
	messages := make([]llm.Message, 0, len(history)+1)
	for _, t := range history {
		messages = append(messages, llm.NewTextMessage(normalizeRole(t.Role), t.Content))
	}
	messages = append(messages, llm.NewTextMessage(llm.RoleUser, req.UserPrompt))

	chatReq := &llm.ChatRequest{
		System:   req.SystemPrompt,
		Messages: messages,
	}
	if req.Budget.MaxTokens > 0 {
		chatReq.MaxTokens = llm.IntPtr(req.Budget.MaxTokens)
	}
	chatReq.Temperature = llm.Float64Ptr(req.Budget.Temperature)

	resp, err := g.client.Chat(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("generating with %s: %w", g.client.Name(), err)
	}

	result := &Result{
		Text:  resp.Message.GetText(),
		Model: resp.Model,
		Usage: resp.Usage.Normalize(),
	}

	g.logger.Debug("generation complete",
		zap.String("provider", g.client.Name()),
		zap.String("model", result.Model),
		zap.Int("history_turns", len(history)),
		zap.Int("max_tokens", req.Budget.MaxTokens),
		zap.Float64("temperature", req.Budget.Temperature),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return result, nil
}

// Close releases the underlying client.
func (g *Gateway) Close() error {
	return g.client.Close()
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case llm.RoleAssistant, "model", "ai":
		return llm.RoleAssistant
	case llm.RoleSystem:
		return llm.RoleSystem
	default:
		return llm.RoleUser
	}
}
