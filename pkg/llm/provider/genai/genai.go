// Package genai implements llm.Client on Google's Gemini API.
package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/papercomputeco/coursewise/pkg/llm"
)

// DefaultModel is the default Gemini chat model.
const DefaultModel = "gemini-2.5-flash"

// Config holds configuration for the GenAI client.
type Config struct {
	APIKey string
	Model  string
}

// Client wraps genai.Client's Models.GenerateContent.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Gemini chat client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) Name() string {
	return "genai"
}

func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	system, contents := toContents(req)
	cfg := &genai.GenerateContentConfig{
		StopSequences: req.Stop,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: genai generate: %v", llm.ErrProviderUnavailable, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: genai returned no text", llm.ErrEmptyResponse)
	}

	out := &llm.ChatResponse{
		Model:     model,
		CreatedAt: time.Now(),
		Message:   llm.NewTextMessage(llm.RoleAssistant, text),
	}
	if len(resp.Candidates) > 0 {
		out.StopReason = strings.ToLower(string(resp.Candidates[0].FinishReason))
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}.Normalize()
	}
	return out, nil
}

func (c *Client) Close() error {
	return nil
}

// toContents maps chat history to Gemini contents. Assistant turns use the
// "model" role; system messages join the system instruction.
func toContents(req *llm.ChatRequest) (string, []*genai.Content) {
	system := req.System
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			system = strings.TrimSpace(system + "\n\n" + m.GetText())
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.GetText(), genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.GetText(), genai.RoleUser))
		}
	}
	return system, contents
}

var _ llm.Client = (*Client)(nil)
