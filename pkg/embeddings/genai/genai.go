// Package genai implements pkg/embeddings' Embedder on Google's Gemini API.
package genai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/papercomputeco/coursewise/pkg/embeddings"
	"github.com/papercomputeco/coursewise/pkg/vector"
)

// DefaultEmbeddingModel is the default Gemini embedding model.
const DefaultEmbeddingModel = "gemini-embedding-001"

// EmbedderConfig holds configuration for the GenAI embedder.
type EmbedderConfig struct {
	APIKey string
	Model  string

	// TaskType is a Gemini task type such as RETRIEVAL_DOCUMENT.
	// Defaults to SEMANTIC_SIMILARITY.
	TaskType string

	// Dimensions truncates output vectors. Zero keeps the model default.
	Dimensions int
}

// Embedder generates embeddings with the Gemini API.
type Embedder struct {
	client     *genai.Client
	model      string
	taskType   string
	dimensions int
}

// NewEmbedder creates a new GenAI embedder.
func NewEmbedder(ctx context.Context, cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	taskType := cfg.TaskType
	if taskType == "" {
		taskType = "SEMANTIC_SIMILARITY"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Embedder{
		client:     client,
		model:      model,
		taskType:   taskType,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates an embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{TaskType: e.taskType}
	if e.dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(e.dimensions))
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: genai batch embed failed: %v", vector.ErrEmbedding, err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			vector.ErrEmbedding, len(texts), len(result.Embeddings))
	}

	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
