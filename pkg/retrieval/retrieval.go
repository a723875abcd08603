// Package retrieval is the Retriever: query embedding, filtered similarity
// search, relevance thresholding and topic to course fallback expansion.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/embeddings"
	"github.com/papercomputeco/coursewise/pkg/vector"
)

var (
	// ErrEmbeddingFailed wraps query embedding failures.
	ErrEmbeddingFailed = errors.New("query embedding failed")

	// ErrIndexFailed wraps vector index query failures.
	ErrIndexFailed = errors.New("vector index query failed")
)

// Chunk is a retrieved curriculum chunk.
type Chunk struct {
	ID       string          `json:"id"`
	Text     string          `json:"text"`
	Score    float32         `json:"score"`
	Metadata vector.Metadata `json:"metadata,omitempty"`
}

// Filter scopes a query to a topic and/or course.
type Filter struct {
	TopicID  string `json:"topicId,omitempty"`
	CourseID string `json:"courseId,omitempty"`
}

// Vector converts f into index equality predicates.
func (f Filter) Vector() vector.Filter {
	out := vector.Filter{}
	if f.TopicID != "" {
		out[vector.MetaTopicID] = f.TopicID
	}
	if f.CourseID != "" {
		out[vector.MetaCourseID] = f.CourseID
	}
	return out
}

// Config holds retrieval tuning.
type Config struct {
	Namespace string

	// MinRelevanceScore drops matches scoring below it.
	MinRelevanceScore float64

	// DefaultTopK bounds RetrieveWithFallback results.
	DefaultTopK int

	// FallbackMinResults is the topic result count below which the search
	// widens to the course.
	FallbackMinResults int
}

// DefaultConfig returns the stock retrieval settings.
func DefaultConfig() Config {
	return Config{
		Namespace:          "curriculum",
		MinRelevanceScore:  0.7,
		DefaultTopK:        5,
		FallbackMinResults: 2,
	}
}

// Retriever queries the curriculum index.
type Retriever struct {
	embedder embeddings.Embedder
	index    vector.Driver
	cfg      Config
	logger   *zap.Logger
}

// New creates a Retriever. Zero config fields take DefaultConfig values.
func New(embedder embeddings.Embedder, index vector.Driver, cfg Config, logger *zap.Logger) *Retriever {
	d := DefaultConfig()
	if cfg.Namespace == "" {
		cfg.Namespace = d.Namespace
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = d.DefaultTopK
	}
	if cfg.FallbackMinResults <= 0 {
		cfg.FallbackMinResults = d.FallbackMinResults
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		cfg:      cfg,
		logger:   logger,
	}
}

// Config returns the effective configuration.
func (r *Retriever) Config() Config {
	return r.cfg
}

// Retrieve embeds query and returns at most topK chunks matching filter with
// score at or above the relevance floor, in descending score order.
// Embedding and index errors are returned, never swallowed.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter Filter, topK int) ([]Chunk, error) {
	if topK <= 0 {
		topK = r.cfg.DefaultTopK
	}

	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.search(ctx, vec, filter, topK)
}

// RetrieveWithFallback searches the topic first and widens to the course
// when the topic yields fewer than FallbackMinResults chunks. Topic results
// win on duplicate ids; the merged set is re-sorted and truncated to DefaultTopK.
func (r *Retriever) RetrieveWithFallback(ctx context.Context, query, topicID, courseID string) ([]Chunk, error) {
	topK := r.cfg.DefaultTopK

	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var topicChunks []Chunk
	if topicID != "" {
		topicChunks, err = r.search(ctx, vec, Filter{TopicID: topicID}, topK)
		if err != nil {
			return nil, err
		}
		if len(topicChunks) >= r.cfg.FallbackMinResults || courseID == "" {
			return topicChunks, nil
		}
	}

	if courseID == "" {
		return []Chunk{}, nil
	}

	r.logger.Debug("expanding retrieval to course",
		zap.String("topic_id", topicID),
		zap.String("course_id", courseID),
		zap.Int("topic_results", len(topicChunks)),
	)

	courseChunks, err := r.search(ctx, vec, Filter{CourseID: courseID}, topK)
	if err != nil {
		return nil, err
	}

	return Merge(topicChunks, courseChunks, topK), nil
}

// Merge combines primary and secondary, dropping secondary chunks whose id
// already appears in primary, then sorts by score and truncates to topK.
func Merge(primary, secondary []Chunk, topK int) []Chunk {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	merged := make([]Chunk, 0, len(primary)+len(secondary))
	for _, set := range [][]Chunk{primary, secondary} {
		for _, c := range set {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			merged = append(merged, c)
		}
	}

	sortChunks(merged)
	if topK > 0 && len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	return vec, nil
}

func (r *Retriever) search(ctx context.Context, vec []float32, filter Filter, topK int) ([]Chunk, error) {
	matches, err := r.index.Query(ctx, r.cfg.Namespace, vector.QueryRequest{
		Vector:          vec,
		TopK:            topK,
		Filter:          filter.Vector(),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexFailed, err)
	}

	floor := float32(r.cfg.MinRelevanceScore)
	chunks := make([]Chunk, 0, len(matches))
	for _, m := range matches {
		if m.Score < floor {
			continue
		}
		chunks = append(chunks, Chunk{
			ID:       m.ID,
			Text:     vector.MetaString(m.Metadata[vector.MetaText]),
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}

	sortChunks(chunks)
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}

	r.logger.Debug("retrieved chunks",
		zap.Stringer("filter", filter.Vector()),
		zap.Int("top_k", topK),
		zap.Int("matches", len(matches)),
		zap.Int("results", len(chunks)),
	)
	return chunks, nil
}

func sortChunks(chunks []Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
}
