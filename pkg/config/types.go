package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent coursewise configuration stored as config.toml
// in the .coursewise/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	API         APIConfig         `toml:"api"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Generation  GenerationConfig  `toml:"generation"`
	Moderation  ModerationConfig  `toml:"moderation"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Chunking    ChunkingConfig    `toml:"chunking"`
	Events      EventsConfig      `toml:"events"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// VectorStoreConfig holds vector index settings. Target is a URL for remote
// providers, a DSN for pgvector and a file path for sqlite.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// GenerationConfig holds language model provider settings.
type GenerationConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

// ModerationConfig holds moderation endpoint settings. Provider "none"
// disables screening.
type ModerationConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

// RetrievalConfig holds retriever thresholds and per-path breadths.
type RetrievalConfig struct {
	Namespace          string  `toml:"namespace,omitempty"`
	MinRelevanceScore  float64 `toml:"min_relevance_score,omitempty"`
	DefaultTopK        uint    `toml:"default_top_k,omitempty"`
	FallbackMinResults uint    `toml:"fallback_min_results,omitempty"`
	SoftAssessmentTopK uint    `toml:"soft_assessment_top_k,omitempty"`
	ContentTopK        uint    `toml:"content_top_k,omitempty"`
}

// ChunkingConfig holds ingestion chunking parameters.
type ChunkingConfig struct {
	ChunkSize       uint `toml:"chunk_size,omitempty"`
	ChunkOverlap    uint `toml:"chunk_overlap,omitempty"`
	UpsertBatchSize uint `toml:"upsert_batch_size,omitempty"`
}

// EventsConfig holds answer event publishing settings.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.listen": stringKey(func(c *Config) *string { return &c.API.Listen }),

	"vector_store.provider":   stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":     stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"vector_store.collection": stringKey(func(c *Config) *string { return &c.VectorStore.Collection }),
	"vector_store.api_key":    stringKey(func(c *Config) *string { return &c.VectorStore.APIKey }),
	"vector_store.dimensions": uintKey("vector_store.dimensions", func(c *Config) *uint { return &c.VectorStore.Dimensions }),

	"embedding.provider":   stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":     stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":      stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.api_key":    stringKey(func(c *Config) *string { return &c.Embedding.APIKey }),
	"embedding.dimensions": uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions }),

	"generation.provider": stringKey(func(c *Config) *string { return &c.Generation.Provider }),
	"generation.target":   stringKey(func(c *Config) *string { return &c.Generation.Target }),
	"generation.model":    stringKey(func(c *Config) *string { return &c.Generation.Model }),
	"generation.api_key":  stringKey(func(c *Config) *string { return &c.Generation.APIKey }),

	"moderation.provider": stringKey(func(c *Config) *string { return &c.Moderation.Provider }),
	"moderation.target":   stringKey(func(c *Config) *string { return &c.Moderation.Target }),
	"moderation.api_key":  stringKey(func(c *Config) *string { return &c.Moderation.APIKey }),

	"retrieval.namespace": stringKey(func(c *Config) *string { return &c.Retrieval.Namespace }),
	"retrieval.min_relevance_score": {
		get: func(c *Config) string {
			return strconv.FormatFloat(c.Retrieval.MinRelevanceScore, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.min_relevance_score: %w", err)
			}
			if f < 0 || f > 1 {
				return fmt.Errorf("invalid value for retrieval.min_relevance_score: %v not in [0,1]", f)
			}
			c.Retrieval.MinRelevanceScore = f
			return nil
		},
	},
	"retrieval.default_top_k":         uintKey("retrieval.default_top_k", func(c *Config) *uint { return &c.Retrieval.DefaultTopK }),
	"retrieval.fallback_min_results":  uintKey("retrieval.fallback_min_results", func(c *Config) *uint { return &c.Retrieval.FallbackMinResults }),
	"retrieval.soft_assessment_top_k": uintKey("retrieval.soft_assessment_top_k", func(c *Config) *uint { return &c.Retrieval.SoftAssessmentTopK }),
	"retrieval.content_top_k":         uintKey("retrieval.content_top_k", func(c *Config) *uint { return &c.Retrieval.ContentTopK }),

	"chunking.chunk_size":        uintKey("chunking.chunk_size", func(c *Config) *uint { return &c.Chunking.ChunkSize }),
	"chunking.chunk_overlap":     uintKey("chunking.chunk_overlap", func(c *Config) *uint { return &c.Chunking.ChunkOverlap }),
	"chunking.upsert_batch_size": uintKey("chunking.upsert_batch_size", func(c *Config) *uint { return &c.Chunking.UpsertBatchSize }),

	"events.provider": stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.topic":    stringKey(func(c *Config) *string { return &c.Events.Topic }),
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = splitList(v)
			return nil
		},
	},
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
