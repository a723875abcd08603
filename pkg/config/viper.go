package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/coursewise/pkg/dotdir"
)

// EnvPrefix is the prefix for environment overrides, e.g. COURSEWISE_API_LISTEN.
const EnvPrefix = "COURSEWISE"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the COURSEWISE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (COURSEWISE_API_LISTEN, COURSEWISE_GENERATION_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper layers.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		VectorStore: VectorStoreConfig{
			Provider:   v.GetString("vector_store.provider"),
			Target:     v.GetString("vector_store.target"),
			Collection: v.GetString("vector_store.collection"),
			APIKey:     v.GetString("vector_store.api_key"),
			Dimensions: v.GetUint("vector_store.dimensions"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			APIKey:     v.GetString("embedding.api_key"),
			Dimensions: v.GetUint("embedding.dimensions"),
		},
		Generation: GenerationConfig{
			Provider: v.GetString("generation.provider"),
			Target:   v.GetString("generation.target"),
			Model:    v.GetString("generation.model"),
			APIKey:   v.GetString("generation.api_key"),
		},
		Moderation: ModerationConfig{
			Provider: v.GetString("moderation.provider"),
			Target:   v.GetString("moderation.target"),
			APIKey:   v.GetString("moderation.api_key"),
		},
		Retrieval: RetrievalConfig{
			Namespace:          v.GetString("retrieval.namespace"),
			MinRelevanceScore:  v.GetFloat64("retrieval.min_relevance_score"),
			DefaultTopK:        v.GetUint("retrieval.default_top_k"),
			FallbackMinResults: v.GetUint("retrieval.fallback_min_results"),
			SoftAssessmentTopK: v.GetUint("retrieval.soft_assessment_top_k"),
			ContentTopK:        v.GetUint("retrieval.content_top_k"),
		},
		Chunking: ChunkingConfig{
			ChunkSize:       v.GetUint("chunking.chunk_size"),
			ChunkOverlap:    v.GetUint("chunking.chunk_overlap"),
			UpsertBatchSize: v.GetUint("chunking.upsert_batch_size"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  brokersFromViper(v),
			Topic:    v.GetString("events.topic"),
		},
	}
}

// brokersFromViper accepts either a TOML array or a comma separated env value.
func brokersFromViper(v *viper.Viper) []string {
	brokers := v.GetStringSlice("events.brokers")
	switch len(brokers) {
	case 0:
		return nil
	case 1:
		return splitList(brokers[0])
	}
	return brokers
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Vector store
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)
	v.SetDefault("vector_store.api_key", d.VectorStore.APIKey)
	v.SetDefault("vector_store.dimensions", d.VectorStore.Dimensions)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	// Generation
	v.SetDefault("generation.provider", d.Generation.Provider)
	v.SetDefault("generation.target", d.Generation.Target)
	v.SetDefault("generation.model", d.Generation.Model)
	v.SetDefault("generation.api_key", d.Generation.APIKey)

	// Moderation
	v.SetDefault("moderation.provider", d.Moderation.Provider)
	v.SetDefault("moderation.target", d.Moderation.Target)
	v.SetDefault("moderation.api_key", d.Moderation.APIKey)

	// Retrieval
	v.SetDefault("retrieval.namespace", d.Retrieval.Namespace)
	v.SetDefault("retrieval.min_relevance_score", d.Retrieval.MinRelevanceScore)
	v.SetDefault("retrieval.default_top_k", d.Retrieval.DefaultTopK)
	v.SetDefault("retrieval.fallback_min_results", d.Retrieval.FallbackMinResults)
	v.SetDefault("retrieval.soft_assessment_top_k", d.Retrieval.SoftAssessmentTopK)
	v.SetDefault("retrieval.content_top_k", d.Retrieval.ContentTopK)

	// Chunking
	v.SetDefault("chunking.chunk_size", d.Chunking.ChunkSize)
	v.SetDefault("chunking.chunk_overlap", d.Chunking.ChunkOverlap)
	v.SetDefault("chunking.upsert_batch_size", d.Chunking.UpsertBatchSize)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}
