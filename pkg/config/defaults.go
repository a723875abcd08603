package config

const (
	defaultAPIListen = ":8081"

	defaultOllamaTarget = "http://localhost:11434"

	defaultVectorProvider   = "sqlite"
	defaultVectorCollection = "curriculum"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768

	defaultGenerationProvider = "ollama"
	defaultGenerationModel    = "llama3.2"

	defaultModerationProvider = "none"

	defaultNamespace          = "curriculum"
	defaultMinRelevanceScore  = 0.7
	defaultTopK               = 5
	defaultFallbackMinResults = 2
	defaultSoftAssessmentTopK = 2
	defaultContentTopK        = 5

	defaultChunkSize       = 1000
	defaultChunkOverlap    = 200
	defaultUpsertBatchSize = 100

	defaultEventsProvider = "none"
	defaultEventsTopic    = "coursewise.answers"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultVectorCollection,
			Dimensions: defaultEmbeddingDimensions,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultOllamaTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Generation: GenerationConfig{
			Provider: defaultGenerationProvider,
			Target:   defaultOllamaTarget,
			Model:    defaultGenerationModel,
		},
		Moderation: ModerationConfig{
			Provider: defaultModerationProvider,
		},
		Retrieval: RetrievalConfig{
			Namespace:          defaultNamespace,
			MinRelevanceScore:  defaultMinRelevanceScore,
			DefaultTopK:        defaultTopK,
			FallbackMinResults: defaultFallbackMinResults,
			SoftAssessmentTopK: defaultSoftAssessmentTopK,
			ContentTopK:        defaultContentTopK,
		},
		Chunking: ChunkingConfig{
			ChunkSize:       defaultChunkSize,
			ChunkOverlap:    defaultChunkOverlap,
			UpsertBatchSize: defaultUpsertBatchSize,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
