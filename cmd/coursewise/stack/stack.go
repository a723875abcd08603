// Package stack assembles the gateways and orchestrators described by a
// config.Config. Commands build one Stack at startup and share it.
package stack

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/cmd/coursewise/sqlitepath"
	"github.com/papercomputeco/coursewise/pkg/config"
	"github.com/papercomputeco/coursewise/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/coursewise/pkg/embeddings/utils"
	"github.com/papercomputeco/coursewise/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/coursewise/pkg/eventstream/utils"
	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/ingest"
	"github.com/papercomputeco/coursewise/pkg/llm"
	"github.com/papercomputeco/coursewise/pkg/llm/provider"
	"github.com/papercomputeco/coursewise/pkg/moderation"
	moderationutils "github.com/papercomputeco/coursewise/pkg/moderation/utils"
	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
	"github.com/papercomputeco/coursewise/pkg/vector"
	vectorutils "github.com/papercomputeco/coursewise/pkg/vector/utils"
)

// Stack holds every constructed component.
type Stack struct {
	Embedder  embeddings.Embedder
	Index     vector.Driver
	LLM       llm.Client
	Publisher eventstream.Publisher

	Retriever *retrieval.Retriever
	Generator *generation.Gateway
	Moderator *moderation.Gate
	Ingester  *ingest.Ingester

	Tutor      *pipeline.Tutor
	Assessment *pipeline.Assessment
	Content    *pipeline.Content

	logger  *zap.Logger
	closers []func() error
}

// Options selects which parts of the stack to build.
type Options struct {
	// ConfigDir overrides the .coursewise/ directory.
	ConfigDir string

	// SkipGeneration builds only the ingestion side.
	SkipGeneration bool
}

// Build constructs a Stack from cfg. On error everything built so far is
// closed.
func Build(ctx context.Context, cfg *config.Config, opts Options, logger *zap.Logger) (*Stack, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Stack{logger: logger}

	if err := s.build(ctx, cfg, opts); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stack) build(ctx context.Context, cfg *config.Config, opts Options) error {
	embedder, err := embeddingutils.NewEmbedder(ctx, &embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		APIKey:       cfg.Embedding.APIKey,
		Dimensions:   cfg.Embedding.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	s.Embedder = embedder
	s.closers = append(s.closers, embedder.Close)

	target := cfg.VectorStore.Target
	if cfg.VectorStore.Provider == vectorutils.ProviderSQLite {
		target, err = sqlitepath.ResolveSQLitePath(target, opts.ConfigDir)
		if err != nil {
			return fmt.Errorf("resolving sqlite path: %w", err)
		}
	}

	dims := cfg.VectorStore.Dimensions
	if dims == 0 {
		dims = cfg.Embedding.Dimensions
	}

	index, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       target,
		Collection:   cfg.VectorStore.Collection,
		APIKey:       cfg.VectorStore.APIKey,
		Dimensions:   dims,
		Logger:       s.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector driver: %w", err)
	}
	s.Index = index
	s.closers = append(s.closers, index.Close)

	s.Ingester = ingest.New(embedder, index, ingest.Config{
		Namespace:       cfg.Retrieval.Namespace,
		ChunkSize:       int(cfg.Chunking.ChunkSize),
		ChunkOverlap:    int(cfg.Chunking.ChunkOverlap),
		UpsertBatchSize: int(cfg.Chunking.UpsertBatchSize),
	}, s.logger)

	s.Retriever = retrieval.New(embedder, index, retrieval.Config{
		Namespace:          cfg.Retrieval.Namespace,
		MinRelevanceScore:  cfg.Retrieval.MinRelevanceScore,
		DefaultTopK:        int(cfg.Retrieval.DefaultTopK),
		FallbackMinResults: int(cfg.Retrieval.FallbackMinResults),
	}, s.logger)

	if opts.SkipGeneration {
		return nil
	}

	client, err := provider.New(ctx, provider.Opts{
		ProviderType: cfg.Generation.Provider,
		TargetURL:    cfg.Generation.Target,
		Model:        cfg.Generation.Model,
		APIKey:       cfg.Generation.APIKey,
	})
	if err != nil {
		return fmt.Errorf("creating generation client: %w", err)
	}
	s.LLM = client
	s.Generator = generation.NewGateway(client, s.logger)
	s.closers = append(s.closers, s.Generator.Close)

	moderator, err := moderationutils.NewProvider(&moderationutils.NewProviderOpts{
		ProviderType: cfg.Moderation.Provider,
		TargetURL:    cfg.Moderation.Target,
		APIKey:       cfg.Moderation.APIKey,
	})
	if err != nil {
		return fmt.Errorf("creating moderation provider: %w", err)
	}
	s.Moderator = moderation.NewGate(moderator, s.logger)

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      cfg.Events.Brokers,
		Topic:        cfg.Events.Topic,
		Logger:       s.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	s.Publisher = publisher
	s.closers = append(s.closers, publisher.Close)

	deps := pipeline.Deps{
		Retriever:          s.Retriever,
		Generator:          s.Generator,
		Moderator:          s.Moderator,
		Publisher:          publisher,
		Budgets:            generation.DefaultBudgets(),
		Logger:             s.logger,
		SoftAssessmentTopK: int(cfg.Retrieval.SoftAssessmentTopK),
		ContentTopK:        int(cfg.Retrieval.ContentTopK),
	}
	s.Tutor = pipeline.NewTutor(deps)
	s.Assessment = pipeline.NewAssessment(deps)
	s.Content = pipeline.NewContent(deps)

	return nil
}

// Close releases components in reverse construction order.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
