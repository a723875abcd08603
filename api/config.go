// Package api provides the HTTP surface over the tutoring, assessment,
// content and ingestion pipelines.
package api

import (
	"context"
	"net/http"

	"github.com/papercomputeco/coursewise/pkg/ingest"
	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/vector"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// MCPHandler, when set, is mounted at /mcp.
	MCPHandler http.Handler
}

// Tutor answers learning and practice questions.
type Tutor interface {
	Answer(ctx context.Context, req pipeline.TutorRequest) (*pipeline.GeneratedAnswer, error)
}

// Assessor answers questions asked during assessments.
type Assessor interface {
	Answer(ctx context.Context, req pipeline.AssessmentRequest) (*pipeline.GeneratedAnswer, error)
}

// ContentGenerator produces gamified study content.
type ContentGenerator interface {
	GenerateQuestions(ctx context.Context, req pipeline.ContentRequest) []pipeline.Question
	GenerateFlashcards(ctx context.Context, req pipeline.ContentRequest) []pipeline.Flashcard
	GenerateBossNarrative(ctx context.Context, req pipeline.BossRequest) pipeline.BossNarrative
}

// Index manages indexed curriculum.
type Index interface {
	DeleteDocument(ctx context.Context, documentID string) error
	Stats(ctx context.Context) (vector.Stats, error)
}

// IngestQueue accepts documents for asynchronous ingestion.
type IngestQueue interface {
	Enqueue(job ingest.Job) bool
}

// Services are the pipelines the server exposes. Nil services answer 503.
type Services struct {
	Tutor      Tutor
	Assessment Assessor
	Content    ContentGenerator
	Index      Index
	Queue      IngestQueue
}

var (
	_ Tutor            = (*pipeline.Tutor)(nil)
	_ Assessor         = (*pipeline.Assessment)(nil)
	_ ContentGenerator = (*pipeline.Content)(nil)
	_ Index            = (*ingest.Ingester)(nil)
	_ IngestQueue      = (*ingest.Pool)(nil)
)
