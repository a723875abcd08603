// Package pipeline composes retrieval, prompting, generation, moderation and
// structuring into the tutor, assessment and content workflows.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/eventstream"
	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/llm"
	"github.com/papercomputeco/coursewise/pkg/moderation"
	"github.com/papercomputeco/coursewise/pkg/prompt"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
	"github.com/papercomputeco/coursewise/pkg/structurer"
)

// Retriever is the retrieval surface the orchestrators use.
type Retriever interface {
	Retrieve(ctx context.Context, query string, filter retrieval.Filter, topK int) ([]retrieval.Chunk, error)
	RetrieveWithFallback(ctx context.Context, query, topicID, courseID string) ([]retrieval.Chunk, error)
}

// Generator is the generation surface the orchestrators use.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
	GenerateWithHistory(ctx context.Context, req generation.Request, history []generation.Turn) (*generation.Result, error)
}

// Moderator screens generated text.
type Moderator interface {
	Check(ctx context.Context, text string) moderation.Result
}

var (
	_ Retriever = (*retrieval.Retriever)(nil)
	_ Generator = (*generation.Gateway)(nil)
	_ Moderator = (*moderation.Gate)(nil)
)

// Source is a retrieved chunk cited by an answer.
type Source struct {
	ID        string  `json:"id"`
	Relevance float32 `json:"relevance"`
}

// GeneratedAnswer is the result of a tutor or assessment request.
type GeneratedAnswer struct {
	Text         string                `json:"text"`
	Mode         prompt.Mode           `json:"mode"`
	ResponseType prompt.ResponseType   `json:"responseType"`
	Sources      []Source              `json:"sources"`
	Concepts     []string              `json:"concepts"`
	Structured   structurer.Structured `json:"structured"`
	Usage        llm.Usage             `json:"usage"`

	// Moderated is true when the generated text was replaced by the safe
	// fallback message.
	Moderated bool `json:"moderated"`
}

// Deps are the collaborators shared by every orchestrator.
type Deps struct {
	Retriever Retriever
	Generator Generator
	Moderator Moderator
	Publisher eventstream.Publisher
	Budgets   generation.Budgets
	Logger    *zap.Logger

	// SoftAssessmentTopK bounds soft-assessment retrieval.
	SoftAssessmentTopK int

	// ContentTopK bounds content-generation retrieval.
	ContentTopK int

	// Now is the clock used for event timestamps.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.SoftAssessmentTopK <= 0 {
		d.SoftAssessmentTopK = 2
	}
	if d.ContentTopK <= 0 {
		d.ContentTopK = 5
	}
	if d.Budgets == (generation.Budgets{}) {
		d.Budgets = generation.DefaultBudgets()
	}
	if d.Moderator == nil {
		d.Moderator = moderation.NewGate(nil, d.Logger)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func sourcesFrom(chunks []retrieval.Chunk) []Source {
	out := make([]Source, len(chunks))
	for i, c := range chunks {
		out[i] = Source{ID: c.ID, Relevance: c.Score}
	}
	return out
}
