package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/prompt"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
)

// AssessmentRequest is a question asked while an assessment is in progress.
type AssessmentRequest struct {
	Query        string  `json:"query"`
	TopicID      string  `json:"topicId"`
	CourseID     string  `json:"courseId"`
	StrictMode   bool    `json:"strictMode"`
	StudentLevel string  `json:"studentLevel,omitempty"`
	MasteryScore float64 `json:"masteryScore"`
}

// Mode returns the prompt mode the request runs under.
func (r AssessmentRequest) Mode() prompt.Mode {
	if r.StrictMode {
		return prompt.ModeAssessmentStrict
	}
	return prompt.ModeAssessmentSoft
}

// Assessment answers during assessments with hints or refusals only.
type Assessment struct {
	deps Deps
}

// NewAssessment creates an Assessment orchestrator.
func NewAssessment(deps Deps) *Assessment {
	return &Assessment{deps: deps.withDefaults()}
}

// Answer returns a restricted reply in strict mode without touching the
// retriever, or a short hint grounded on a narrow topic-only retrieval.
func (a *Assessment) Answer(ctx context.Context, req AssessmentRequest) (*GeneratedAnswer, error) {
	mode := req.Mode()
	started := a.deps.Now()

	var (
		chunks []retrieval.Chunk
		budget generation.Budget
	)
	switch mode {
	case prompt.ModeAssessmentStrict:
		budget = a.deps.Budgets.AssessmentStrict
	case prompt.ModeAssessmentSoft:
		budget = a.deps.Budgets.AssessmentSoft
		var err error
		chunks, err = a.deps.Retriever.Retrieve(ctx, req.Query, retrieval.Filter{TopicID: req.TopicID}, a.deps.SoftAssessmentTopK)
		if err != nil {
			return nil, fmt.Errorf("%w: retrieve: %w", ErrProviderUnavailable, err)
		}
	default:
		return nil, fmt.Errorf("%w: assessment: %s", ErrUnsupportedMode, mode)
	}

	p, err := prompt.Build(mode, prompt.Input{
		Query:        req.Query,
		Context:      chunks,
		StudentLevel: req.StudentLevel,
		MasteryScore: req.MasteryScore,
	})
	if err != nil {
		return nil, err
	}

	res, err := a.deps.Generator.Generate(ctx, generation.Request{
		SystemPrompt: p.System,
		UserPrompt:   p.User,
		Budget:       budget,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generate: %w", ErrProviderUnavailable, err)
	}

	answer, err := finishAnswer(ctx, a.deps, mode, res, chunks)
	if err != nil {
		return nil, err
	}

	a.deps.Logger.Debug("assessment answer generated",
		zap.String("mode", string(mode)),
		zap.String("topic_id", req.TopicID),
		zap.Int("results", len(chunks)),
		zap.Bool("moderated", answer.Moderated),
	)

	publishAnswer(ctx, a.deps, answer, req.TopicID, req.CourseID, started)
	return answer, nil
}
