package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/eventstream"
	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/moderation"
	"github.com/papercomputeco/coursewise/pkg/prompt"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
	"github.com/papercomputeco/coursewise/pkg/structurer"
)

// TutorRequest is a learning or practice question.
type TutorRequest struct {
	Query        string            `json:"query"`
	TopicID      string            `json:"topicId"`
	CourseID     string            `json:"courseId"`
	Mode         prompt.Mode       `json:"mode"`
	StudentLevel string            `json:"studentLevel,omitempty"`
	MasteryScore float64           `json:"masteryScore"`
	History      []generation.Turn `json:"history,omitempty"`
}

// Tutor answers learning and practice questions from retrieved curriculum.
type Tutor struct {
	deps Deps
}

// NewTutor creates a Tutor.
func NewTutor(deps Deps) *Tutor {
	return &Tutor{deps: deps.withDefaults()}
}

// Answer retrieves context with topic to course fallback, generates a
// mode-appropriate reply and screens it. Retrieval and generation failures
// are returned wrapped in ErrProviderUnavailable.
func (t *Tutor) Answer(ctx context.Context, req TutorRequest) (*GeneratedAnswer, error) {
	if req.Mode == "" {
		req.Mode = prompt.ModeLearning
	}
	if err := req.Mode.Validate(); err != nil {
		return nil, err
	}
	if req.Mode.IsAssessment() {
		return nil, fmt.Errorf("%w: tutor: %s", ErrUnsupportedMode, req.Mode)
	}

	started := t.deps.Now()

	chunks, err := t.deps.Retriever.RetrieveWithFallback(ctx, req.Query, req.TopicID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve: %w", ErrProviderUnavailable, err)
	}

	p, err := prompt.Build(req.Mode, prompt.Input{
		Query:        req.Query,
		Context:      chunks,
		StudentLevel: req.StudentLevel,
		MasteryScore: req.MasteryScore,
	})
	if err != nil {
		return nil, err
	}

	budget := t.deps.Budgets.Learning
	if req.Mode == prompt.ModePractice {
		budget = t.deps.Budgets.Practice
	}
	genReq := generation.Request{SystemPrompt: p.System, UserPrompt: p.User, Budget: budget}

	var res *generation.Result
	if len(req.History) > 0 {
		res, err = t.deps.Generator.GenerateWithHistory(ctx, genReq, req.History)
	} else {
		res, err = t.deps.Generator.Generate(ctx, genReq)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: generate: %w", ErrProviderUnavailable, err)
	}

	answer, err := finishAnswer(ctx, t.deps, req.Mode, res, chunks)
	if err != nil {
		return nil, err
	}

	t.deps.Logger.Debug("tutor answer generated",
		zap.String("mode", string(req.Mode)),
		zap.String("topic_id", req.TopicID),
		zap.String("course_id", req.CourseID),
		zap.Int("results", len(chunks)),
		zap.Bool("moderated", answer.Moderated),
	)

	publishAnswer(ctx, t.deps, answer, req.TopicID, req.CourseID, started)
	return answer, nil
}

// finishAnswer moderates, cleans and structures generated text.
func finishAnswer(ctx context.Context, deps Deps, mode prompt.Mode, res *generation.Result, chunks []retrieval.Chunk) (*GeneratedAnswer, error) {
	responseType, err := mode.ResponseType()
	if err != nil {
		return nil, err
	}

	text := res.Text
	verdict := deps.Moderator.Check(ctx, text)
	if verdict.Flagged {
		text = moderation.SafeFallbackMessage
	}

	cleaned := structurer.Clean(text)
	return &GeneratedAnswer{
		Text:         cleaned,
		Mode:         mode,
		ResponseType: responseType,
		Sources:      sourcesFrom(chunks),
		Concepts:     structurer.ExtractConcepts(cleaned),
		Structured:   structurer.StructureResponse(cleaned),
		Usage:        res.Usage,
		Moderated:    verdict.Flagged,
	}, nil
}

func publishAnswer(ctx context.Context, deps Deps, answer *GeneratedAnswer, topicID, courseID string, started time.Time) {
	if deps.Publisher == nil {
		return
	}

	now := deps.Now()
	event := eventstream.NewAnswerGeneratedEvent(now)
	event.Mode = string(answer.Mode)
	event.ResponseType = string(answer.ResponseType)
	event.TopicID = topicID
	event.CourseID = courseID
	for _, s := range answer.Sources {
		event.SourceIDs = append(event.SourceIDs, s.ID)
	}
	event.Usage = answer.Usage
	event.Moderated = answer.Moderated
	event.DurationMs = now.Sub(started).Milliseconds()

	if err := deps.Publisher.PublishAnswer(ctx, event); err != nil {
		deps.Logger.Warn("failed to publish answer event",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}
