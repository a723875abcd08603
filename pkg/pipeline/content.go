package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/prompt"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
	"github.com/papercomputeco/coursewise/pkg/structured"
)

// ContentRequest scopes a bulk content generation call.
type ContentRequest struct {
	TopicID    string `json:"topicId"`
	CourseID   string `json:"courseId"`
	TopicName  string `json:"topicName"`
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty,omitempty"`
}

// BossRequest scopes a boss narrative.
type BossRequest struct {
	TopicID   string `json:"topicId"`
	CourseID  string `json:"courseId"`
	TopicName string `json:"topicName"`
	Level     int    `json:"level"`
}

// Question is a generated multiple-choice question.
type Question struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Difficulty   string   `json:"difficulty"`
}

// Flashcard is a generated flashcard.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
	Hint  string `json:"hint,omitempty"`
}

// BossNarrative is a generated topic boss character.
type BossNarrative struct {
	Name        string `json:"name"`
	Intro       string `json:"intro"`
	Challenge   string `json:"challenge"`
	VictoryLine string `json:"victoryLine"`
	DefeatLine  string `json:"defeatLine"`

	// Fallback is true when the templated narrative was returned.
	Fallback bool `json:"fallback"`
}

// Content generates gamified study content. It never returns an error:
// malformed output and provider failures degrade to empty results or a
// templated narrative.
type Content struct {
	deps Deps
}

// NewContent creates a Content orchestrator.
func NewContent(deps Deps) *Content {
	return &Content{deps: deps.withDefaults()}
}

// GenerateQuestions returns up to req.Count valid questions.
func (c *Content) GenerateQuestions(ctx context.Context, req ContentRequest) []Question {
	chunks := c.retrieve(ctx, req.TopicName, req.TopicID, req.CourseID)
	p := prompt.Questions(prompt.QuestionsInput{
		TopicName:  req.TopicName,
		Context:    chunks,
		Count:      req.Count,
		Difficulty: req.Difficulty,
	})

	raw, ok := c.generate(ctx, "questions", p)
	if !ok {
		return []Question{}
	}

	res := structured.Array(raw, func(qs []Question) error {
		if len(qs) == 0 {
			return errors.New("no questions")
		}
		return nil
	})
	questions, parsed := res.Get()
	if !parsed {
		c.deps.Logger.Warn("could not parse generated questions",
			zap.String("topic_id", req.TopicID),
			zap.String("reason", res.Reason()),
		)
		return []Question{}
	}

	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if validQuestion(q) {
			out = append(out, q)
		}
	}
	return limit(out, req.Count)
}

// GenerateFlashcards returns up to req.Count flashcards.
func (c *Content) GenerateFlashcards(ctx context.Context, req ContentRequest) []Flashcard {
	chunks := c.retrieve(ctx, req.TopicName, req.TopicID, req.CourseID)
	p := prompt.Flashcards(prompt.FlashcardsInput{
		TopicName: req.TopicName,
		Context:   chunks,
		Count:     req.Count,
	})

	raw, ok := c.generate(ctx, "flashcards", p)
	if !ok {
		return []Flashcard{}
	}

	res := structured.Array[Flashcard](raw, nil)
	cards, parsed := res.Get()
	if !parsed {
		c.deps.Logger.Warn("could not parse generated flashcards",
			zap.String("topic_id", req.TopicID),
			zap.String("reason", res.Reason()),
		)
		return []Flashcard{}
	}

	out := make([]Flashcard, 0, len(cards))
	for _, fc := range cards {
		if strings.TrimSpace(fc.Front) != "" && strings.TrimSpace(fc.Back) != "" {
			out = append(out, fc)
		}
	}
	return limit(out, req.Count)
}

// GenerateBossNarrative returns a boss character for the topic, or a
// templated one when generation or parsing fails.
func (c *Content) GenerateBossNarrative(ctx context.Context, req BossRequest) BossNarrative {
	chunks := c.retrieve(ctx, req.TopicName, req.TopicID, req.CourseID)
	p := prompt.BossNarrative(prompt.BossInput{
		TopicName: req.TopicName,
		Context:   chunks,
		Level:     req.Level,
	})

	fallback := FallbackBossNarrative(req.TopicName, req.Level)

	raw, ok := c.generate(ctx, "boss_narrative", p)
	if !ok {
		return fallback
	}

	res := structured.Object(raw, func(b BossNarrative) error {
		if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Challenge) == "" {
			return errors.New("name and challenge are required")
		}
		return nil
	})
	if !res.IsParsed() {
		c.deps.Logger.Warn("could not parse generated boss narrative",
			zap.String("topic_id", req.TopicID),
			zap.String("reason", res.Reason()),
		)
	}
	return res.OrElse(fallback)
}

// FallbackBossNarrative is the deterministic narrative used when generation
// does not produce one.
func FallbackBossNarrative(topicName string, level int) BossNarrative {
	name := strings.TrimSpace(topicName)
	if name == "" {
		name = "the Unknown"
	}
	level = max(level, 1)
	return BossNarrative{
		Name:        fmt.Sprintf("Guardian of %s", name),
		Intro:       fmt.Sprintf("A level %d guardian blocks the path. It has studied %s for ages and will not yield easily.", level, name),
		Challenge:   fmt.Sprintf("Answer the guardian's questions on %s to pass.", name),
		VictoryLine: "The guardian bows. Your knowledge has carried the day.",
		DefeatLine:  "The guardian stands firm. Review the material and return stronger.",
		Fallback:    true,
	}
}

// retrieve scopes to both topic and course. Failures degrade to no context.
func (c *Content) retrieve(ctx context.Context, topicName, topicID, courseID string) []retrieval.Chunk {
	query := strings.TrimSpace(topicName)
	if query == "" {
		query = "key concepts"
	}

	chunks, err := c.deps.Retriever.Retrieve(ctx, query, retrieval.Filter{TopicID: topicID, CourseID: courseID}, c.deps.ContentTopK)
	if err != nil {
		c.deps.Logger.Warn("content retrieval failed, continuing without context",
			zap.String("topic_id", topicID),
			zap.String("course_id", courseID),
			zap.Error(err),
		)
		return nil
	}
	return chunks
}

func (c *Content) generate(ctx context.Context, kind string, p prompt.Prompt) (string, bool) {
	res, err := c.deps.Generator.Generate(ctx, generation.Request{
		SystemPrompt: p.System,
		UserPrompt:   p.User,
		Budget:       c.deps.Budgets.Content,
	})
	if err != nil {
		c.deps.Logger.Warn("content generation failed",
			zap.String("kind", kind),
			zap.Error(err),
		)
		return "", false
	}
	return res.Text, true
}

func validQuestion(q Question) bool {
	if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
		return false
	}
	return q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
