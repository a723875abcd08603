package pipeline_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/vector"
)

var _ = Describe("Content", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newContent := func(reply string) (*fixture, *pipeline.Content) {
		f := newFixture(reply)
		return f, pipeline.NewContent(f.deps)
	}

	Describe("GenerateQuestions", func() {
		It("parses the first array in the reply", func() {
			f, content := newContent("Here you go:\n```json\n" + `[
  {"question": "What absorbs light?", "options": ["Chlorophyll", "Water", "Oxygen", "Soil"], "correctIndex": 0, "explanation": "Chlorophyll is the pigment.", "difficulty": "easy"},
  {"question": "Broken", "options": ["only one"], "correctIndex": 0}
]` + "\n```")
			f.index.SetResults(vector.Filter{vector.MetaTopicID: "t1", vector.MetaCourseID: "c1"}, []vector.Match{
				match("a", 0.9, "t1", "c1"),
			})

			questions := content.GenerateQuestions(ctx, pipeline.ContentRequest{TopicID: "t1", CourseID: "c1", TopicName: "Photosynthesis", Count: 5})
			Expect(questions).To(HaveLen(1))
			Expect(questions[0].Options[questions[0].CorrectIndex]).To(Equal("Chlorophyll"))

			queries := f.index.Queries()
			Expect(queries).To(HaveLen(1))
			Expect(queries[0].Request.TopK).To(BeNumerically(">=", 5))
			Expect(queries[0].Request.Filter).To(Equal(vector.Filter{vector.MetaTopicID: "t1", vector.MetaCourseID: "c1"}))
			Expect(*f.llm.LastRequest().MaxTokens).To(Equal(2000))
		})

		It("returns an empty list when the reply has no array", func() {
			_, content := newContent("Sorry, I cannot produce questions right now.")

			questions := content.GenerateQuestions(ctx, pipeline.ContentRequest{TopicID: "t1", Count: 3})
			Expect(questions).NotTo(BeNil())
			Expect(questions).To(BeEmpty())
		})

		It("truncates to the requested count", func() {
			_, content := newContent(`[
  {"question": "Q1", "options": ["a", "b"], "correctIndex": 1},
  {"question": "Q2", "options": ["a", "b"], "correctIndex": 0},
  {"question": "Q3", "options": ["a", "b"], "correctIndex": 0}
]`)

			Expect(content.GenerateQuestions(ctx, pipeline.ContentRequest{Count: 2})).To(HaveLen(2))
		})

		It("degrades to an empty list when generation fails", func() {
			f, content := newContent("")
			f.llm.FailWith(errors.New("quota"))

			Expect(content.GenerateQuestions(ctx, pipeline.ContentRequest{Count: 2})).To(BeEmpty())
		})

		It("still generates when retrieval fails", func() {
			f, content := newContent(`[{"question": "Q1", "options": ["a", "b"], "correctIndex": 0}]`)
			f.index.QueryErr = errors.New("index down")

			Expect(content.GenerateQuestions(ctx, pipeline.ContentRequest{Count: 1})).To(HaveLen(1))
			Expect(f.llm.Calls()).To(Equal(1))
		})
	})

	Describe("GenerateFlashcards", func() {
		It("keeps cards with a front and a back", func() {
			_, content := newContent(`[{"front": "ATP", "back": "Energy currency", "hint": "three phosphates"}, {"front": "", "back": "orphan"}]`)

			cards := content.GenerateFlashcards(ctx, pipeline.ContentRequest{TopicID: "t1", Count: 5})
			Expect(cards).To(Equal([]pipeline.Flashcard{{Front: "ATP", Back: "Energy currency", Hint: "three phosphates"}}))
		})

		It("returns an empty list for malformed output", func() {
			_, content := newContent(`[{"front": "ATP", "back": }]`)

			Expect(content.GenerateFlashcards(ctx, pipeline.ContentRequest{Count: 5})).To(BeEmpty())
		})
	})

	Describe("GenerateBossNarrative", func() {
		It("parses the boss object", func() {
			_, content := newContent(`{"name": "The Chloroplast King", "intro": "He glows.", "challenge": "Name the pigment.", "victoryLine": "You win.", "defeatLine": "Try again."}`)

			boss := content.GenerateBossNarrative(ctx, pipeline.BossRequest{TopicID: "t1", TopicName: "Photosynthesis", Level: 3})
			Expect(boss.Name).To(Equal("The Chloroplast King"))
			Expect(boss.Fallback).To(BeFalse())
		})

		It("returns the templated narrative when parsing fails", func() {
			_, content := newContent("no json here")

			boss := content.GenerateBossNarrative(ctx, pipeline.BossRequest{TopicName: "Photosynthesis", Level: 2})
			Expect(boss).To(Equal(pipeline.FallbackBossNarrative("Photosynthesis", 2)))
			Expect(boss.Fallback).To(BeTrue())
			Expect(boss.Name).To(ContainSubstring("Photosynthesis"))
		})

		It("returns the templated narrative when generation fails", func() {
			f, content := newContent("")
			f.llm.FailWith(errors.New("down"))

			boss := content.GenerateBossNarrative(ctx, pipeline.BossRequest{Level: 1})
			Expect(boss.Fallback).To(BeTrue())
		})
	})
})
