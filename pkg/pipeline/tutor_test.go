package pipeline_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/llm"
	"github.com/papercomputeco/coursewise/pkg/moderation"
	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/prompt"
	"github.com/papercomputeco/coursewise/pkg/vector"
)

const tutorReply = `Photosynthesis turns light into chemical energy.

- **Chlorophyll** absorbs light
- Glucose is produced

Try drawing the cycle from memory.`

var _ = Describe("Tutor", func() {
	var (
		f     *fixture
		tutor *pipeline.Tutor
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture(tutorReply)
		tutor = pipeline.NewTutor(f.deps)
	})

	It("answers a learning question with sources from the topic", func() {
		f.index.SetResults(vector.Filter{vector.MetaTopicID: "t1"}, []vector.Match{
			match("a", 0.92, "t1", "c1"),
			match("b", 0.81, "t1", "c1"),
		})

		answer, err := tutor.Answer(ctx, pipeline.TutorRequest{
			Query:        "what is photosynthesis",
			TopicID:      "t1",
			CourseID:     "c1",
			Mode:         prompt.ModeLearning,
			MasteryScore: 55,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.ResponseType).To(Equal(prompt.ResponseExplanation))
		Expect(sourceIDs(answer.Sources)).To(Equal([]string{"a", "b"}))
		Expect(answer.Sources[0].Relevance).To(BeNumerically("~", 0.92, 0.0001))
		Expect(answer.Concepts).To(Equal([]string{"Chlorophyll"}))
		Expect(answer.Structured.KeyPoints).To(HaveLen(2))
		Expect(answer.Structured.SuggestedPractice).To(ContainSubstring("Try drawing"))
		Expect(answer.Usage.TotalTokens).To(BeNumerically(">", 0))
		Expect(answer.Moderated).To(BeFalse())

		req := f.llm.LastRequest()
		Expect(req.MaxTokens).NotTo(BeNil())
		Expect(*req.MaxTokens).To(Equal(1000))
		Expect(req.Messages[len(req.Messages)-1].GetText()).To(ContainSubstring("text of a"))
	})

	It("expands to the course when the topic is sparse", func() {
		f.index.SetResults(vector.Filter{vector.MetaTopicID: "t1"}, []vector.Match{
			match("a", 0.75, "t1", "c1"),
		})
		f.index.SetResults(vector.Filter{vector.MetaCourseID: "c1"}, []vector.Match{
			match("z", 0.95, "t9", "c1"),
			match("a", 0.75, "t1", "c1"),
		})

		answer, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", TopicID: "t1", CourseID: "c1", Mode: prompt.ModeLearning})
		Expect(err).NotTo(HaveOccurred())
		Expect(sourceIDs(answer.Sources)).To(Equal([]string{"z", "a"}))
		Expect(f.index.Queries()).To(HaveLen(2))
	})

	It("uses the practice budget and maps practice to a hint", func() {
		answer, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", TopicID: "t1", Mode: prompt.ModePractice})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.ResponseType).To(Equal(prompt.ResponseHint))
		Expect(*f.llm.LastRequest().MaxTokens).To(Equal(500))
	})

	It("sends prior turns between the system prompt and the new question", func() {
		_, err := tutor.Answer(ctx, pipeline.TutorRequest{
			Query:   "and then?",
			TopicID: "t1",
			History: []generation.Turn{
				{Role: "user", Content: "first"},
				{Role: "assistant", Content: "reply"},
			},
		})
		Expect(err).NotTo(HaveOccurred())

		msgs := f.llm.LastRequest().Messages
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[0].GetText()).To(Equal("first"))
		Expect(msgs[1].Role).To(Equal(llm.RoleAssistant))
		Expect(msgs[2].GetText()).To(ContainSubstring("and then?"))
	})

	It("returns ErrProviderUnavailable when retrieval fails", func() {
		cause := errors.New("index down")
		f.index.QueryErr = cause

		_, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", TopicID: "t1", Mode: prompt.ModeLearning})
		Expect(err).To(MatchError(pipeline.ErrProviderUnavailable))
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(f.llm.Calls()).To(BeZero())
	})

	It("returns ErrProviderUnavailable when generation fails", func() {
		f.llm.FailWith(errors.New("503"))

		_, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", TopicID: "t1", Mode: prompt.ModeLearning})
		Expect(err).To(MatchError(pipeline.ErrProviderUnavailable))
		Expect(f.publisher.Events()).To(BeEmpty())
	})

	It("substitutes the safe message when moderation flags the answer", func() {
		f.moderator.Verdict = moderation.Result{Flagged: true, Categories: []string{"violence"}}

		answer, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", TopicID: "t1", Mode: prompt.ModePractice})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Text).To(Equal(moderation.SafeFallbackMessage))
		Expect(answer.ResponseType).To(Equal(prompt.ResponseHint))
		Expect(answer.Moderated).To(BeTrue())
	})

	It("lets content through when moderation is unavailable", func() {
		f.moderator.Err = moderation.ErrModerationUnavailable

		answer, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", TopicID: "t1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Moderated).To(BeFalse())
		Expect(answer.Text).To(ContainSubstring("Photosynthesis"))
	})

	It("publishes an answer event", func() {
		f.index.SetResults(vector.Filter{vector.MetaTopicID: "t1"}, []vector.Match{
			match("a", 0.9, "t1", "c1"),
			match("b", 0.8, "t1", "c1"),
		})

		_, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", TopicID: "t1", CourseID: "c1"})
		Expect(err).NotTo(HaveOccurred())

		events := f.publisher.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].Mode).To(Equal("learning"))
		Expect(events[0].ResponseType).To(Equal("explanation"))
		Expect(events[0].SourceIDs).To(Equal([]string{"a", "b"}))
		Expect(events[0].TopicID).To(Equal("t1"))
	})

	It("still answers when publishing fails", func() {
		f.publisher.Err = errors.New("broker down")

		answer, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", TopicID: "t1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).NotTo(BeNil())
	})

	It("rejects assessment modes", func() {
		_, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", Mode: prompt.ModeAssessmentStrict})
		Expect(err).To(MatchError(pipeline.ErrUnsupportedMode))
	})

	It("rejects unknown modes", func() {
		_, err := tutor.Answer(ctx, pipeline.TutorRequest{Query: "q", Mode: prompt.Mode("exam")})
		Expect(err).To(MatchError(prompt.ErrUnknownMode))
	})
})
