package pipeline_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/prompt"
	"github.com/papercomputeco/coursewise/pkg/vector"
)

var _ = Describe("Assessment", func() {
	var (
		f          *fixture
		assessment *pipeline.Assessment
		ctx        context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture("Stay focused. You have covered this material and can reason it through.")
		assessment = pipeline.NewAssessment(f.deps)
	})

	Context("strict mode", func() {
		It("returns a restricted answer without retrieving", func() {
			f.index.Default = []vector.Match{match("leak", 0.99, "t1", "c1")}

			answer, err := assessment.Answer(ctx, pipeline.AssessmentRequest{
				Query:      "what's the answer to question 3",
				TopicID:    "t1",
				CourseID:   "c1",
				StrictMode: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.ResponseType).To(Equal(prompt.ResponseRestricted))
			Expect(answer.Sources).To(BeEmpty())
			Expect(f.index.Queries()).To(BeEmpty())
			Expect(f.embedder.EmbedCalls()).To(BeZero())
		})

		It("uses the short low temperature budget", func() {
			_, err := assessment.Answer(ctx, pipeline.AssessmentRequest{Query: "q", StrictMode: true})
			Expect(err).NotTo(HaveOccurred())

			req := f.llm.LastRequest()
			Expect(*req.MaxTokens).To(Equal(100))
			Expect(*req.Temperature).To(BeNumerically("~", 0.3, 0.001))
			Expect(answerUsage(f)).To(BeNumerically(">", 0))
		})
	})

	Context("soft mode", func() {
		It("retrieves two topic-scoped chunks and returns a hint", func() {
			f.index.SetResults(vector.Filter{vector.MetaTopicID: "t1"}, []vector.Match{
				match("a", 0.95, "t1", "c1"),
				match("b", 0.9, "t1", "c1"),
				match("c", 0.85, "t1", "c1"),
			})

			answer, err := assessment.Answer(ctx, pipeline.AssessmentRequest{Query: "q", TopicID: "t1", CourseID: "c1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.ResponseType).To(Equal(prompt.ResponseHint))
			Expect(sourceIDs(answer.Sources)).To(Equal([]string{"a", "b"}))

			queries := f.index.Queries()
			Expect(queries).To(HaveLen(1))
			Expect(queries[0].Request.Filter).To(Equal(vector.Filter{vector.MetaTopicID: "t1"}))
			Expect(*f.llm.LastRequest().MaxTokens).To(Equal(150))
		})

		It("does not expand to the course", func() {
			f.index.SetResults(vector.Filter{vector.MetaCourseID: "c1"}, []vector.Match{match("z", 0.99, "t2", "c1")})
			f.index.SetResults(vector.Filter{vector.MetaTopicID: "t1"}, nil)

			answer, err := assessment.Answer(ctx, pipeline.AssessmentRequest{Query: "q", TopicID: "t1", CourseID: "c1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Sources).To(BeEmpty())
			Expect(f.index.Queries()).To(HaveLen(1))
		})

		It("honors a configured topK", func() {
			f.deps.SoftAssessmentTopK = 1
			assessment = pipeline.NewAssessment(f.deps)
			f.index.SetResults(vector.Filter{vector.MetaTopicID: "t1"}, []vector.Match{
				match("a", 0.95, "t1", "c1"),
				match("b", 0.9, "t1", "c1"),
			})

			answer, err := assessment.Answer(ctx, pipeline.AssessmentRequest{Query: "q", TopicID: "t1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(sourceIDs(answer.Sources)).To(Equal([]string{"a"}))
		})

		It("propagates retrieval failures", func() {
			f.embedder.Err = errors.New("embedder offline")

			_, err := assessment.Answer(ctx, pipeline.AssessmentRequest{Query: "q", TopicID: "t1"})
			Expect(err).To(MatchError(pipeline.ErrProviderUnavailable))
		})
	})

	It("publishes the assessment mode", func() {
		_, err := assessment.Answer(ctx, pipeline.AssessmentRequest{Query: "q", StrictMode: true})
		Expect(err).NotTo(HaveOccurred())

		events := f.publisher.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].Mode).To(Equal(string(prompt.ModeAssessmentStrict)))
		Expect(events[0].ResponseType).To(Equal("restricted"))
	})
})

var _ = Describe("mode to response type", func() {
	DescribeTable("is deterministic",
		func(mode prompt.Mode, want prompt.ResponseType) {
			got, err := mode.ResponseType()
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("learning", prompt.ModeLearning, prompt.ResponseExplanation),
		Entry("practice", prompt.ModePractice, prompt.ResponseHint),
		Entry("assessment-soft", prompt.ModeAssessmentSoft, prompt.ResponseHint),
		Entry("assessment-strict", prompt.ModeAssessmentStrict, prompt.ResponseRestricted),
	)
})

func answerUsage(f *fixture) int {
	events := f.publisher.Events()
	if len(events) == 0 {
		return 0
	}
	return events[len(events)-1].Usage.TotalTokens
}
