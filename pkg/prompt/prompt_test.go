package prompt_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/prompt"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
)

var chunks = []retrieval.Chunk{
	{ID: "d1:0", Text: "Mitochondria produce ATP.", Score: 0.923},
	{ID: "d1:1", Text: "ATP stores energy.", Score: 0.71},
}

var _ = Describe("Mode", func() {
	It("parses valid modes case-insensitively", func() {
		m, err := prompt.ParseMode(" Assessment-Strict ")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(prompt.ModeAssessmentStrict))
	})

	It("rejects unknown modes", func() {
		_, err := prompt.ParseMode("exam")
		Expect(err).To(MatchError(prompt.ErrUnknownMode))
	})

	DescribeTable("maps modes to response types",
		func(m prompt.Mode, want prompt.ResponseType) {
			got, err := m.ResponseType()
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("learning", prompt.ModeLearning, prompt.ResponseExplanation),
		Entry("practice", prompt.ModePractice, prompt.ResponseHint),
		Entry("assessment-soft", prompt.ModeAssessmentSoft, prompt.ResponseHint),
		Entry("assessment-strict", prompt.ModeAssessmentStrict, prompt.ResponseRestricted),
	)
})

var _ = Describe("Build", func() {
	It("confines learning answers to the context and labels relevance", func() {
		p, err := prompt.Build(prompt.ModeLearning, prompt.Input{
			Query:        "What do mitochondria do?",
			Context:      chunks,
			StudentLevel: "grade 9",
			MasteryScore: 55,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.System).To(ContainSubstring("Use only the supplied context"))
		Expect(p.System).To(ContainSubstring("say so plainly"))
		Expect(p.System).To(ContainSubstring("level grade 9, mastery 55/100"))
		Expect(p.User).To(ContainSubstring("[Source 1 | Relevance: 92%]"))
		Expect(p.User).To(ContainSubstring("[Source 2 | Relevance: 71%]"))
		Expect(p.User).To(HaveSuffix("What do mitochondria do?"))
	})

	DescribeTable("selects mastery guidance by bracket",
		func(score float64, tier prompt.MasteryTier, fragment string) {
			Expect(prompt.TierFor(score)).To(Equal(tier))
			p, _ := prompt.Build(prompt.ModeLearning, prompt.Input{Query: "q", MasteryScore: score})
			Expect(p.User).To(ContainSubstring(fragment))
		},
		Entry("beginner", 10.0, prompt.TierBeginner, "Simplify your language"),
		Entry("bridging, still simplified", 35.0, prompt.TierBridging, "Simplify your language"),
		Entry("bridging", 45.0, prompt.TierBridging, "common misconceptions"),
		Entry("moderate", 70.0, prompt.TierModerate, "working understanding"),
		Entry("advanced at the boundary", 80.0, prompt.TierAdvanced, "strong mastery"),
		Entry("advanced with nuance", 95.0, prompt.TierAdvanced, "Advanced nuance"),
	)

	It("does not add the simplify note above 40 or nuance at exactly 80", func() {
		p, _ := prompt.Build(prompt.ModeLearning, prompt.Input{Query: "q", MasteryScore: 80})
		Expect(p.User).NotTo(ContainSubstring("Advanced nuance"))
		Expect(p.User).NotTo(ContainSubstring("Simplify"))
	})

	It("says when no context was found", func() {
		p, _ := prompt.Build(prompt.ModeLearning, prompt.Input{Query: "q"})
		Expect(p.User).To(ContainSubstring("No relevant course material"))
	})

	It("forbids direct answers in practice and marks context reference-only", func() {
		p, err := prompt.Build(prompt.ModePractice, prompt.Input{Query: "solve 2x=4", Context: chunks})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.System).To(ContainSubstring("NEVER give the final answer"))
		Expect(p.System).To(ContainSubstring("Level 1"))
		Expect(p.System).To(ContainSubstring("Level 3"))
		Expect(p.User).To(ContainSubstring("for your reference only, do not reveal directly"))
	})

	It("keeps soft assessment short and answer-free", func() {
		p, err := prompt.Build(prompt.ModeAssessmentSoft, prompt.Input{Query: "is it B?", Context: chunks[:1]})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.System).To(ContainSubstring("Do NOT reveal answers"))
		Expect(p.System).To(ContainSubstring("2 to 3 short sentences"))
	})

	It("refuses in strict assessment and never includes context", func() {
		p, err := prompt.Build(prompt.ModeAssessmentStrict, prompt.Input{
			Query:   "what's the answer to question 3",
			Context: chunks,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.System).To(ContainSubstring("cannot assist during an active exam"))
		Expect(p.User).NotTo(ContainSubstring("Mitochondria"))
	})

	It("rejects unknown modes", func() {
		_, err := prompt.Build(prompt.Mode("quiz"), prompt.Input{})
		Expect(err).To(MatchError(prompt.ErrUnknownMode))
	})
})

var _ = Describe("content prompts", func() {
	It("asks for a JSON question array with the requested count", func() {
		p := prompt.Questions(prompt.QuestionsInput{TopicName: "Cells", Context: chunks, Count: 3, Difficulty: "hard"})
		Expect(p.System).To(ContainSubstring("JSON only"))
		Expect(p.User).To(ContainSubstring(`Write 3 hard-difficulty multiple-choice questions about "Cells"`))
		Expect(p.User).To(ContainSubstring(`"correctIndex"`))
	})

	It("asks for flashcards", func() {
		p := prompt.Flashcards(prompt.FlashcardsInput{Count: 0})
		Expect(p.User).To(ContainSubstring("Write 1 flashcards about this topic"))
	})

	It("asks for a single boss object", func() {
		p := prompt.BossNarrative(prompt.BossInput{TopicName: "Energy", Level: 2})
		Expect(p.User).To(ContainSubstring("level 2 boss"))
		Expect(p.User).To(ContainSubstring(`"victoryLine"`))
	})
})
