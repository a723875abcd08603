package generation_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/llm"
	testutils "github.com/papercomputeco/coursewise/pkg/utils/test"
)

var _ = Describe("Gateway", func() {
	var (
		client  *testutils.MockLLMClient
		gateway *generation.Gateway
	)

	BeforeEach(func() {
		client = testutils.NewMockLLMClient("Answer text.")
		gateway = generation.NewGateway(client, zap.NewNop())
	})

	It("sends the system prompt and user turn with the budget", func() {
		res, err := gateway.Generate(context.Background(), generation.Request{
			SystemPrompt: "sys",
			UserPrompt:   "user",
			Budget:       generation.Budget{MaxTokens: 150, Temperature: 0.3},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Text).To(Equal("Answer text."))
		Expect(res.Usage.TotalTokens).To(BeNumerically(">", 0))

		req := client.LastRequest()
		Expect(req.System).To(Equal("sys"))
		Expect(req.Messages).To(HaveLen(1))
		Expect(*req.MaxTokens).To(Equal(150))
		Expect(*req.Temperature).To(Equal(0.3))
	})

	It("places history between the system prompt and the new turn", func() {
		_, err := gateway.GenerateWithHistory(context.Background(), generation.Request{
			SystemPrompt: "sys",
			UserPrompt:   "third",
		}, []generation.Turn{
			{Role: "user", Content: "first"},
			{Role: "assistant", Content: "second"},
		})
		Expect(err).NotTo(HaveOccurred())

		req := client.LastRequest()
		Expect(req.Messages).To(HaveLen(3))
		Expect(req.Messages[0].GetText()).To(Equal("first"))
		Expect(req.Messages[1].Role).To(Equal(llm.RoleAssistant))
		Expect(req.Messages[2].GetText()).To(Equal("third"))
	})

	It("propagates provider errors", func() {
		client.FailWith(llm.ErrProviderUnavailable)
		_, err := gateway.Generate(context.Background(), generation.Request{UserPrompt: "x"})
		Expect(errors.Is(err, llm.ErrProviderUnavailable)).To(BeTrue())
		Expect(client.Calls()).To(Equal(1))
	})

	It("has low-temperature short assessment budgets", func() {
		b := generation.DefaultBudgets()
		Expect(b.AssessmentStrict.Temperature).To(Equal(0.3))
		Expect(b.AssessmentStrict.MaxTokens).To(BeNumerically("<", b.Learning.MaxTokens))
		Expect(b.Content.MaxTokens).To(BeNumerically(">", b.Learning.MaxTokens))
	})
})
