package provider_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/llm/provider"
)

var _ = Describe("New", func() {
	DescribeTable("builds clients by name",
		func(name, apiKey string) {
			c, err := provider.New(context.Background(), provider.Opts{ProviderType: name, APIKey: apiKey})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name()).To(Equal(name))
		},
		Entry("ollama", provider.Ollama, ""),
		Entry("openai", provider.OpenAI, "sk-test"),
		Entry("anthropic", provider.Anthropic, "ak-test"),
	)

	It("lists supported providers in errors", func() {
		_, err := provider.New(context.Background(), provider.Opts{ProviderType: "bedrock"})
		Expect(err).To(MatchError(ContainSubstring("supported")))
	})
})
