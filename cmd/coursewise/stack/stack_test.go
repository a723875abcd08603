package stack_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/coursewise/cmd/coursewise/stack"
	"github.com/papercomputeco/coursewise/pkg/config"
	"github.com/papercomputeco/coursewise/pkg/eventstream/nop"
	"github.com/papercomputeco/coursewise/pkg/logger"
)

var _ = Describe("Build", func() {
	var (
		cfg *config.Config
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = config.NewDefaultConfig()
		cfg.VectorStore.Provider = "memory"
	})

	It("builds the full pipeline from defaults", func() {
		s, err := stack.Build(ctx, cfg, stack.Options{}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)

		Expect(s.Tutor).NotTo(BeNil())
		Expect(s.Assessment).NotTo(BeNil())
		Expect(s.Content).NotTo(BeNil())
		Expect(s.Ingester).NotTo(BeNil())
		Expect(s.Publisher).To(BeAssignableToTypeOf(&nop.Publisher{}))
		Expect(s.LLM.Name()).To(Equal("ollama"))
	})

	It("skips generation when asked", func() {
		s, err := stack.Build(ctx, cfg, stack.Options{SkipGeneration: true}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)

		Expect(s.Ingester).NotTo(BeNil())
		Expect(s.LLM).To(BeNil())
		Expect(s.Tutor).To(BeNil())
	})

	It("creates the sqlite index inside the config directory", func() {
		cfg.VectorStore.Provider = "sqlite"
		cfg.VectorStore.Dimensions = 3

		s, err := stack.Build(ctx, cfg, stack.Options{ConfigDir: GinkgoT().TempDir(), SkipGeneration: true}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())
	})

	It("rejects unknown providers", func() {
		cfg.Generation.Provider = "markov"

		_, err := stack.Build(ctx, cfg, stack.Options{}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("creating generation client")))
	})
})

var _ = Describe("LoadConfig", func() {
	It("lets flags override defaults", func() {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().String("config-dir", GinkgoT().TempDir(), "")

		var model string
		config.AddStringFlag(cmd, config.ProviderFlags, config.FlagGenerationModel, &model)
		Expect(cmd.Flags().Set("generation-model", "mistral")).To(Succeed())

		cfg, _, err := stack.LoadConfig(cmd, []string{config.FlagGenerationModel})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Generation.Model).To(Equal("mistral"))
		Expect(cfg.Embedding.Model).To(Equal("embeddinggemma"))
	})
})
