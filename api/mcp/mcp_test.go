package mcp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/api/mcp"
	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/logger"
	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
	testutils "github.com/papercomputeco/coursewise/pkg/utils/test"
)

var _ = Describe("MCP Server", func() {
	var cfg mcp.Config

	BeforeEach(func() {
		log := logger.Nop()
		retriever := retrieval.New(testutils.NewMockEmbedder(), testutils.NewMockVectorDriver(), retrieval.DefaultConfig(), log)
		deps := pipeline.Deps{
			Retriever: retriever,
			Generator: generation.NewGateway(testutils.NewMockLLMClient("ok"), log),
			Logger:    log,
		}
		cfg = mcp.Config{
			Retriever:  retriever,
			Tutor:      pipeline.NewTutor(deps),
			Assessment: pipeline.NewAssessment(deps),
			Logger:     log,
		}
	})

	Describe("NewServer", func() {
		It("creates a server with valid config", func() {
			server, err := mcp.NewServer(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})

		It("returns an error when the retriever is nil", func() {
			cfg.Retriever = nil
			_, err := mcp.NewServer(cfg)
			Expect(err).To(MatchError(ContainSubstring("retriever is required")))
		})

		It("returns an error when the tutor is nil", func() {
			cfg.Tutor = nil
			_, err := mcp.NewServer(cfg)
			Expect(err).To(MatchError(ContainSubstring("tutor is required")))
		})

		It("returns an error when the logger is nil", func() {
			cfg.Logger = nil
			_, err := mcp.NewServer(cfg)
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("builds an empty server in noop mode", func() {
			server, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})
	})
})
