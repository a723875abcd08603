// Package servecmder provides the serve command that runs the HTTP API, the
// MCP endpoint and the background ingestion pool together.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/api"
	"github.com/papercomputeco/coursewise/api/mcp"
	"github.com/papercomputeco/coursewise/cmd/coursewise/stack"
	"github.com/papercomputeco/coursewise/pkg/config"
	"github.com/papercomputeco/coursewise/pkg/ingest"
	"github.com/papercomputeco/coursewise/pkg/logger"
)

type ServeCommander struct {
	listen       string
	vectorProv   string
	vectorTarget string
	embedProv    string
	embedTarget  string
	embedModel   string
	embedDims    uint
	genProv      string
	genTarget    string
	genModel     string
	namespace    string
	minScore     float64

	workers uint
	noMCP   bool

	debug   bool
	jsonLog bool
	logger  *zap.Logger
}

const serveLongDesc string = `Run the coursewise services.

Starts the HTTP API on the configured listen address. The API exposes the
tutor, assessment, content and document ingestion endpoints under /v1 and,
unless --no-mcp is given, the curriculum MCP tools at /mcp.

Uploaded documents are queued and embedded by a pool of background workers.

Examples:
  coursewise serve
  coursewise serve --listen :9000 --generation-provider anthropic
  coursewise serve --vector-store-provider qdrant --vector-store-target localhost:6334`

const serveShortDesc string = "Run the coursewise API server"

var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagGenerationProv,
	config.FlagGenerationTgt,
	config.FlagGenerationModel,
	config.FlagNamespace,
	config.FlagMinScore,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cfg, configDir, err := stack.LoadConfig(cmd, serveFlags)
			if err != nil {
				return err
			}

			return cmder.run(cmd.Context(), cfg, configDir)
		},
	}

	fs := config.ProviderFlags
	config.AddStringFlag(cmd, fs, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreProv, &cmder.vectorProv)
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingProv, &cmder.embedProv)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingTgt, &cmder.embedTarget)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingModel, &cmder.embedModel)
	config.AddUintFlag(cmd, fs, config.FlagEmbeddingDims, &cmder.embedDims)
	config.AddStringFlag(cmd, fs, config.FlagGenerationProv, &cmder.genProv)
	config.AddStringFlag(cmd, fs, config.FlagGenerationTgt, &cmder.genTarget)
	config.AddStringFlag(cmd, fs, config.FlagGenerationModel, &cmder.genModel)
	config.AddStringFlag(cmd, fs, config.FlagNamespace, &cmder.namespace)
	config.AddFloat64Flag(cmd, fs, config.FlagMinScore, &cmder.minScore)

	cmd.Flags().UintVarP(&cmder.workers, "workers", "w", 2, "Number of background ingestion workers")
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not mount the MCP endpoint")
	cmd.Flags().BoolVar(&cmder.jsonLog, "json-log", false, "Emit logs as JSON")

	return cmd
}

func (c *ServeCommander) run(ctx context.Context, cfg *config.Config, configDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithJSON(c.jsonLog))
	defer func() { _ = c.logger.Sync() }()

	st, err := stack.Build(ctx, cfg, stack.Options{ConfigDir: configDir}, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			c.logger.Warn("closing stack", zap.Error(err))
		}
	}()

	pool, err := ingest.NewPool(&ingest.PoolConfig{
		Ingester:   st.Ingester,
		NumWorkers: c.workers,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating ingest pool: %w", err)
	}
	defer pool.Close()

	apiConfig := api.Config{
		ListenAddr: cfg.API.Listen,
	}

	if !c.noMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Retriever:  st.Retriever,
			Tutor:      st.Tutor,
			Assessment: st.Assessment,
			Logger:     c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
		apiConfig.MCPHandler = mcpServer.Handler()
	}

	apiServer := api.NewServer(apiConfig, api.Services{
		Tutor:      st.Tutor,
		Assessment: st.Assessment,
		Content:    st.Content,
		Index:      st.Ingester,
		Queue:      pool,
	}, c.logger)

	c.logger.Info("starting api server",
		zap.String("api_addr", cfg.API.Listen),
		zap.String("vector_store", cfg.VectorStore.Provider),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("generation_provider", cfg.Generation.Provider),
		zap.String("generation_model", cfg.Generation.Model),
		zap.Bool("mcp", !c.noMCP),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}
