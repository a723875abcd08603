// Package ingestcmder provides the ingest command that indexes curriculum
// files into the vector store.
package ingestcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/cmd/coursewise/stack"
	"github.com/papercomputeco/coursewise/pkg/cliui"
	"github.com/papercomputeco/coursewise/pkg/config"
	"github.com/papercomputeco/coursewise/pkg/ingest"
	"github.com/papercomputeco/coursewise/pkg/logger"
)

type ingestCommander struct {
	path      string
	topicID   string
	courseID  string
	title     string
	sentences int
	watch     bool
	workers   uint

	vectorProv   string
	vectorTarget string
	embedProv    string
	embedTarget  string
	embedModel   string
	embedDims    uint
	namespace    string
	chunkSize    uint
	chunkOverlap uint

	debug  bool
	logger *zap.Logger
}

const ingestLongDesc string = `Index curriculum files into the vector store.

Accepts a single markdown or text file, or a directory that is walked
recursively. Every chunk is tagged with the given topic and course so the
tutor can restrict retrieval to them. Re-ingesting a file replaces its
previous chunks.

With --watch the directory is indexed once and then watched: changed files
are re-indexed and deleted files are removed from the index.

Examples:
  coursewise ingest ./biology/cells.md --topic bio-cells --course bio-101
  coursewise ingest ./biology --topic bio-cells --course bio-101 --sentences 5
  coursewise ingest ./biology --topic bio-cells --course bio-101 --watch`

const ingestShortDesc string = "Index curriculum files"

var ingestFlags = []string{
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagNamespace,
	config.FlagChunkSize,
	config.FlagChunkOverlap,
}

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file|dir>",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.path = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cfg, configDir, err := stack.LoadConfig(cmd, ingestFlags)
			if err != nil {
				return err
			}

			return cmder.run(cmd.Context(), cfg, configDir)
		},
	}

	cmd.Flags().StringVarP(&cmder.topicID, "topic", "t", "", "Topic identifier for every chunk (required)")
	cmd.Flags().StringVarP(&cmder.courseID, "course", "c", "", "Course identifier for every chunk (required)")
	cmd.Flags().StringVar(&cmder.title, "title", "", "Document title (default: first heading or file name)")
	cmd.Flags().IntVar(&cmder.sentences, "sentences", 0, "Chunk by windows of N sentences instead of characters")
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Keep watching the directory and re-index changes")
	cmd.Flags().UintVar(&cmder.workers, "workers", 2, "Number of ingestion workers in watch mode")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("course")

	fs := config.ProviderFlags
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreProv, &cmder.vectorProv)
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingProv, &cmder.embedProv)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingTgt, &cmder.embedTarget)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingModel, &cmder.embedModel)
	config.AddUintFlag(cmd, fs, config.FlagEmbeddingDims, &cmder.embedDims)
	config.AddStringFlag(cmd, fs, config.FlagNamespace, &cmder.namespace)
	config.AddUintFlag(cmd, fs, config.FlagChunkSize, &cmder.chunkSize)
	config.AddUintFlag(cmd, fs, config.FlagChunkOverlap, &cmder.chunkOverlap)

	return cmd
}

func (c *ingestCommander) template() ingest.Document {
	return ingest.Document{
		TopicID:           c.topicID,
		CourseID:          c.courseID,
		Title:             c.title,
		SentencesPerChunk: c.sentences,
	}
}

func (c *ingestCommander) run(ctx context.Context, cfg *config.Config, configDir string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.path, err)
	}
	if c.watch && !info.IsDir() {
		return errors.New("--watch requires a directory")
	}

	var (
		root = c.path
		docs []ingest.Document
	)
	if info.IsDir() {
		docs, err = ingest.LoadDir(root, c.template())
	} else {
		root = filepath.Dir(c.path)
		var doc ingest.Document
		doc, err = ingest.LoadFile(root, c.path, c.template())
		docs = []ingest.Document{doc}
	}
	if err != nil {
		return err
	}

	st, err := stack.Build(ctx, cfg, stack.Options{ConfigDir: configDir, SkipGeneration: true}, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := c.ingestAll(ctx, st.Ingester, docs); err != nil {
		return err
	}

	if !c.watch {
		return nil
	}
	return c.watchDir(ctx, st.Ingester, root)
}

func (c *ingestCommander) ingestAll(ctx context.Context, ingester *ingest.Ingester, docs []ingest.Document) error {
	if len(docs) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No markdown or text files found."))
		return nil
	}

	fmt.Println()
	chunks, failed := 0, 0
	for _, doc := range docs {
		var res *ingest.Result
		err := cliui.Step(os.Stdout, fmt.Sprintf("Indexing %s", cliui.KeyStyle.Render(doc.ID)), func() error {
			var err error
			res, err = ingester.IngestDocument(ctx, doc)
			return err
		})
		if err != nil {
			failed++
			c.logger.Debug("ingestion failed", zap.String("document_id", doc.ID), zap.Error(err))
			continue
		}
		chunks += res.Chunks
	}

	fmt.Printf("\n  %s %d documents, %d chunks\n\n",
		cliui.HeadingStyle.Render("Indexed"),
		len(docs)-failed,
		chunks,
	)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to index", failed, len(docs))
	}
	return nil
}

func (c *ingestCommander) watchDir(ctx context.Context, ingester *ingest.Ingester, root string) error {
	pool, err := ingest.NewPool(&ingest.PoolConfig{
		Ingester:   ingester,
		NumWorkers: c.workers,
		Logger:     c.logger,
		OnDone: func(doc ingest.Document, res *ingest.Result, err error) {
			if err != nil {
				return
			}
			c.logger.Info("re-indexed document",
				zap.String("document_id", doc.ID),
				zap.Int("chunks", res.Chunks),
			)
		},
	})
	if err != nil {
		return fmt.Errorf("creating ingest pool: %w", err)
	}
	defer pool.Close()

	watcher, err := ingest.NewWatcher(&ingest.WatchConfig{
		Root:     root,
		Template: c.template(),
		Queue:    pool,
		Remover:  ingester,
		Logger:   c.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watcher.Run(ctx)
}
