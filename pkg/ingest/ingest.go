// Package ingest chunks curriculum documents, embeds the chunks in one batch
// per document and upserts them into the vector index.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/chunker"
	"github.com/papercomputeco/coursewise/pkg/embeddings"
	"github.com/papercomputeco/coursewise/pkg/vector"
)

// ErrInvalidDocument is returned when a document is missing an identifier.
var ErrInvalidDocument = errors.New("invalid document")

const (
	defaultNamespace       = "curriculum"
	defaultChunkSize       = 1000
	defaultChunkOverlap    = 200
	defaultUpsertBatchSize = 100
)

// Document is a piece of curriculum text to index.
type Document struct {
	ID       string `json:"id"`
	TopicID  string `json:"topicId"`
	CourseID string `json:"courseId"`
	Title    string `json:"title,omitempty"`
	Text     string `json:"text"`

	// SentencesPerChunk switches to sentence-window chunking when positive.
	SentencesPerChunk int `json:"sentencesPerChunk,omitempty"`
}

// Result summarises one ingested document.
type Result struct {
	DocumentID string `json:"documentId"`
	Chunks     int    `json:"chunks"`
	Batches    int    `json:"batches"`
}

// Config configures an Ingester.
type Config struct {
	Namespace       string
	ChunkSize       int
	ChunkOverlap    int
	UpsertBatchSize int
}

// Ingester writes documents to the vector index.
type Ingester struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	cfg      Config
	logger   *zap.Logger
}

// New creates an Ingester. Zero config values take the stock defaults.
func New(embedder embeddings.Embedder, driver vector.Driver, cfg Config, logger *zap.Logger) *Ingester {
	if cfg.Namespace == "" {
		cfg.Namespace = defaultNamespace
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.UpsertBatchSize <= 0 {
		cfg.UpsertBatchSize = defaultUpsertBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{embedder: embedder, driver: driver, cfg: cfg, logger: logger}
}

// IngestDocument replaces any chunks previously stored for doc.ID with the
// chunks of doc.Text. An empty text removes the document and stores nothing.
func (i *Ingester) IngestDocument(ctx context.Context, doc Document) (*Result, error) {
	if strings.TrimSpace(doc.ID) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidDocument)
	}
	if doc.TopicID == "" || doc.CourseID == "" {
		return nil, fmt.Errorf("%w: %s: topic and course are required", ErrInvalidDocument, doc.ID)
	}

	var chunks []chunker.Chunk
	if doc.SentencesPerChunk > 0 {
		chunks = chunker.ChunkSentences(doc.Text, doc.SentencesPerChunk)
	} else {
		chunks = chunker.ChunkText(doc.Text, i.cfg.ChunkSize, i.cfg.ChunkOverlap)
	}

	if err := i.DeleteDocument(ctx, doc.ID); err != nil {
		return nil, err
	}

	result := &Result{DocumentID: doc.ID, Chunks: len(chunks)}
	if len(chunks) == 0 {
		i.logger.Info("document has no content, nothing indexed", zap.String("document_id", doc.ID))
		return result, nil
	}

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Text
		if doc.SentencesPerChunk == 0 && c.Len() > 2*i.cfg.ChunkSize {
			i.logger.Warn("oversized chunk",
				zap.String("document_id", doc.ID),
				zap.Int("chunk_index", c.Index),
				zap.Int("chunk_len", c.Len()),
				zap.Int("chunk_size", i.cfg.ChunkSize),
			)
		}
	}

	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", vector.ErrEmbedding, doc.ID, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %s: got %d embeddings for %d chunks", vector.ErrEmbedding, doc.ID, len(vectors), len(chunks))
	}

	records := make([]vector.Record, len(chunks))
	for n, c := range chunks {
		records[n] = vector.Record{
			ID:     RecordID(doc.ID, c.Index),
			Vector: vectors[n],
			Metadata: vector.Metadata{
				vector.MetaTopicID:    doc.TopicID,
				vector.MetaCourseID:   doc.CourseID,
				vector.MetaDocumentID: doc.ID,
				vector.MetaChunkIndex: c.Index,
				vector.MetaStartChar:  c.StartChar,
				vector.MetaEndChar:    c.EndChar,
				vector.MetaText:       c.Text,
				vector.MetaTitle:      doc.Title,
			},
		}
	}

	for start := 0; start < len(records); start += i.cfg.UpsertBatchSize {
		end := min(start+i.cfg.UpsertBatchSize, len(records))
		if err := i.driver.Upsert(ctx, i.cfg.Namespace, records[start:end]); err != nil {
			return nil, fmt.Errorf("upserting %s batch %d: %w", doc.ID, result.Batches, err)
		}
		result.Batches++
	}

	i.logger.Info("document indexed",
		zap.String("document_id", doc.ID),
		zap.String("topic_id", doc.TopicID),
		zap.String("course_id", doc.CourseID),
		zap.Int("chunks", result.Chunks),
		zap.Int("batches", result.Batches),
	)
	return result, nil
}

// DeleteDocument removes every chunk of a document.
func (i *Ingester) DeleteDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDocument)
	}
	if err := i.driver.DeleteMany(ctx, i.cfg.Namespace, vector.Filter{vector.MetaDocumentID: documentID}); err != nil {
		return fmt.Errorf("deleting document %s: %w", documentID, err)
	}
	return nil
}

// DeleteTopic removes every chunk tagged with the topic.
func (i *Ingester) DeleteTopic(ctx context.Context, topicID string) error {
	if topicID == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidDocument)
	}
	if err := i.driver.DeleteMany(ctx, i.cfg.Namespace, vector.Filter{vector.MetaTopicID: topicID}); err != nil {
		return fmt.Errorf("deleting topic %s: %w", topicID, err)
	}
	return nil
}

// Stats describes the ingestion namespace.
func (i *Ingester) Stats(ctx context.Context) (vector.Stats, error) {
	return i.driver.DescribeStats(ctx, i.cfg.Namespace)
}

// RecordID is the index id of a document chunk.
func RecordID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s:%d", documentID, chunkIndex)
}
