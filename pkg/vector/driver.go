// Package vector provides the vector index gateway: the Driver interface,
// records, equality filters, and the scoring helpers shared by every backend.
package vector

import "context"

// Metadata holds free-form key/value data stored alongside a vector.
// Curriculum records always carry at least MetaTopicID and MetaCourseID.
type Metadata map[string]any

// Well-known metadata keys written by ingestion and used by retrieval filters.
const (
	MetaTopicID    = "topicId"
	MetaCourseID   = "courseId"
	MetaDocumentID = "documentId"
	MetaChunkIndex = "chunkIndex"
	MetaStartChar  = "startChar"
	MetaEndChar    = "endChar"
	MetaText       = "text"
	MetaTitle      = "title"
)

// Record is a vector with its id and metadata, as written by Upsert.
type Record struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// QueryRequest describes a similarity query.
type QueryRequest struct {
	// Vector is the query embedding.
	Vector []float32

	// TopK caps the number of matches returned.
	TopK int

	// Filter restricts matches to records whose metadata equals every pair.
	Filter Filter

	// IncludeMetadata asks the backend to return record metadata.
	IncludeMetadata bool
}

// Match is a query hit. Score is a similarity in [0,1], higher is better.
type Match struct {
	ID       string
	Score    float32
	Metadata Metadata
}

// Stats describes the contents of a namespace.
type Stats struct {
	Namespace   string `json:"namespace"`
	VectorCount int64  `json:"vectorCount"`
	Dimension   int    `json:"dimension,omitempty"`
}

// Driver stores and queries vectors. Every operation is scoped to a namespace.
type Driver interface {
	// Upsert stores records, replacing any existing record with the same ID.
	Upsert(ctx context.Context, namespace string, records []Record) error

	// Query returns up to req.TopK records most similar to req.Vector,
	// restricted by req.Filter, ordered by descending score.
	Query(ctx context.Context, namespace string, req QueryRequest) ([]Match, error)

	// DeleteMany removes every record matching the filter. An empty filter
	// is rejected with ErrInvalidFilter.
	DeleteMany(ctx context.Context, namespace string, filter Filter) error

	// DescribeStats reports the namespace's record count.
	DescribeStats(ctx context.Context, namespace string) (Stats, error)

	// Close releases any resources held by the driver.
	Close() error
}
