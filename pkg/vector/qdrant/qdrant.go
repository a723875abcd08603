// Package qdrant provides a vector.Driver backed by Qdrant's gRPC API.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for curriculum chunks.
	DefaultCollectionName = "curriculum"

	// DefaultPort is Qdrant's gRPC port.
	DefaultPort = 6334

	payloadNamespaceKey = "_cw_namespace"
	payloadRecordIDKey  = "_cw_record_id"
)

// pointIDNamespace seeds deterministic UUIDv5 point ids; Qdrant only accepts
// integers or UUIDs, while record ids are free-form strings.
var pointIDNamespace = uuid.MustParse("6f1c62b2-8a3e-4f0c-9d7e-3a0f6b1c2d44")

// Config holds configuration for the Qdrant driver.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool

	// CollectionName defaults to DefaultCollectionName.
	CollectionName string

	// Dimensions sizes the collection when it has to be created.
	Dimensions uint
}

// Driver implements vector.Driver on a single cosine collection. Namespaces
// are a keyword-indexed payload field.
type Driver struct {
	client     *qdrant.Client
	collection string
	dimensions uint
	logger     *zap.Logger
}

// NewDriver connects to Qdrant and ensures the collection exists.
func NewDriver(ctx context.Context, c Config, logger *zap.Logger) (*Driver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	collection := c.CollectionName
	if collection == "" {
		collection = DefaultCollectionName
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   c.Host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating qdrant client: %v", vector.ErrConnection, err)
	}

	d := &Driver{
		client:     client,
		collection: collection,
		dimensions: c.Dimensions,
		logger:     logger,
	}

	if err := d.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("connected to Qdrant",
		zap.String("host", c.Host),
		zap.Int("port", port),
		zap.String("collection", collection),
		zap.Uint("dimensions", c.Dimensions),
	)

	return d, nil
}

func (d *Driver) ensureCollection(ctx context.Context) error {
	exists, err := d.client.CollectionExists(ctx, d.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %q: %v", vector.ErrConnection, d.collection, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(d.dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection %q: %v", vector.ErrConnection, d.collection, err)
	}

	_, err = d.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: d.collection,
		FieldName:      payloadNamespaceKey,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("%w: indexing namespace field: %v", vector.ErrConnection, err)
	}

	return nil
}

// Upsert stores records as points keyed by a UUIDv5 of namespace and id.
func (d *Driver) Upsert(ctx context.Context, namespace string, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record id is required")
		}
		if uint(len(rec.Vector)) != d.dimensions {
			return fmt.Errorf("record %s has %d dimensions, collection expects %d", rec.ID, len(rec.Vector), d.dimensions)
		}

		payload, err := qdrant.TryValueMap(toPayload(namespace, rec))
		if err != nil {
			return fmt.Errorf("converting metadata for %s: %w", rec.ID, err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(namespace, rec.ID)),
			Vectors: qdrant.NewVectors(rec.Vector...),
			Payload: payload,
		})
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upserting points: %v", vector.ErrConnection, err)
	}

	d.logger.Debug("upserted records to qdrant",
		zap.String("namespace", namespace),
		zap.Int("count", len(points)),
	)

	return nil
}

// Query runs a filtered nearest-neighbour search. Qdrant's cosine score is
// already a similarity.
func (d *Driver) Query(ctx context.Context, namespace string, req vector.QueryRequest) ([]vector.Match, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrant.NewQuery(req.Vector...),
		Filter:         buildFilter(namespace, req.Filter),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying points: %v", vector.ErrConnection, err)
	}

	matches := make([]vector.Match, 0, len(points))
	for _, p := range points {
		id, md := fromPayload(p.GetPayload())
		if id == "" {
			continue
		}
		m := vector.Match{
			ID:    id,
			Score: vector.ClampScore(float64(p.GetScore())),
		}
		if req.IncludeMetadata {
			m.Metadata = md
		}
		matches = append(matches, m)
	}

	vector.SortMatches(matches)

	d.logger.Debug("queried qdrant",
		zap.String("namespace", namespace),
		zap.Stringer("filter", req.Filter),
		zap.Int("results", len(matches)),
	)

	return matches, nil
}

// DeleteMany removes points matching the filter inside the namespace.
func (d *Driver) DeleteMany(ctx context.Context, namespace string, filter vector.Filter) error {
	if filter.Empty() {
		return fmt.Errorf("%w: delete requires at least one predicate", vector.ErrInvalidFilter)
	}

	_, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(buildFilter(namespace, filter)),
	})
	if err != nil {
		return fmt.Errorf("%w: deleting points: %v", vector.ErrConnection, err)
	}

	d.logger.Debug("deleted records from qdrant",
		zap.String("namespace", namespace),
		zap.Stringer("filter", filter),
	)

	return nil
}

// DescribeStats counts points in the namespace exactly.
func (d *Driver) DescribeStats(ctx context.Context, namespace string) (vector.Stats, error) {
	count, err := d.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: d.collection,
		Filter:         buildFilter(namespace, nil),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return vector.Stats{}, fmt.Errorf("%w: counting points: %v", vector.ErrConnection, err)
	}

	return vector.Stats{
		Namespace:   namespace,
		VectorCount: int64(count),
		Dimension:   int(d.dimensions),
	}, nil
}

// Close closes the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

var _ vector.Driver = (*Driver)(nil)
