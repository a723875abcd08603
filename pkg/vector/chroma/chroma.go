// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for curriculum embeddings.
	DefaultCollectionName = "curriculum"

	// namespaceKey is the metadata field that carries the record namespace.
	namespaceKey = "namespace"

	defaultMaxRetries    = 5
	defaultRetryDelay    = 500 * time.Millisecond
	defaultMaxRetryDelay = 5 * time.Second
)

// Driver implements vector.Driver using Chroma's REST API. Namespaces share a
// single cosine-space collection and are separated by a metadata field.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *zap.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// MaxRetries bounds connection attempts while Chroma starts up.
	MaxRetries int

	// RetryDelay is the initial backoff, doubled per attempt up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewDriver creates a new Chroma vector driver, retrying the collection
// lookup with exponential backoff.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	maxDelay := c.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxRetryDelay
	}

	d := &Driver{
		baseURL:        c.URL,
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		collectionID, err := d.getOrCreateCollection(context.Background())
		if err == nil {
			d.collectionID = collectionID
			logger.Info("connected to Chroma",
				zap.String("url", c.URL),
				zap.String("collection", collectionName),
				zap.String("collection_id", collectionID),
			)
			return d, nil
		}

		lastErr = err
		logger.Debug("chroma not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if attempt < maxRetries {
			time.Sleep(delay)
			delay = min(delay*2, maxDelay)
		}
	}

	return nil, fmt.Errorf("%w: getting or creating collection %q after %d attempts: %v",
		vector.ErrConnection, collectionName, maxRetries, lastErr)
}

func (d *Driver) collectionsURL() string {
	return d.baseURL + "/api/v2/tenants/default_tenant/databases/default_database/collections"
}

// getOrCreateCollection gets an existing collection or creates a new one.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.collectionsURL()+"/"+d.collectionName, nil)
	if err != nil {
		return "", fmt.Errorf("creating get request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var collection chromaCollection
		if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
			return "", fmt.Errorf("decoding collection response: %w", err)
		}
		return collection.ID, nil
	}

	var collection chromaCollection
	err = d.post(ctx, d.collectionsURL(), chromaCreateRequest{
		Name:     d.collectionName,
		Metadata: map[string]any{"hnsw:space": "cosine"},
	}, &collection)
	if err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}

	return collection.ID, nil
}

// post sends a JSON body and decodes the JSON response into out when non-nil.
func (d *Driver) post(ctx context.Context, url string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending request: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", vector.ErrConnection, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (d *Driver) recordURL(op string) string {
	return d.collectionsURL() + "/" + d.collectionID + "/" + op
}

// where renders a Chroma where clause for namespace plus filter predicates.
func where(namespace string, filter vector.Filter) map[string]any {
	conds := []map[string]any{
		{namespaceKey: map[string]any{"$eq": namespace}},
	}
	for _, k := range filter.Keys() {
		conds = append(conds, map[string]any{k: map[string]any{"$eq": filter[k]}})
	}
	if len(conds) == 1 {
		return conds[0]
	}
	return map[string]any{"$and": conds}
}

// Upsert stores records, replacing existing records with the same id.
func (d *Driver) Upsert(ctx context.Context, namespace string, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	reqBody := chromaUpsertRequest{
		IDs:        make([]string, len(records)),
		Embeddings: make([][]float32, len(records)),
		Metadatas:  make([]map[string]any, len(records)),
	}
	for i, rec := range records {
		md := maps.Clone(rec.Metadata)
		if md == nil {
			md = map[string]any{}
		}
		md[namespaceKey] = namespace

		reqBody.IDs[i] = namespace + "/" + rec.ID
		reqBody.Embeddings[i] = rec.Vector
		reqBody.Metadatas[i] = md
	}

	if err := d.post(ctx, d.recordURL("upsert"), reqBody, nil); err != nil {
		return fmt.Errorf("failed to upsert records: %w", err)
	}

	d.logger.Debug("upserted records to chroma",
		zap.String("namespace", namespace),
		zap.Int("count", len(records)),
	)

	return nil
}

// Query finds the topK most similar records to the query vector.
func (d *Driver) Query(ctx context.Context, namespace string, req vector.QueryRequest) ([]vector.Match, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	reqBody := chromaQueryRequest{
		QueryEmbeddings: [][]float32{req.Vector},
		NResults:        topK,
		Where:           where(namespace, req.Filter),
		Include:         []string{"metadatas", "distances"},
	}

	var queryResp chromaQueryResponse
	if err := d.post(ctx, d.recordURL("query"), reqBody, &queryResp); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	// Process first group (we only query with one embedding)
	if len(queryResp.IDs) == 0 || len(queryResp.IDs[0]) == 0 {
		return nil, nil
	}

	ids := queryResp.IDs[0]
	var distances []float32
	if len(queryResp.Distances) > 0 {
		distances = queryResp.Distances[0]
	}
	var metadatas []map[string]any
	if len(queryResp.Metadatas) > 0 {
		metadatas = queryResp.Metadatas[0]
	}

	matches := make([]vector.Match, 0, len(ids))
	for i, id := range ids {
		m := vector.Match{ID: stripNamespace(namespace, id)}

		// cosine space: distance = 1 - similarity
		if i < len(distances) {
			m.Score = vector.ClampScore(1 - float64(distances[i]))
		}

		if req.IncludeMetadata && i < len(metadatas) && metadatas[i] != nil {
			md := vector.Metadata(maps.Clone(metadatas[i]))
			delete(md, namespaceKey)
			m.Metadata = md
		}

		matches = append(matches, m)
	}

	vector.SortMatches(matches)

	d.logger.Debug("queried chroma",
		zap.String("namespace", namespace),
		zap.Stringer("filter", req.Filter),
		zap.Int("results", len(matches)),
	)

	return matches, nil
}

// DeleteMany removes every record in the namespace matching filter.
func (d *Driver) DeleteMany(ctx context.Context, namespace string, filter vector.Filter) error {
	if filter.Empty() {
		return fmt.Errorf("%w: delete requires at least one predicate", vector.ErrInvalidFilter)
	}

	if err := d.post(ctx, d.recordURL("delete"), chromaDeleteRequest{Where: where(namespace, filter)}, nil); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	d.logger.Debug("deleted records from chroma",
		zap.String("namespace", namespace),
		zap.Stringer("filter", filter),
	)

	return nil
}

// DescribeStats counts the namespace's records.
func (d *Driver) DescribeStats(ctx context.Context, namespace string) (vector.Stats, error) {
	var getResp chromaGetResponse
	err := d.post(ctx, d.recordURL("get"), chromaGetRequest{
		Where:   where(namespace, nil),
		Include: []string{},
	}, &getResp)
	if err != nil {
		return vector.Stats{}, fmt.Errorf("failed to count records: %w", err)
	}

	return vector.Stats{
		Namespace:   namespace,
		VectorCount: int64(len(getResp.IDs)),
	}, nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

func stripNamespace(namespace, id string) string {
	prefix := namespace + "/"
	if len(id) > len(prefix) && id[:len(prefix)] == prefix {
		return id[len(prefix):]
	}
	return id
}

var _ vector.Driver = (*Driver)(nil)
