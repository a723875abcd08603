// Package pinecone provides a vector.Driver over Pinecone's REST data plane.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

const (
	// DefaultAPIVersion pins the X-Pinecone-Api-Version header.
	DefaultAPIVersion = "2025-10"

	// DefaultBaseURL is the control plane URL used to resolve index hosts.
	DefaultBaseURL = "https://api.pinecone.io"

	// DefaultNamespacePrefix is prepended to every namespace.
	DefaultNamespacePrefix = "cw"
)

// Config holds configuration for the Pinecone driver.
type Config struct {
	APIKey string

	// IndexName is resolved to a host via describe_index when IndexHost is empty.
	IndexName string
	IndexHost string

	BaseURL         string
	APIVersion      string
	NamespacePrefix string
	Timeout         time.Duration
}

// Driver implements vector.Driver with Pinecone namespaces.
type Driver struct {
	cfg      Config
	host     string
	nsPrefix string
	http     *http.Client
	logger   *zap.Logger
}

// NewDriver validates configuration and resolves the index host.
func NewDriver(ctx context.Context, cfg Config, logger *zap.Logger) (*Driver, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing Pinecone API key")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.NamespacePrefix == "" {
		cfg.NamespacePrefix = DefaultNamespacePrefix
	}

	d := &Driver{
		cfg:      cfg,
		host:     strings.TrimSpace(cfg.IndexHost),
		nsPrefix: cfg.NamespacePrefix,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}

	if d.host == "" {
		if cfg.IndexName == "" {
			return nil, fmt.Errorf("pinecone index name or host is required")
		}
		desc, err := doJSON[indexDescription](ctx, d, http.MethodGet,
			strings.TrimRight(cfg.BaseURL, "/")+"/indexes/"+cfg.IndexName, nil)
		if err != nil {
			return nil, fmt.Errorf("pinecone describe_index failed: %w", err)
		}
		if strings.TrimSpace(desc.Host) == "" {
			return nil, fmt.Errorf("pinecone describe_index returned empty host")
		}
		d.host = desc.Host
		logger.Warn("pinecone index host not set; resolved via describe_index",
			zap.String("index_name", cfg.IndexName),
			zap.String("index_host", d.host),
		)
	}

	return d, nil
}

func (d *Driver) dataURL(path string) string {
	if strings.HasPrefix(d.host, "http://") || strings.HasPrefix(d.host, "https://") {
		return strings.TrimRight(d.host, "/") + path
	}
	return "https://" + d.host + path
}

func (d *Driver) qualifyNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return d.nsPrefix
	}
	return d.nsPrefix + ":" + ns
}

// pineconeFilter renders equality predicates in Pinecone's filter language.
func pineconeFilter(filter vector.Filter) map[string]any {
	if filter.Empty() {
		return nil
	}
	out := make(map[string]any, len(filter))
	for k, v := range filter {
		out[k] = map[string]any{"$eq": v}
	}
	return out
}

func (d *Driver) Upsert(ctx context.Context, namespace string, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	req := upsertRequest{
		Namespace: d.qualifyNamespace(namespace),
		Vectors:   make([]pineconeVector, len(records)),
	}
	for i, rec := range records {
		req.Vectors[i] = pineconeVector{
			ID:       rec.ID,
			Values:   rec.Vector,
			Metadata: rec.Metadata,
		}
	}

	resp, err := doJSON[upsertResponse](ctx, d, http.MethodPost, d.dataURL("/vectors/upsert"), req)
	if err != nil {
		return fmt.Errorf("upserting vectors: %w", err)
	}

	d.logger.Debug("upserted records to pinecone",
		zap.String("namespace", req.Namespace),
		zap.Int64("count", resp.UpsertedCount),
	)
	return nil
}

func (d *Driver) Query(ctx context.Context, namespace string, req vector.QueryRequest) ([]vector.Match, error) {
	if len(req.Vector) == 0 {
		return nil, fmt.Errorf("query vector required")
	}
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	resp, err := doJSON[queryResponse](ctx, d, http.MethodPost, d.dataURL("/query"), queryRequest{
		Namespace:       d.qualifyNamespace(namespace),
		Vector:          req.Vector,
		TopK:            topK,
		Filter:          pineconeFilter(req.Filter),
		IncludeMetadata: req.IncludeMetadata,
	})
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}

	matches := make([]vector.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		match := vector.Match{
			ID:    m.ID,
			Score: vector.ClampScore(m.Score),
		}
		if req.IncludeMetadata {
			match.Metadata = m.Metadata
		}
		matches = append(matches, match)
	}
	vector.SortMatches(matches)

	d.logger.Debug("queried pinecone",
		zap.String("namespace", namespace),
		zap.Stringer("filter", req.Filter),
		zap.Int("results", len(matches)),
	)
	return matches, nil
}

func (d *Driver) DeleteMany(ctx context.Context, namespace string, filter vector.Filter) error {
	if filter.Empty() {
		return fmt.Errorf("%w: delete requires at least one predicate", vector.ErrInvalidFilter)
	}

	_, err := doJSON[map[string]any](ctx, d, http.MethodPost, d.dataURL("/vectors/delete"), deleteRequest{
		Namespace: d.qualifyNamespace(namespace),
		Filter:    pineconeFilter(filter),
	})
	if err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

func (d *Driver) DescribeStats(ctx context.Context, namespace string) (vector.Stats, error) {
	resp, err := doJSON[statsResponse](ctx, d, http.MethodPost, d.dataURL("/describe_index_stats"), statsRequest{})
	if err != nil {
		return vector.Stats{}, fmt.Errorf("describing index stats: %w", err)
	}

	return vector.Stats{
		Namespace:   namespace,
		VectorCount: resp.Namespaces[d.qualifyNamespace(namespace)].VectorCount,
		Dimension:   resp.Dimension,
	}, nil
}

func (d *Driver) Close() error {
	return nil
}

func doJSON[T any](ctx context.Context, d *Driver, method, url string, body any) (*T, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Api-Key", d.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Pinecone-Api-Version", d.cfg.APIVersion)

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: pinecone http 404: %s", vector.ErrNotFound, string(raw))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: pinecone http %d: %s", vector.ErrConnection, resp.StatusCode, string(raw))
	}

	var out T
	if len(bytes.TrimSpace(raw)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pinecone decode error: %w; raw=%s", err, string(raw))
	}
	return &out, nil
}

var _ vector.Driver = (*Driver)(nil)
