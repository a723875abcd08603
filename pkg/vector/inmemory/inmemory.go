// Package inmemory provides a process-local vector.Driver using brute-force
// cosine similarity. It backs tests and `--vector-store-provider memory`.
package inmemory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

// Driver stores records per namespace in memory.
type Driver struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]vector.Record
}

// NewDriver returns an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		namespaces: make(map[string]map[string]vector.Record),
	}
}

func (d *Driver) Upsert(_ context.Context, namespace string, records []vector.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ns, ok := d.namespaces[namespace]
	if !ok {
		ns = make(map[string]vector.Record)
		d.namespaces[namespace] = ns
	}

	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record id is required")
		}
		stored := vector.Record{
			ID:       rec.ID,
			Vector:   append([]float32(nil), rec.Vector...),
			Metadata: maps.Clone(rec.Metadata),
		}
		ns[rec.ID] = stored
	}
	return nil
}

func (d *Driver) Query(_ context.Context, namespace string, req vector.QueryRequest) ([]vector.Match, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	var matches []vector.Match
	for _, rec := range d.namespaces[namespace] {
		if !req.Filter.Matches(rec.Metadata) {
			continue
		}
		m := vector.Match{
			ID:    rec.ID,
			Score: vector.ClampScore(vector.CosineSimilarity(req.Vector, rec.Vector)),
		}
		if req.IncludeMetadata {
			m.Metadata = maps.Clone(rec.Metadata)
		}
		matches = append(matches, m)
	}

	vector.SortMatches(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (d *Driver) DeleteMany(_ context.Context, namespace string, filter vector.Filter) error {
	if filter.Empty() {
		return fmt.Errorf("%w: delete requires at least one predicate", vector.ErrInvalidFilter)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for id, rec := range d.namespaces[namespace] {
		if filter.Matches(rec.Metadata) {
			delete(d.namespaces[namespace], id)
		}
	}
	return nil
}

func (d *Driver) DescribeStats(_ context.Context, namespace string) (vector.Stats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := vector.Stats{Namespace: namespace}
	for _, rec := range d.namespaces[namespace] {
		stats.VectorCount++
		stats.Dimension = len(rec.Vector)
	}
	return stats, nil
}

func (d *Driver) Close() error {
	return nil
}

var _ vector.Driver = (*Driver)(nil)
