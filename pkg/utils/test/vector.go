package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

// QueryCall records one Query invocation.
type QueryCall struct {
	Namespace string
	Request   vector.QueryRequest
}

// MockVectorDriver is a test vector driver. Query results are looked up by
// the filter's String() form, falling back to Default.
type MockVectorDriver struct {
	mu sync.Mutex

	ByFilter map[string][]vector.Match
	Default  []vector.Match

	// QueryErr, when set, is returned by Query.
	QueryErr error
	// UpsertErr, when set, is returned by Upsert.
	UpsertErr error

	Upserts   [][]vector.Record
	Deletes   []vector.Filter
	queries   []QueryCall
	Count     int64
	Dimension int
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		ByFilter: make(map[string][]vector.Match),
	}
}

// SetResults registers matches returned for an exact filter.
func (m *MockVectorDriver) SetResults(filter vector.Filter, matches []vector.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ByFilter[filter.String()] = matches
}

func (m *MockVectorDriver) Upsert(_ context.Context, _ string, records []vector.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	batch := make([]vector.Record, len(records))
	copy(batch, records)
	m.Upserts = append(m.Upserts, batch)
	m.Count += int64(len(records))
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, namespace string, req vector.QueryRequest) ([]vector.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, QueryCall{Namespace: namespace, Request: req})
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}

	results, ok := m.ByFilter[req.Filter.String()]
	if !ok {
		results = m.Default
	}
	out := make([]vector.Match, len(results))
	copy(out, results)
	if req.TopK > 0 && len(out) > req.TopK {
		out = out[:req.TopK]
	}
	return out, nil
}

func (m *MockVectorDriver) DeleteMany(_ context.Context, _ string, filter vector.Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes = append(m.Deletes, filter)
	return nil
}

func (m *MockVectorDriver) DescribeStats(_ context.Context, namespace string) (vector.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return vector.Stats{Namespace: namespace, VectorCount: m.Count, Dimension: m.Dimension}, nil
}

// Queries returns the recorded Query calls.
func (m *MockVectorDriver) Queries() []QueryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]QueryCall(nil), m.queries...)
}

func (m *MockVectorDriver) Close() error {
	return nil
}

var _ vector.Driver = (*MockVectorDriver)(nil)
