package vectorutils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/vector"
	"github.com/papercomputeco/coursewise/pkg/vector/chroma"
	"github.com/papercomputeco/coursewise/pkg/vector/inmemory"
	"github.com/papercomputeco/coursewise/pkg/vector/pgvector"
	"github.com/papercomputeco/coursewise/pkg/vector/pinecone"
	"github.com/papercomputeco/coursewise/pkg/vector/qdrant"
	"github.com/papercomputeco/coursewise/pkg/vector/sqlitevec"
)

// Supported vector store providers.
const (
	ProviderSQLite   = "sqlite"
	ProviderMemory   = "memory"
	ProviderChroma   = "chroma"
	ProviderQdrant   = "qdrant"
	ProviderPinecone = "pinecone"
	ProviderPgvector = "pgvector"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// Target is provider specific: a file path for sqlite, a URL for chroma
	// and qdrant, an index host for pinecone, a connection string for pgvector.
	Target string

	// Collection names the collection, index or table.
	Collection string
	APIKey     string
	Dimensions uint
	Logger     *zap.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch o.ProviderType {
	case ProviderSQLite:
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, logger)
	case ProviderMemory:
		return inmemory.NewDriver(), nil
	case ProviderChroma:
		return chroma.NewDriver(chroma.Config{
			URL:            o.Target,
			CollectionName: o.Collection,
		}, logger)
	case ProviderQdrant:
		host, port, useTLS, err := parseQdrantTarget(o.Target)
		if err != nil {
			return nil, err
		}
		return qdrant.NewDriver(ctx, qdrant.Config{
			Host:           host,
			Port:           port,
			UseTLS:         useTLS,
			APIKey:         o.APIKey,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
		}, logger)
	case ProviderPinecone:
		return pinecone.NewDriver(ctx, pinecone.Config{
			APIKey:    o.APIKey,
			IndexName: o.Collection,
			IndexHost: o.Target,
		}, logger)
	case ProviderPgvector:
		return pgvector.NewDriver(ctx, pgvector.Config{
			ConnString: o.Target,
			Table:      o.Collection,
			Dimensions: o.Dimensions,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}

// parseQdrantTarget accepts "host", "host:port" or a URL with an http/https scheme.
func parseQdrantTarget(target string) (string, int, bool, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", 0, false, fmt.Errorf("qdrant target is required")
	}

	useTLS := false
	if strings.Contains(target, "://") {
		u, err := url.Parse(target)
		if err != nil {
			return "", 0, false, fmt.Errorf("parsing qdrant target: %w", err)
		}
		useTLS = u.Scheme == "https"
		target = u.Host
	}

	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return target, 0, useTLS, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid qdrant port %q: %w", portStr, err)
	}
	return host, port, useTLS, nil
}
