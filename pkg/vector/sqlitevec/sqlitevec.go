// Package sqlitevec provides a local SQLite-backed vector index using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

// Driver implements vector.Driver using SQLite with sqlite-vec.
//
// Embeddings live in a vec0 virtual table keyed by rowid. A companion table
// maps each rowid to its namespace, record id and JSON metadata so queries can
// apply equality filters before ranking by cosine distance.
type Driver struct {
	db         *sql.DB
	dimensions uint
	logger     *zap.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewDriver creates a new SQLite vector driver backed by sqlite-vec.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS vec_records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			namespace TEXT NOT NULL,
			record_id TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			UNIQUE(namespace, record_id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating records table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS vec_embeddings USING vec0(embedding float[%d])`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector driver initialized",
		zap.String("db_path", c.DBPath),
		zap.Uint("dimensions", c.Dimensions),
		zap.String("vec_version", vecVersion),
	)

	return &Driver{
		db:         db,
		dimensions: c.Dimensions,
		logger:     logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Upsert stores records, replacing existing records with the same id.
func (d *Driver) Upsert(ctx context.Context, namespace string, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", vector.ErrConnection, err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if uint(len(rec.Vector)) != d.dimensions {
			return fmt.Errorf("record %s has %d dimensions, index expects %d", rec.ID, len(rec.Vector), d.dimensions)
		}

		md, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %s: %w", rec.ID, err)
		}
		embBlob := serializeFloat32(rec.Vector)

		var rowID int64
		err = tx.QueryRowContext(ctx,
			`SELECT rowid FROM vec_records WHERE namespace = ? AND record_id = ?`,
			namespace, rec.ID,
		).Scan(&rowID)

		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx,
				`UPDATE vec_records SET metadata = ? WHERE rowid = ?`, string(md), rowID,
			); err != nil {
				return fmt.Errorf("updating record %s: %w", rec.ID, err)
			}

			// vec0 does not support UPDATE
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM vec_embeddings WHERE rowid = ?`, rowID,
			); err != nil {
				return fmt.Errorf("deleting old embedding for %s: %w", rec.ID, err)
			}

		case errors.Is(err, sql.ErrNoRows):
			result, err := tx.ExecContext(ctx,
				`INSERT INTO vec_records(namespace, record_id, metadata) VALUES (?, ?, ?)`,
				namespace, rec.ID, string(md),
			)
			if err != nil {
				return fmt.Errorf("inserting record %s: %w", rec.ID, err)
			}

			rowID, err = result.LastInsertId()
			if err != nil {
				return fmt.Errorf("getting rowid for %s: %w", rec.ID, err)
			}

		default:
			return fmt.Errorf("checking for existing record %s: %w", rec.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vec_embeddings(rowid, embedding) VALUES (?, ?)`,
			rowID, embBlob,
		); err != nil {
			return fmt.Errorf("inserting embedding for %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", vector.ErrConnection, err)
	}

	d.logger.Debug("upserted records to sqlite-vec",
		zap.String("namespace", namespace),
		zap.Int("count", len(records)),
	)

	return nil
}

// whereClause renders namespace and metadata equality predicates.
func whereClause(namespace string, filter vector.Filter) (string, []any) {
	clauses := []string{"r.namespace = ?"}
	args := []any{namespace}
	for _, k := range filter.Keys() {
		clauses = append(clauses, "CAST(json_extract(r.metadata, ?) AS TEXT) = ?")
		args = append(args, "$."+k, filter[k])
	}
	return strings.Join(clauses, " AND "), args
}

// Query ranks the namespace's filtered records by cosine distance.
func (d *Driver) Query(ctx context.Context, namespace string, req vector.QueryRequest) ([]vector.Match, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	where, args := whereClause(namespace, req.Filter)
	query := fmt.Sprintf(`
		SELECT
			r.record_id,
			r.metadata,
			vec_distance_cosine(ve.embedding, ?) AS distance
		FROM vec_records r
		INNER JOIN vec_embeddings ve ON ve.rowid = r.rowid
		WHERE %s
		ORDER BY distance
		LIMIT ?
	`, where)

	queryArgs := append([]any{serializeFloat32(req.Vector)}, args...)
	queryArgs = append(queryArgs, topK)

	rows, err := d.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %v", vector.ErrConnection, err)
	}
	defer rows.Close()

	var matches []vector.Match
	for rows.Next() {
		var (
			id       string
			rawMeta  string
			distance float64
		)
		if err := rows.Scan(&id, &rawMeta, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		m := vector.Match{
			ID: id,
			// cosine distance is 1 - similarity
			Score: vector.ClampScore(1 - distance),
		}
		if req.IncludeMetadata {
			md := vector.Metadata{}
			if err := json.Unmarshal([]byte(rawMeta), &md); err != nil {
				return nil, fmt.Errorf("decoding metadata for %s: %w", id, err)
			}
			m.Metadata = md
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec",
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

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", vector.ErrConnection, err)
	}
	defer tx.Rollback()

	where, args := whereClause(namespace, filter)
	rows, err := tx.QueryContext(ctx, `SELECT r.rowid FROM vec_records r WHERE `+where, args...)
	if err != nil {
		return fmt.Errorf("querying rowids for deletion: %w", err)
	}

	var rowIDs []int64
	for rows.Next() {
		var rowID int64
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning rowid: %w", err)
		}
		rowIDs = append(rowIDs, rowID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rowids: %w", err)
	}

	for _, rowID := range rowIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM vec_embeddings WHERE rowid = ?`, rowID); err != nil {
			return fmt.Errorf("deleting embedding rowid %d: %w", rowID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM vec_records WHERE rowid = ?`, rowID); err != nil {
			return fmt.Errorf("deleting record rowid %d: %w", rowID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", vector.ErrConnection, err)
	}

	d.logger.Debug("deleted records from sqlite-vec",
		zap.String("namespace", namespace),
		zap.Stringer("filter", filter),
		zap.Int("count", len(rowIDs)),
	)

	return nil
}

// DescribeStats counts the namespace's records.
func (d *Driver) DescribeStats(ctx context.Context, namespace string) (vector.Stats, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vec_records WHERE namespace = ?`, namespace,
	).Scan(&count); err != nil {
		return vector.Stats{}, fmt.Errorf("%w: counting records: %v", vector.ErrConnection, err)
	}

	return vector.Stats{
		Namespace:   namespace,
		VectorCount: count,
		Dimension:   int(d.dimensions),
	}, nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return d.db.Close()
}

var _ vector.Driver = (*Driver)(nil)
