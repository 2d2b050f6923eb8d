// Package duckdb serves a model.Catalog from an embedded DuckDB database.
// The database is filled from a fixture file and queried with the same
// filter, ordering and pagination contract as the remote API.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tinytelemetry/orbit/internal/duckdb/migrate"
)

// DefaultQueryTimeout bounds every catalog query.
const DefaultQueryTimeout = 10 * time.Second

// Store manages the DuckDB database connection and provides query methods.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	log          zerolog.Logger
	QueryTimeout time.Duration
}

// Options tunes NewStore.
type Options struct {
	// Path of the database file. Empty means in-memory.
	Path         string
	QueryTimeout time.Duration
	Logger       zerolog.Logger
}

// NewStore opens or creates a DuckDB database and applies the schema.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	dsn := ""
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, err
		}
		dsn = opts.Path
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}

	applied, err := migrate.NewRunner(db).Run(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	qt := opts.QueryTimeout
	if qt <= 0 {
		qt = DefaultQueryTimeout
	}

	log := opts.Logger.With().Str("component", "duckdb").Logger()
	if len(applied) > 0 {
		log.Debug().Strs("migrations", applied).Msg("schema migrated")
	}

	return &Store{
		db:           db,
		log:          log,
		QueryTimeout: qt,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// queryCtx derives a context bounded by the store's query timeout.
func (s *Store) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.QueryTimeout)
}

// Counts returns the number of launches and rockets currently loaded.
func (s *Store) Counts(ctx context.Context) (launches, rockets int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	err = s.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM launches), (SELECT COUNT(*) FROM rockets)").
		Scan(&launches, &rockets)
	if err != nil {
		return 0, 0, fmt.Errorf("counting catalog rows: %w", err)
	}
	return launches, rockets, nil
}
