package duckdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/orbit/internal/model"
)

// Fixture is the on-disk catalog format. JSON documents are valid YAML, so
// one decoder handles both.
type Fixture struct {
	Launches []model.Launch `yaml:"launches"`
	Rockets  []model.Rocket `yaml:"rockets"`
}

// sortKeyLayout is fixed-width so that string order equals time order.
const sortKeyLayout = "2006-01-02T15:04:05.000000000Z"

// ReadFixture decodes a fixture file.
func ReadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("reading fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture bytes and checks that ids are present and unique.
func ParseFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parsing fixture: %w", err)
	}
	if err := checkIDs("launch", f.Launches); err != nil {
		return Fixture{}, err
	}
	if err := checkIDs("rocket", f.Rockets); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

func checkIDs[T model.Item](kind string, items []T) error {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		id := it.ItemID()
		if id == "" {
			return fmt.Errorf("fixture %s #%d has no id", kind, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("fixture %s id %q is duplicated", kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Load replaces the catalog contents with the fixture in one transaction.
func (s *Store) Load(ctx context.Context, f Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"launches", "rockets"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, l := range f.Launches {
		if err := insertDoc(ctx, tx, "launches", l.ID, l.Name, l.DateUTC.UTC().Format(sortKeyLayout), l); err != nil {
			return err
		}
	}
	for _, r := range f.Rockets {
		if err := insertDoc(ctx, tx, "rockets", r.ID, r.Name, r.Name, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	s.log.Info().Int("launches", len(f.Launches)).Int("rockets", len(f.Rockets)).Msg("fixture loaded")
	return nil
}

func insertDoc(ctx context.Context, tx *sql.Tx, table, id, name, sortKey string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", table, id, err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO "+table+" (id, name, sort_key, doc) VALUES (?, ?, ?, ?)",
		id, name, sortKey, string(data))
	if err != nil {
		return fmt.Errorf("inserting %s %s: %w", table, id, err)
	}
	return nil
}

// Open is a convenience for the client: an in-memory store loaded from path.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	f, err := ReadFixture(path)
	if err != nil {
		return nil, err
	}
	opts.Path = ""
	s, err := NewStore(ctx, opts)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := s.Load(ctx, f); err != nil {
		s.Close()
		return nil, err
	}
	launches, rockets, err := s.Counts(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.log.Debug().
		Dur("took", time.Since(start)).
		Str("fixture", path).
		Int("launches", launches).
		Int("rockets", rockets).
		Msg("catalog ready")
	return s, nil
}
