package duckdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tinytelemetry/orbit/internal/model"
)

var _ model.Catalog = (*Store)(nil)

// filterColumns lists the fields a Filter may reference.
var filterColumns = map[string]string{"name": "name"}

// Launches returns the launch listing, newest first.
func (s *Store) Launches() model.PagedSource[model.Launch] {
	return model.PagedSourceFunc[model.Launch](func(ctx context.Context, f model.Filter, size, page int) (model.Page[model.Launch], error) {
		return fetchPage[model.Launch](ctx, s, "launches", model.LaunchSort.Descending, f, size, page)
	})
}

// Rockets returns the rocket listing, by name.
func (s *Store) Rockets() model.PagedSource[model.Rocket] {
	return model.PagedSourceFunc[model.Rocket](func(ctx context.Context, f model.Filter, size, page int) (model.Page[model.Rocket], error) {
		return fetchPage[model.Rocket](ctx, s, "rockets", model.RocketSort.Descending, f, size, page)
	})
}

// Launch returns one launch by id.
func (s *Store) Launch(ctx context.Context, id string) (model.Launch, error) {
	var l model.Launch
	err := s.lookup(ctx, "launches", id, &l)
	return l, err
}

// Rocket returns one rocket by id.
func (s *Store) Rocket(ctx context.Context, id string) (model.Rocket, error) {
	var r model.Rocket
	err := s.lookup(ctx, "rockets", id, &r)
	return r, err
}

// whereClause translates a Filter into a WHERE clause. Patterns use RE2
// syntax on both sides, so a quoted search behaves as a plain substring.
func whereClause(f model.Filter) (string, []interface{}, error) {
	if f.IsEmpty() {
		return "", nil, nil
	}
	var conds []string
	var args []interface{}
	for field, m := range f {
		col, ok := filterColumns[field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", field)
		}
		if _, err := m.Compile(); err != nil {
			return "", nil, fmt.Errorf("filter on %s: %w", field, err)
		}
		opts := "c"
		if m.CaseInsensitive {
			opts = "i"
		}
		conds = append(conds, fmt.Sprintf("regexp_matches(%s, ?, '%s')", col, opts))
		args = append(args, m.Pattern)
	}
	return "WHERE " + strings.Join(conds, " AND "), args, nil
}

func fetchPage[T any](ctx context.Context, s *Store, table string, desc bool, f model.Filter, pageSize, page int) (model.Page[T], error) {
	if pageSize < 1 || page < 1 {
		return model.Page[T]{}, model.NewFetchError(model.InvalidResponseShape, table,
			fmt.Errorf("page %d and page size %d must be positive", page, pageSize))
	}
	where, args, err := whereClause(f)
	if err != nil {
		return model.Page[T]{}, model.NewFetchError(model.InvalidResponseShape, table, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" "+where, args...).Scan(&total); err != nil {
		return model.Page[T]{}, model.NewFetchError(model.NetworkFailure, table, err)
	}

	totalPages := model.TotalPagesFor(total, pageSize)
	if page > totalPages {
		// The data shrank under the caller; serve the last page instead.
		page = totalPages
	}

	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	query := fmt.Sprintf("SELECT doc FROM %s %s ORDER BY sort_key %s, id ASC LIMIT ? OFFSET ?", table, where, dir)
	rows, err := s.db.QueryContext(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return model.Page[T]{}, model.NewFetchError(model.NetworkFailure, table, err)
	}
	defer rows.Close()

	items := make([]T, 0, pageSize)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return model.Page[T]{}, model.NewFetchError(model.NetworkFailure, table, err)
		}
		var item T
		if err := json.Unmarshal([]byte(doc), &item); err != nil {
			return model.Page[T]{}, model.NewFetchError(model.InvalidResponseShape, table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return model.Page[T]{}, model.NewFetchError(model.NetworkFailure, table, err)
	}

	return model.NewPage(items, page, totalPages, total, pageSize), nil
}

func (s *Store) lookup(ctx context.Context, table, id string, dest interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM "+table+" WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewFetchError(model.NotFound, table, fmt.Errorf("id %q", id))
	}
	if err != nil {
		return model.NewFetchError(model.NetworkFailure, table, err)
	}
	if err := json.Unmarshal([]byte(doc), dest); err != nil {
		return model.NewFetchError(model.InvalidResponseShape, table, err)
	}
	return nil
}
