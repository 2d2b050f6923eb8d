package spacex

import (
	"encoding/json"
	"fmt"

	"github.com/tinytelemetry/orbit/internal/model"
)

// queryRequest is the body of POST /{resource}/query.
type queryRequest struct {
	Query   model.Filter `json:"query"`
	Options queryOptions `json:"options"`
}

type queryOptions struct {
	Limit int     `json:"limit"`
	Page  int     `json:"page"`
	Sort  sortDoc `json:"sort"`
}

// sortDoc renders the sort field first and "id" second. A plain map would
// marshal keys alphabetically and change the precedence.
type sortDoc model.SortSpec

func (s sortDoc) MarshalJSON() ([]byte, error) {
	spec := model.SortSpec(s)
	if spec.Field == "" || spec.Field == "id" {
		return []byte(`{"id":"asc"}`), nil
	}
	field, err := json.Marshal(spec.Field)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf(`{%s:%q,"id":"asc"}`, field, spec.Direction())), nil
}

// envelope is the paginated response. Every field is a pointer so that a
// missing field can be told apart from a zero value.
type envelope struct {
	Docs          *json.RawMessage `json:"docs"`
	TotalDocs     *int             `json:"totalDocs"`
	Limit         *int             `json:"limit"`
	TotalPages    *int             `json:"totalPages"`
	Page          *int             `json:"page"`
	PagingCounter *int             `json:"pagingCounter"`
	HasPrevPage   *bool            `json:"hasPrevPage"`
	HasNextPage   *bool            `json:"hasNextPage"`
	PrevPage      *int             `json:"prevPage"`
	NextPage      *int             `json:"nextPage"`
}

// toPage checks the envelope against the pagination invariants and converts
// it. Any missing or contradictory field is reported as an error.
func toPage[T any](env envelope, pageSize int) (model.Page[T], error) {
	switch {
	case env.Docs == nil:
		return model.Page[T]{}, fmt.Errorf("missing docs")
	case env.TotalDocs == nil:
		return model.Page[T]{}, fmt.Errorf("missing totalDocs")
	case env.TotalPages == nil:
		return model.Page[T]{}, fmt.Errorf("missing totalPages")
	case env.Page == nil:
		return model.Page[T]{}, fmt.Errorf("missing page")
	case env.HasPrevPage == nil || env.HasNextPage == nil:
		return model.Page[T]{}, fmt.Errorf("missing hasPrevPage/hasNextPage")
	}

	var items []T
	if err := json.Unmarshal(*env.Docs, &items); err != nil {
		return model.Page[T]{}, fmt.Errorf("decoding docs: %w", err)
	}

	totalPages, page := *env.TotalPages, *env.Page
	if totalPages == 0 && *env.TotalDocs == 0 {
		// An empty result set is one empty page.
		totalPages = 1
		if page == 0 {
			page = 1
		}
	}
	if env.Limit != nil && *env.Limit > 0 {
		pageSize = *env.Limit
	}

	p := model.NewPage(items, page, totalPages, *env.TotalDocs, pageSize)
	if p.HasPrevPage != *env.HasPrevPage || p.HasNextPage != *env.HasNextPage {
		return model.Page[T]{}, fmt.Errorf("navigation flags prev=%t next=%t contradict page %d of %d",
			*env.HasPrevPage, *env.HasNextPage, page, totalPages)
	}
	if env.PrevPage != nil && (p.PrevPage == nil || *env.PrevPage != *p.PrevPage) {
		return model.Page[T]{}, fmt.Errorf("prevPage %d contradicts page %d", *env.PrevPage, page)
	}
	if env.NextPage != nil && (p.NextPage == nil || *env.NextPage != *p.NextPage) {
		return model.Page[T]{}, fmt.Errorf("nextPage %d contradicts page %d", *env.NextPage, page)
	}
	if err := p.Validate(); err != nil {
		return model.Page[T]{}, err
	}
	return p, nil
}
