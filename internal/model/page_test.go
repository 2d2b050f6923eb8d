package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPage_MetadataInvariant(t *testing.T) {
	t.Parallel()

	for total := 1; total <= 6; total++ {
		for page := 1; page <= total; page++ {
			p := NewPage([]string{"x"}, page, total, total*10, 10)
			require.NoError(t, p.Validate(), "page=%d total=%d", page, total)

			assert.Equal(t, page > 1, p.HasPrevPage)
			assert.Equal(t, page < total, p.HasNextPage)
			if p.HasPrevPage {
				require.NotNil(t, p.PrevPage)
				assert.Equal(t, page-1, *p.PrevPage)
			} else {
				assert.Nil(t, p.PrevPage)
			}
			if p.HasNextPage {
				require.NotNil(t, p.NextPage)
				assert.Equal(t, page+1, *p.NextPage)
			} else {
				assert.Nil(t, p.NextPage)
			}
		}
	}
}

func TestPageValidate_RejectsInconsistentMetadata(t *testing.T) {
	t.Parallel()

	two := 2
	cases := map[string]Page[int]{
		"zero total":        {Page: 1, TotalPages: 0},
		"page past end":     {Page: 3, TotalPages: 2, HasPrevPage: true, PrevPage: &two},
		"missing next flag": {Page: 1, TotalPages: 2, NextPage: &two},
		"prev without flag": {Page: 1, TotalPages: 1, PrevPage: &two},
		"wrong next number": {Page: 1, TotalPages: 3, HasNextPage: true, NextPage: new(int)},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, p.Validate())
		})
	}
}

func TestTotalPagesFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, TotalPagesFor(0, 12))
	assert.Equal(t, 1, TotalPagesFor(12, 12))
	assert.Equal(t, 2, TotalPagesFor(13, 12))
	assert.Equal(t, 2, TotalPagesFor(15, 12))
	assert.Equal(t, 4, TotalPagesFor(37, 10))
	assert.Equal(t, 1, TotalPagesFor(5, 0))
}
