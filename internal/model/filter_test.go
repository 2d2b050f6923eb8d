package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameContains(t *testing.T) {
	t.Parallel()

	assert.True(t, NameContains("").IsEmpty())
	assert.True(t, NameContains("   ").IsEmpty())

	f := NameContains("falcon")
	ok, err := f.Matches(map[string]string{"name": "Falcon 9"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Matches(map[string]string{"name": "Starship"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.Matches(map[string]string{"id": "x"})
	require.NoError(t, err)
	assert.False(t, ok, "missing field never matches")
}

func TestNameContains_QuotesMetacharacters(t *testing.T) {
	t.Parallel()

	f := NameContains("F9 (B5")
	ok, err := f.Matches(map[string]string{"name": "CRS-20 F9 (B5)"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Matches(map[string]string{"name": "F9 B5"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilterJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Filter{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	data, err = json.Marshal(NameContains("Falcon"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":{"$regex":"Falcon","$options":"i"}}`, string(data))

	var back Filter
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, NameContains("Falcon"), back)
}

func TestLaunchOutcome(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	assert.Equal(t, "upcoming", Launch{Upcoming: true}.Outcome())
	assert.Equal(t, "unknown", Launch{}.Outcome())
	assert.Equal(t, "success", Launch{Success: &yes}.Outcome())
	assert.Equal(t, "failure", Launch{Success: &no}.Outcome())
}
