package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullQuery(t *testing.T) {
	q, err := Parse("Find me top 5 backend engineers in San Francisco")
	require.NoError(t, err)

	assert.Equal(t, "backend engineer", q.Role)
	assert.Equal(t, "San Francisco", q.Location)
	assert.Equal(t, 5, q.Limit)
}

func TestParseDefaults(t *testing.T) {
	q, err := Parse("hire designers")
	require.NoError(t, err)

	assert.Equal(t, "designer", q.Role)
	assert.Equal(t, DefaultLocation, q.Location)
	assert.Equal(t, DefaultLimit, q.Limit)
}

func TestParseRemoteKeyword(t *testing.T) {
	q, err := Parse("looking for remote founding engineer")
	require.NoError(t, err)

	assert.Equal(t, "founding engineer", q.Role)
	assert.Equal(t, "remote", q.Location)
}

func TestParseLocationAfterLastIn(t *testing.T) {
	// "in" appears twice; only the last one marks the location.
	q, err := Parse("find engineers in machine learning in new york")
	require.NoError(t, err)

	assert.Equal(t, "New York", q.Location)
	assert.Equal(t, "engineer in machine learning", q.Role)
}

func TestParseStripsStopwords(t *testing.T) {
	q, err := Parse("search for product manager roles")
	require.NoError(t, err)

	assert.Equal(t, "product manager", q.Role)
}

func TestParseLimitPhrases(t *testing.T) {
	for raw, want := range map[string]int{
		"top 3 devs":           3,
		"first 25 marketers":   25,
		"up to 7 analysts":     7,
		"limit 12 researchers": 12,
		"some recruiters":      DefaultLimit,
	} {
		q, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, q.Limit, raw)
	}
}

func TestParseNoRole(t *testing.T) {
	for _, raw := range []string{"", "   ", "find me some jobs", "top 5"} {
		_, err := Parse(raw)
		require.Error(t, err, "query %q", raw)

		var perr *ParseError
		assert.True(t, errors.As(err, &perr), "query %q", raw)
	}
}

func TestParseKeepsRawQuery(t *testing.T) {
	raw := "Hire ML Engineers in London"
	q, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, q.RawQuery)
}
