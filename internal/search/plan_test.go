package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanush-yadav/automate-founder-flow/internal/query"
)

func TestPlanThreeVariants(t *testing.T) {
	q := query.JobQuery{Role: "backend engineer", Location: "San Francisco"}
	dorks := Plan(q, "workatastartup.com")

	require.Len(t, dorks, 3)
	assert.Equal(t, `site:workatastartup.com backend engineer "San Francisco"`, dorks[0])
	assert.Equal(t, `site:workatastartup.com "backend engineer" "San Francisco"`, dorks[1])
	assert.Equal(t, `site:workatastartup.com backend engineer jobs "San Francisco"`, dorks[2])
}

func TestPlanNoLocation(t *testing.T) {
	q := query.JobQuery{Role: "designer"}
	dorks := Plan(q, "workatastartup.com")

	require.Len(t, dorks, 3)
	for _, d := range dorks {
		assert.NotContains(t, d, `""`)
	}
	assert.Equal(t, "site:workatastartup.com designer", dorks[0])
}

func TestPlanDedupesSingleWordRole(t *testing.T) {
	// A one-word role makes the quoted variant collapse into the main one
	// only when quoting changes nothing, which it never does here; the plan
	// still must not contain duplicates.
	q := query.JobQuery{Role: "founder", Location: "remote"}
	dorks := Plan(q, "workatastartup.com")

	seen := map[string]bool{}
	for _, d := range dorks {
		assert.False(t, seen[d], "duplicate dork %q", d)
		seen[d] = true
	}
}

func TestPlanEmptyRole(t *testing.T) {
	dorks := Plan(query.JobQuery{Location: "Berlin"}, "workatastartup.com")

	require.Len(t, dorks, 1)
	assert.Equal(t, `site:workatastartup.com  "Berlin"`, dorks[0])
}
