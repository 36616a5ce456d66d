// Package search plans site-scoped query strings ("dorks") for a parsed
// hiring query and executes them against a search provider.
package search

import (
	"fmt"

	"github.com/tanush-yadav/automate-founder-flow/internal/query"
)

// Plan expands a parsed query into an ordered, deduplicated set of dorks,
// each scoped to targetSite. Pure: no network, same input same output, and
// order matters downstream (the executor spreads its budget across dorks in
// this order).
func Plan(q query.JobQuery, targetSite string) []string {
	base := "site:" + targetSite

	var dorks []string

	main := base + " " + q.Role
	if q.Location != "" {
		main += fmt.Sprintf(" %q", q.Location)
	}
	dorks = append(dorks, main)

	if q.Role != "" {
		exact := fmt.Sprintf("%s %q", base, q.Role)
		if q.Location != "" {
			exact += fmt.Sprintf(" %q", q.Location)
		}
		dorks = append(dorks, exact)

		jobs := base + " " + q.Role + " jobs"
		if q.Location != "" {
			jobs += fmt.Sprintf(" %q", q.Location)
		}
		dorks = append(dorks, jobs)
	}

	seen := make(map[string]bool, len(dorks))
	out := dorks[:0]
	for _, d := range dorks {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
