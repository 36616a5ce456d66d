package search

import (
	"context"
	"log"
	"strings"
)

// Executor runs a dork plan against a Provider and aggregates job URLs.
type Executor struct {
	Provider Provider
	// JobPath filters results to the target site's job-listing URLs,
	// e.g. "workatastartup.com/jobs/".
	JobPath string
}

// Execute runs every dork in order, budgeting roughly limit/len(dorks)
// results per dork (minimum 1, requested at twice the budget since many
// results won't match the job path). URLs are deduplicated in first-seen
// order and the scan stops early once limit is reached. A provider error on
// one dork is logged and the next dork proceeds.
func (e *Executor) Execute(ctx context.Context, dorks []string, limit int) []string {
	if len(dorks) == 0 || limit <= 0 {
		return nil
	}

	perDork := limit / len(dorks)
	if perDork < 1 {
		perDork = 1
	}

	seen := make(map[string]bool)
	var urls []string

	for _, dork := range dorks {
		if len(urls) >= limit {
			break
		}

		links, err := e.Provider.Search(ctx, dork, perDork*2)
		if err != nil {
			log.Printf("[search] dork %q failed: %v", dork, err)
			continue
		}

		for _, link := range links {
			if !strings.Contains(link, e.JobPath) {
				continue
			}
			if seen[link] {
				continue
			}
			seen[link] = true
			urls = append(urls, link)
			if len(urls) >= limit {
				break
			}
		}
	}

	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls
}
