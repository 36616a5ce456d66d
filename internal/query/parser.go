// Package query turns a free-text hiring query into a structured search
// spec. Extraction is rule-based: strip the request phrasing, split the role
// from the location, normalize plurals. The only hard requirement is that a
// role always comes out non-empty or parsing fails.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// JobQuery is the structured form of a user's hiring query.
type JobQuery struct {
	RawQuery string
	Role     string
	Location string
	Limit    int
}

// ParseError means no role could be determined even heuristically.
type ParseError struct {
	RawQuery string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not determine a role from query %q", e.RawQuery)
}

const (
	DefaultLocation = "remote"
	DefaultLimit    = 10
)

// Leading request phrasing that carries no role information.
var leadingFillers = []string{
	"please",
	"can you",
	"i want to",
	"i need to",
	"i am",
	"i'm",
	"help me",
	"find me",
	"find",
	"get me",
	"get",
	"search for",
	"search",
	"look for",
	"looking for",
	"looking to hire",
	"hiring",
	"hire",
	"need",
	"want",
	"source",
	"recruit",
	"some",
	"a few",
	"top",
}

// Words that describe the ask, not the role.
var roleStopwords = map[string]bool{
	"jobs": true, "job": true, "roles": true, "role": true,
	"positions": true, "position": true, "openings": true, "opening": true,
	"candidates": true, "candidate": true, "leads": true, "lead": true,
	"listings": true, "listing": true, "for": true, "the": true,
}

// Plural role nouns we fold back to singular so "backend engineers" plans
// the same dorks as "backend engineer".
var pluralRoles = map[string]string{
	"engineers": "engineer", "developers": "developer",
	"designers": "designer", "managers": "manager",
	"founders": "founder", "marketers": "marketer",
	"analysts": "analyst", "recruiters": "recruiter",
	"scientists": "scientist", "researchers": "researcher",
	"interns": "intern", "writers": "writer",
	"salespeople": "salesperson", "devs": "dev",
}

var limitRe = regexp.MustCompile(`\b(?:top|first|limit|up to)\s+(\d+)\b`)

// Parse extracts role, location and limit from a raw query. Location
// defaults to "remote" and limit to 10 when the query does not state them.
func Parse(raw string) (JobQuery, error) {
	q := JobQuery{
		RawQuery: raw,
		Location: DefaultLocation,
		Limit:    DefaultLimit,
	}

	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return q, &ParseError{RawQuery: raw}
	}

	// Pull out an explicit count ("top 5 ...", "limit 20") before any other
	// rewriting eats the number.
	if m := limitRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			q.Limit = n
		}
		text = strings.TrimSpace(limitRe.ReplaceAllString(text, ""))
	}

	// Location: the text after the last " in ". "remote" anywhere also
	// counts as a stated location.
	if idx := strings.LastIndex(text, " in "); idx >= 0 {
		loc := strings.TrimSpace(text[idx+len(" in "):])
		if loc != "" {
			q.Location = titleCase(loc)
			text = strings.TrimSpace(text[:idx])
		}
	} else if strings.Contains(text, "remote") {
		q.Location = DefaultLocation
		text = strings.TrimSpace(strings.ReplaceAll(text, "remote", ""))
	}

	for changed := true; changed; {
		changed = false
		for _, f := range leadingFillers {
			if strings.HasPrefix(text, f+" ") {
				text = strings.TrimSpace(strings.TrimPrefix(text, f+" "))
				changed = true
			} else if text == f {
				text = ""
				changed = true
			}
		}
	}

	var roleWords []string
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, `.,!?"'`)
		if w == "" || roleStopwords[w] {
			continue
		}
		if singular, ok := pluralRoles[w]; ok {
			w = singular
		}
		roleWords = append(roleWords, w)
	}

	if len(roleWords) == 0 {
		return q, &ParseError{RawQuery: raw}
	}

	q.Role = strings.Join(roleWords, " ")
	return q, nil
}

func titleCase(s string) string {
	if strings.EqualFold(s, DefaultLocation) {
		return DefaultLocation
	}
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
