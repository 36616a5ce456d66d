package collect

import (
	"strings"

	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
)

// SelectContact picks the best outreach target from the founder candidates:
// a CEO/chief first, then anyone titled founder, then the first candidate
// with a profile link. Returns nil when nothing qualifies.
func SelectContact(founders []domain.Founder) *domain.Founder {
	for i := range founders {
		title := strings.ToLower(founders[i].Title)
		if strings.Contains(title, "ceo") || strings.Contains(title, "chief") {
			return &founders[i]
		}
	}
	for i := range founders {
		if strings.Contains(strings.ToLower(founders[i].Title), "founder") {
			return &founders[i]
		}
	}
	for i := range founders {
		if founders[i].LinkedInURL != "" {
			return &founders[i]
		}
	}
	return nil
}
