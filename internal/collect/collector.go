// Package collect turns one discovered URL into a Lead: job-listing facts,
// company-page founder candidates, and a resolved contact email. Every step
// is best-effort; Collect never returns an error, only a Lead carrying
// whatever was found.
package collect

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
)

const userAgent = "FounderFlow/1.0 (+local)"

type Collector struct {
	hc       *http.Client
	limiter  *HostLimiter
	contacts ContactResolver

	// companyPath identifies company-page URLs on the target site,
	// e.g. "workatastartup.com/companies/".
	companyPath string
}

func New(companyPath string, limiter *HostLimiter, contacts ContactResolver) *Collector {
	if limiter == nil {
		limiter = NewHostLimiter(1.0, 2)
	}
	return &Collector{
		hc:          &http.Client{Timeout: 20 * time.Second},
		limiter:     limiter,
		contacts:    contacts,
		companyPath: companyPath,
	}
}

// IsCompanyURL reports whether the URL points at a company page rather than
// a job listing.
func (c *Collector) IsCompanyURL(rawURL string) bool {
	return strings.Contains(rawURL, c.companyPath)
}

// Collect gathers everything it can about one URL. Partial failure leaves
// the already-populated fields in place; the error is recorded on the Lead,
// never raised.
func (c *Collector) Collect(ctx context.Context, rawURL string) domain.Lead {
	lead := domain.Lead{
		JobURL: rawURL,
		Status: domain.LeadPending,
	}

	if c.IsCompanyURL(rawURL) {
		lead.CompanyURL = rawURL
	} else {
		jp, err := c.scrapeJobPage(ctx, rawURL)
		if err != nil {
			log.Printf("[collect] job page %s: %v", rawURL, err)
			lead.ErrorMessage = err.Error()
		}
		lead.RoleTitle = jp.RoleTitle
		lead.CompanyName = jp.CompanyName
		lead.CompanyURL = jp.CompanyURL
		lead.JobDescription = jp.Description
	}

	var founders []domain.Founder
	if lead.CompanyURL != "" {
		cp, err := c.scrapeCompanyPage(ctx, lead.CompanyURL)
		if err != nil {
			log.Printf("[collect] company page %s: %v", lead.CompanyURL, err)
			if lead.ErrorMessage == "" {
				lead.ErrorMessage = err.Error()
			}
		}
		if lead.CompanyName == "" {
			lead.CompanyName = cp.CompanyName
		}
		founders = cp.Founders
	}

	if contact := SelectContact(founders); contact != nil {
		lead.ContactName = contact.Name
		lead.ContactTitle = contact.Title
		lead.ContactLinkedIn = contact.LinkedInURL
	}

	if lead.ContactLinkedIn != "" && c.contacts != nil {
		email, err := c.contacts.EmailForProfile(ctx, lead.ContactLinkedIn)
		if err != nil {
			// No email is a valid outcome; the lead stays useful without one.
			log.Printf("[collect] email lookup %s: %v", lead.ContactLinkedIn, err)
		}
		lead.ContactEmail = email
	}

	return lead
}
