// Package email composes outreach emails from templates, schedules them
// inside the business-hours window, and delivers them through a Sender.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
	"github.com/tanush-yadav/automate-founder-flow/internal/store"
)

// DefaultTemplateName is the template every install ships with. It is
// recreated on demand if the row goes missing.
const DefaultTemplateName = "Default Template"

var defaultTemplate = domain.EmailTemplate{
	Name:    DefaultTemplateName,
	Subject: "Quick question about the {{role}} role at {{company_name}}",
	Body: "Hi {{founder_name}},\n\n" +
		"I came across the {{role}} opening at {{company_name}} and wanted to " +
		"reach out directly. I work with candidates who fit this profile and " +
		"would love to share a couple of them with you.\n\n" +
		"Would you be open to a short intro call this week?\n\n" +
		"Best,\nTanush",
	Variables: []string{"role", "founder_name", "company_name"},
}

// ResolveTemplate loads the named template. The default template is special:
// when it is missing it is recreated rather than reported as an error, so a
// wiped table never blocks sending.
func ResolveTemplate(ctx context.Context, st store.Store, name string) (*domain.EmailTemplate, error) {
	if name == "" {
		name = DefaultTemplateName
	}

	t, err := st.GetTemplate(ctx, name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load template %q: %w", name, err)
	}
	if name != DefaultTemplateName {
		return nil, fmt.Errorf("template %q: %w", name, err)
	}

	seeded := defaultTemplate
	if err := st.SaveTemplate(ctx, &seeded); err != nil {
		return nil, fmt.Errorf("seed default template: %w", err)
	}
	return &seeded, nil
}

// Render substitutes the lead's facts into the template. Missing facts fall
// back to neutral phrasing so a partially collected lead still produces a
// sendable email.
func Render(t *domain.EmailTemplate, lead *domain.Lead) (subject, body string) {
	role := lead.RoleTitle
	if role == "" {
		role = "the role"
	}
	founder := lead.ContactName
	if founder == "" {
		founder = "Founder"
	}
	company := lead.CompanyName
	if company == "" {
		company = "your company"
	}

	r := strings.NewReplacer(
		"{{role}}", role,
		"{{founder_name}}", founder,
		"{{company_name}}", company,
	)
	return r.Replace(t.Subject), r.Replace(t.Body)
}
