// Package pipeline orchestrates a job run end to end: parse the query, plan
// and execute the search, collect leads, and later compose and schedule the
// outreach emails. All progress is persisted through the store so a reader
// can follow a run from its status alone.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
	"github.com/tanush-yadav/automate-founder-flow/internal/email"
	"github.com/tanush-yadav/automate-founder-flow/internal/metrics"
	"github.com/tanush-yadav/automate-founder-flow/internal/query"
	"github.com/tanush-yadav/automate-founder-flow/internal/search"
	"github.com/tanush-yadav/automate-founder-flow/internal/store"
)

// Searcher executes a set of search queries and returns result URLs.
// Per-query failures are handled inside; an empty slice means no results.
type Searcher interface {
	Execute(ctx context.Context, dorks []string, limit int) []string
}

// Collector turns one URL into a lead.
type Collector interface {
	Collect(ctx context.Context, rawURL string) domain.Lead
	IsCompanyURL(rawURL string) bool
}

type Runner struct {
	Store      store.Store
	Search     Searcher
	Collect    Collector
	Scheduler  *email.Scheduler
	TargetSite string
}

// Run executes the collection flow for one raw query and returns the job
// run in its terminal state. Errors that end the run are also recorded on
// the job row, so the returned error is informational.
func (r *Runner) Run(ctx context.Context, rawQuery string) (run *domain.JobRun, err error) {
	run = &domain.JobRun{
		ID:       uuid.NewString(),
		RawQuery: rawQuery,
		Status:   domain.JobPending,
	}
	if err := r.Store.CreateJobRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create job run: %w", err)
	}
	log.Printf("[pipeline] job %s started: %q", run.ID, rawQuery)

	// A panic anywhere below still leaves the job in a terminal state.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pipeline panic: %v", rec)
			r.finish(ctx, run, domain.JobFailed, err.Error())
		}
	}()

	r.setStatus(ctx, run, domain.JobParsing)
	q, err := query.Parse(rawQuery)
	if err != nil {
		r.finish(ctx, run, domain.JobFailed, err.Error())
		return run, err
	}
	run.ParsedRole = q.Role
	run.ParsedLocation = q.Location
	if err := r.Store.UpdateJobParse(ctx, run.ID, q.Role, q.Location); err != nil {
		r.finish(ctx, run, domain.JobFailed, err.Error())
		return run, err
	}

	r.setStatus(ctx, run, domain.JobGeneratingPlan)
	dorks := search.Plan(q, r.TargetSite)
	run.SearchQueries = dorks
	if err := r.Store.UpdateJobPlan(ctx, run.ID, dorks); err != nil {
		r.finish(ctx, run, domain.JobFailed, err.Error())
		return run, err
	}

	r.setStatus(ctx, run, domain.JobSearching)
	urls := r.Search.Execute(ctx, dorks, q.Limit)
	if len(urls) == 0 {
		r.finish(ctx, run, domain.JobNoResults, "")
		return run, nil
	}
	log.Printf("[pipeline] job %s: %d result urls", run.ID, len(urls))

	r.setStatus(ctx, run, domain.JobCollectingLeads)
	saved := r.collectLeads(ctx, run, urls)
	if saved == 0 {
		r.finish(ctx, run, domain.JobNoLeads, "")
		return run, nil
	}

	r.finish(ctx, run, domain.JobComplete, "")
	log.Printf("[pipeline] job %s complete: %d leads", run.ID, saved)
	return run, nil
}

// collectLeads processes company pages first. A company URL yields founder
// facts directly, so when the same company also surfaced through a job
// listing the richer lead wins the dedup race.
func (r *Runner) collectLeads(ctx context.Context, run *domain.JobRun, urls []string) int {
	ordered := make([]string, 0, len(urls))
	for _, u := range urls {
		if r.Collect.IsCompanyURL(u) {
			ordered = append(ordered, u)
		}
	}
	for _, u := range urls {
		if !r.Collect.IsCompanyURL(u) {
			ordered = append(ordered, u)
		}
	}

	saved := 0
	for _, u := range ordered {
		lead := r.Collect.Collect(ctx, u)
		lead.ID = uuid.NewString()
		lead.JobID = run.ID

		// A lead needs at least a company identity to be worth keeping.
		if lead.CompanyName == "" && lead.CompanyURL == "" {
			log.Printf("[pipeline] no company found, skipped: %s", u)
			continue
		}

		// Fast-path duplicate check; the unique index behind SaveLead is
		// what actually guarantees one row per company.
		if exists, err := r.Store.LeadExists(ctx, lead.CompanyName, lead.CompanyURL); err == nil && exists {
			metrics.LeadsCollected.WithLabelValues("duplicate").Inc()
			log.Printf("[pipeline] company already known, skipped: %s", u)
			continue
		}
		if lead.ContactEmail != "" {
			lead.Status = domain.LeadReadyToSend
		} else {
			lead.Status = domain.LeadEmailNotFound
		}

		inserted, err := r.Store.SaveLead(ctx, &lead)
		if err != nil {
			log.Printf("[pipeline] save lead %s: %v", u, err)
			continue
		}
		if !inserted {
			metrics.LeadsCollected.WithLabelValues("duplicate").Inc()
			log.Printf("[pipeline] duplicate company, skipped: %s", u)
			continue
		}
		metrics.LeadsCollected.WithLabelValues("saved").Inc()
		saved++
	}
	return saved
}

// SendEmails composes and schedules outreach for every sendable lead of a
// finished job run.
func (r *Runner) SendEmails(ctx context.Context, jobID, templateName string) error {
	run, err := r.Store.GetJobRun(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if !run.Status.Terminal() {
		return fmt.Errorf("job %s is still %s; wait for the run to finish", jobID, run.Status)
	}
	r.setStatus(ctx, run, domain.JobSendingEmails)

	leads, err := r.Store.LeadsReadyToSend(ctx, jobID)
	if err != nil {
		r.finish(ctx, run, domain.JobEmailFailed, err.Error())
		return err
	}
	if len(leads) == 0 {
		r.finish(ctx, run, domain.JobNoEmailsToSend, "")
		return nil
	}

	tmpl, err := email.ResolveTemplate(ctx, r.Store, templateName)
	if err != nil {
		r.finish(ctx, run, domain.JobEmailFailed, err.Error())
		return err
	}

	scheduled := 0
	for _, lead := range leads {
		if err := r.scheduleOne(ctx, tmpl, lead); err != nil {
			log.Printf("[pipeline] schedule lead %s: %v", lead.ID, err)
			if uerr := r.Store.UpdateLeadStatus(ctx, lead.ID,
				domain.LeadEmailFailed, lead.ContactEmail, err.Error()); uerr != nil {
				log.Printf("[pipeline] update lead %s: %v", lead.ID, uerr)
			}
			continue
		}
		scheduled++
	}

	// Per-lead failures were recorded on the leads themselves; the batch
	// finishing at all is what EmailsComplete reports. EmailFailed is
	// reserved for the flow-level errors above.
	r.finish(ctx, run, domain.JobEmailsComplete, "")
	log.Printf("[pipeline] job %s: %d of %d emails scheduled", jobID, scheduled, len(leads))
	return nil
}

func (r *Runner) scheduleOne(ctx context.Context, tmpl *domain.EmailTemplate, lead *domain.Lead) error {
	subject, body := email.Render(tmpl, lead)

	e := &domain.ScheduledEmail{
		ID:          uuid.NewString(),
		LeadID:      lead.ID,
		ToEmail:     lead.ContactEmail,
		Subject:     subject,
		Body:        body,
		Template:    tmpl.Name,
		Status:      domain.EmailScheduled,
		ScheduledAt: r.Scheduler.Next(),
	}
	if err := r.Store.CreateScheduledEmail(ctx, e); err != nil {
		return err
	}
	metrics.EmailsScheduled.Inc()

	if err := r.Store.UpdateLeadStatus(ctx, lead.ID,
		domain.LeadEmailSent, lead.ContactEmail, ""); err != nil {
		return err
	}
	log.Printf("[pipeline] email %s scheduled for %s at %s",
		e.ID, e.ToEmail, e.ScheduledAt.Format("2006-01-02 15:04 MST"))
	return nil
}

func (r *Runner) setStatus(ctx context.Context, run *domain.JobRun, status domain.JobStatus) {
	run.Status = status
	if err := r.Store.UpdateJobStatus(ctx, run.ID, status, ""); err != nil {
		log.Printf("[pipeline] update job %s status: %v", run.ID, err)
	}
}

func (r *Runner) finish(ctx context.Context, run *domain.JobRun, status domain.JobStatus, errMsg string) {
	run.Status = status
	run.ErrorMessage = errMsg
	if err := r.Store.UpdateJobStatus(ctx, run.ID, status, errMsg); err != nil {
		log.Printf("[pipeline] finish job %s: %v", run.ID, err)
	}
	metrics.JobRuns.WithLabelValues(string(status)).Inc()
}
