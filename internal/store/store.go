package store

import (
	"context"
	"errors"
	"time"

	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence contract the pipeline and dispatcher run against.
// Every mutation is a single-row write committed immediately; no method holds
// a transaction open across calls, which is what makes the orchestrator's
// stage-by-stage status writes safe to interleave with the dispatcher.
type Store interface {
	// Job runs.
	CreateJobRun(ctx context.Context, run *domain.JobRun) error
	GetJobRun(ctx context.Context, id string) (*domain.JobRun, error)
	UpdateJobStatus(ctx context.Context, id string, status domain.JobStatus, errMsg string) error
	UpdateJobParse(ctx context.Context, id, role, location string) error
	UpdateJobPlan(ctx context.Context, id string, queries []string) error

	// Leads. SaveLead reports inserted=false when the company already has a
	// persisted lead (unique constraint on company name/URL); the caller
	// treats that as a dedup skip, not an error.
	SaveLead(ctx context.Context, lead *domain.Lead) (inserted bool, err error)
	LeadExists(ctx context.Context, companyName, companyURL string) (bool, error)
	UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus, email, errMsg string) error
	LeadsReadyToSend(ctx context.Context, jobID string) ([]*domain.Lead, error)
	LeadsForJob(ctx context.Context, jobID string) ([]*domain.Lead, error)

	// Templates.
	GetTemplate(ctx context.Context, name string) (*domain.EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]*domain.EmailTemplate, error)
	SaveTemplate(ctx context.Context, t *domain.EmailTemplate) error

	// Scheduled emails. MarkEmailSent is conditional on the row still being
	// Scheduled so two dispatchers cannot both claim a send.
	CreateScheduledEmail(ctx context.Context, e *domain.ScheduledEmail) error
	DueEmails(ctx context.Context, now time.Time) ([]*domain.ScheduledEmail, error)
	MarkEmailSent(ctx context.Context, id string, sentAt time.Time) (bool, error)
	RescheduleEmail(ctx context.Context, id string, retries int, lastErr string, nextRetry time.Time) error
	FailEmail(ctx context.Context, id string, retries int, lastErr string) error

	Close() error
}
