package domain

import "time"

// JobRun is one end-to-end execution of the pipeline for a single user query.
type JobRun struct {
	ID             string
	RawQuery       string
	ParsedRole     string
	ParsedLocation string
	SearchQueries  []string
	Status         JobStatus
	ErrorMessage   string
	CreatedAt      time.Time
}

// Lead is one prospective contact (ideally a founder) discovered for a run.
// Leads reference their JobRun by ID but live as independent rows; a company
// is persisted at most once across all runs.
type Lead struct {
	ID              string
	JobID           string
	JobURL          string
	CompanyURL      string
	RoleTitle       string
	CompanyName     string
	JobDescription  string
	ContactName     string
	ContactTitle    string
	ContactLinkedIn string
	ContactEmail    string
	Status          LeadStatus
	ErrorMessage    string
	CreatedAt       time.Time
}

// ScheduledEmail is a queued outbound message tied to one Lead. Only the
// dispatcher mutates it after creation.
type ScheduledEmail struct {
	ID          string
	LeadID      string
	ToEmail     string
	Subject     string
	Body        string
	Template    string
	Status      EmailStatus
	ScheduledAt time.Time
	SentAt      *time.Time
	Retries     int
	LastError   string
	NextRetry   *time.Time
	CreatedAt   time.Time
}

// EmailTemplate is a named subject/body pair with {{placeholder}} variables.
type EmailTemplate struct {
	Name      string
	Subject   string
	Body      string
	Variables []string
}

// Founder is one candidate contact extracted from a company page.
type Founder struct {
	Name        string
	Title       string
	LinkedInURL string
}
