package domain

// Status strings are part of the stored-data contract. Anything already
// persisted by an older deployment must keep reading back with the same
// values, so these are never renamed.

// JobStatus tracks one query's run through the pipeline.
type JobStatus string

const (
	JobPending         JobStatus = "Pending"
	JobParsing         JobStatus = "Parsing"
	JobGeneratingPlan  JobStatus = "GeneratingPlan"
	JobSearching       JobStatus = "Searching"
	JobNoResults       JobStatus = "NoResults"
	JobCollectingLeads JobStatus = "CollectingLeads"
	JobNoLeads         JobStatus = "NoLeads"
	JobComplete        JobStatus = "Complete"
	JobSendingEmails   JobStatus = "SendingEmails"
	JobNoEmailsToSend  JobStatus = "NoEmailsToSend"
	JobEmailsComplete  JobStatus = "EmailsComplete"
	JobEmailFailed     JobStatus = "EmailFailed"
	JobFailed          JobStatus = "Failed"
)

// Terminal reports whether no further stage writes may happen for this run.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobNoResults, JobNoLeads, JobComplete, JobNoEmailsToSend,
		JobEmailsComplete, JobEmailFailed, JobFailed:
		return true
	}
	return false
}

// LeadStatus tracks one contact through email resolution and sending.
type LeadStatus string

const (
	LeadPending       LeadStatus = "Pending"
	LeadReadyToSend   LeadStatus = "ReadyToSend"
	LeadEmailNotFound LeadStatus = "EmailNotFound"
	LeadEmailSent     LeadStatus = "EmailSent"
	LeadEmailFailed   LeadStatus = "EmailFailed"
)

// EmailStatus tracks one queued outbound message.
type EmailStatus string

const (
	EmailScheduled EmailStatus = "Scheduled"
	EmailSent      EmailStatus = "Sent"
	EmailFailed    EmailStatus = "Failed"
)
