package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
	"github.com/tanush-yadav/automate-founder-flow/internal/store"
)

var _ store.Store = (*pgStore)(nil)

type pgStore struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	raw_query TEXT NOT NULL,
	parsed_role TEXT NOT NULL DEFAULT '',
	parsed_location TEXT NOT NULL DEFAULT '',
	search_queries JSONB NOT NULL DEFAULT '[]',
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	job_url TEXT NOT NULL,
	company_url TEXT NOT NULL DEFAULT '',
	role_title TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL DEFAULT '',
	job_description TEXT NOT NULL DEFAULT '',
	contact_name TEXT NOT NULL DEFAULT '',
	contact_title TEXT NOT NULL DEFAULT '',
	contact_linkedin_url TEXT NOT NULL DEFAULT '',
	contact_email TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_company_name
ON leads(company_name) WHERE company_name != '';

CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_company_url
ON leads(company_url) WHERE company_url != '';

CREATE INDEX IF NOT EXISTS idx_leads_job_id ON leads(job_id);

CREATE TABLE IF NOT EXISTS emails (
	id TEXT PRIMARY KEY,
	lead_id TEXT NOT NULL,
	to_email TEXT NOT NULL,
	subject TEXT NOT NULL,
	body TEXT NOT NULL,
	template_used TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	scheduled_at TIMESTAMPTZ NOT NULL,
	sent_at TIMESTAMPTZ,
	retries INTEGER NOT NULL DEFAULT 0,
	last_error TEXT NOT NULL DEFAULT '',
	next_retry TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_emails_due ON emails(status, scheduled_at);

CREATE TABLE IF NOT EXISTS templates (
	name TEXT PRIMARY KEY,
	subject TEXT NOT NULL,
	body TEXT NOT NULL,
	variables JSONB NOT NULL DEFAULT '[]'
);
`

// Open connects to Postgres and ensures the schema exists.
func Open(ctx context.Context, dsn string) (store.Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &pgStore{pool: pool}, nil
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *pgStore) CreateJobRun(ctx context.Context, run *domain.JobRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = domain.JobPending
	}

	queriesJSON, _ := json.Marshal(run.SearchQueries)
	if run.SearchQueries == nil {
		queriesJSON = []byte("[]")
	}

	_, err := s.pool.Exec(ctx, `
INSERT INTO jobs (id, raw_query, parsed_role, parsed_location, search_queries, status, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.RawQuery, run.ParsedRole, run.ParsedLocation,
		queriesJSON, string(run.Status), run.ErrorMessage, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *pgStore) GetJobRun(ctx context.Context, id string) (*domain.JobRun, error) {
	var run domain.JobRun
	var queriesJSON []byte
	var status string
	err := s.pool.QueryRow(ctx, `
SELECT id, raw_query, parsed_role, parsed_location, search_queries, status, error_message, created_at
FROM jobs WHERE id = $1`, id).Scan(
		&run.ID, &run.RawQuery, &run.ParsedRole, &run.ParsedLocation,
		&queriesJSON, &status, &run.ErrorMessage, &run.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	run.Status = domain.JobStatus(status)
	_ = json.Unmarshal(queriesJSON, &run.SearchQueries)
	return &run, nil
}

func (s *pgStore) UpdateJobStatus(ctx context.Context, id string, status domain.JobStatus, errMsg string) error {
	if errMsg != "" {
		_, err := s.pool.Exec(ctx,
			`UPDATE jobs SET status = $1, error_message = $2 WHERE id = $3`,
			string(status), errMsg, id)
		return err
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1 WHERE id = $2`, string(status), id)
	return err
}

func (s *pgStore) UpdateJobParse(ctx context.Context, id, role, location string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET parsed_role = $1, parsed_location = $2 WHERE id = $3`,
		role, location, id)
	return err
}

func (s *pgStore) UpdateJobPlan(ctx context.Context, id string, queries []string) error {
	queriesJSON, _ := json.Marshal(queries)
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET search_queries = $1 WHERE id = $2`, queriesJSON, id)
	return err
}

func (s *pgStore) SaveLead(ctx context.Context, lead *domain.Lead) (bool, error) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if lead.Status == "" {
		lead.Status = domain.LeadPending
	}

	tag, err := s.pool.Exec(ctx, `
INSERT INTO leads (id, job_id, job_url, company_url, role_title, company_name,
	job_description, contact_name, contact_title, contact_linkedin_url,
	contact_email, status, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT DO NOTHING`,
		lead.ID, lead.JobID, lead.JobURL, lead.CompanyURL, lead.RoleTitle,
		lead.CompanyName, lead.JobDescription, lead.ContactName,
		lead.ContactTitle, lead.ContactLinkedIn, lead.ContactEmail,
		string(lead.Status), lead.ErrorMessage, lead.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert lead: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *pgStore) LeadExists(ctx context.Context, companyName, companyURL string) (bool, error) {
	var one int
	var err error
	switch {
	case companyName != "":
		err = s.pool.QueryRow(ctx,
			`SELECT 1 FROM leads WHERE company_name = $1 LIMIT 1`, companyName).Scan(&one)
	case companyURL != "":
		err = s.pool.QueryRow(ctx,
			`SELECT 1 FROM leads WHERE company_url = $1 LIMIT 1`, companyURL).Scan(&one)
	default:
		return false, nil
	}
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *pgStore) UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus, email, errMsg string) error {
	query := `UPDATE leads SET status = $1`
	args := []any{string(status)}
	n := 2
	if email != "" {
		query += fmt.Sprintf(`, contact_email = $%d`, n)
		args = append(args, email)
		n++
	}
	if errMsg != "" {
		query += fmt.Sprintf(`, error_message = $%d`, n)
		args = append(args, errMsg)
		n++
	}
	query += fmt.Sprintf(` WHERE id = $%d`, n)
	args = append(args, id)

	_, err := s.pool.Exec(ctx, query, args...)
	return err
}

const leadColumns = `id, job_id, job_url, company_url, role_title, company_name,
	job_description, contact_name, contact_title, contact_linkedin_url,
	contact_email, status, error_message, created_at`

func (s *pgStore) LeadsReadyToSend(ctx context.Context, jobID string) ([]*domain.Lead, error) {
	rows, err := s.pool.Query(ctx, `
SELECT `+leadColumns+` FROM leads
WHERE job_id = $1 AND status = $2 AND contact_email != ''
ORDER BY created_at`, jobID, string(domain.LeadReadyToSend))
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (s *pgStore) LeadsForJob(ctx context.Context, jobID string) ([]*domain.Lead, error) {
	rows, err := s.pool.Query(ctx, `
SELECT `+leadColumns+` FROM leads WHERE job_id = $1 ORDER BY created_at`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

func scanLeads(rows pgx.Rows) ([]*domain.Lead, error) {
	var out []*domain.Lead
	for rows.Next() {
		var l domain.Lead
		var status string
		if err := rows.Scan(&l.ID, &l.JobID, &l.JobURL, &l.CompanyURL,
			&l.RoleTitle, &l.CompanyName, &l.JobDescription, &l.ContactName,
			&l.ContactTitle, &l.ContactLinkedIn, &l.ContactEmail,
			&status, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Status = domain.LeadStatus(status)
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (s *pgStore) GetTemplate(ctx context.Context, name string) (*domain.EmailTemplate, error) {
	var t domain.EmailTemplate
	var varsJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT name, subject, body, variables FROM templates WHERE name = $1`, name).
		Scan(&t.Name, &t.Subject, &t.Body, &varsJSON)
	if err == pgx.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	_ = json.Unmarshal(varsJSON, &t.Variables)
	return &t, nil
}

func (s *pgStore) ListTemplates(ctx context.Context) ([]*domain.EmailTemplate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, subject, body, variables FROM templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*domain.EmailTemplate
	for rows.Next() {
		var t domain.EmailTemplate
		var varsJSON []byte
		if err := rows.Scan(&t.Name, &t.Subject, &t.Body, &varsJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(varsJSON, &t.Variables)
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *pgStore) SaveTemplate(ctx context.Context, t *domain.EmailTemplate) error {
	varsJSON, _ := json.Marshal(t.Variables)
	if t.Variables == nil {
		varsJSON = []byte("[]")
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO templates (name, subject, body, variables)
VALUES ($1, $2, $3, $4)
ON CONFLICT (name) DO UPDATE SET subject = EXCLUDED.subject,
	body = EXCLUDED.body, variables = EXCLUDED.variables`,
		t.Name, t.Subject, t.Body, varsJSON)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *pgStore) CreateScheduledEmail(ctx context.Context, e *domain.ScheduledEmail) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Status == "" {
		e.Status = domain.EmailScheduled
	}

	_, err := s.pool.Exec(ctx, `
INSERT INTO emails (id, lead_id, to_email, subject, body, template_used,
	status, scheduled_at, retries, last_error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.LeadID, e.ToEmail, e.Subject, e.Body, e.Template,
		string(e.Status), e.ScheduledAt.UTC(), e.Retries, e.LastError,
		e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

func (s *pgStore) DueEmails(ctx context.Context, now time.Time) ([]*domain.ScheduledEmail, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, lead_id, to_email, subject, body, template_used, status,
	scheduled_at, sent_at, retries, last_error, next_retry, created_at
FROM emails
WHERE status = $1 AND scheduled_at <= $2
ORDER BY scheduled_at`, string(domain.EmailScheduled), now.UTC())
	if err != nil {
		return nil, fmt.Errorf("query due emails: %w", err)
	}
	defer rows.Close()

	var out []*domain.ScheduledEmail
	for rows.Next() {
		var e domain.ScheduledEmail
		var status string
		if err := rows.Scan(&e.ID, &e.LeadID, &e.ToEmail, &e.Subject, &e.Body,
			&e.Template, &status, &e.ScheduledAt, &e.SentAt, &e.Retries,
			&e.LastError, &e.NextRetry, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Status = domain.EmailStatus(status)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *pgStore) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
UPDATE emails SET status = $1, sent_at = $2
WHERE id = $3 AND status = $4`,
		string(domain.EmailSent), sentAt.UTC(), id, string(domain.EmailScheduled))
	if err != nil {
		return false, fmt.Errorf("mark sent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *pgStore) RescheduleEmail(ctx context.Context, id string, retries int, lastErr string, nextRetry time.Time) error {
	_, err := s.pool.Exec(ctx, `
UPDATE emails SET retries = $1, last_error = $2, next_retry = $3, scheduled_at = $3
WHERE id = $4 AND status = $5`,
		retries, lastErr, nextRetry.UTC(), id, string(domain.EmailScheduled))
	return err
}

func (s *pgStore) FailEmail(ctx context.Context, id string, retries int, lastErr string) error {
	_, err := s.pool.Exec(ctx, `
UPDATE emails SET status = $1, retries = $2, last_error = $3, next_retry = NULL
WHERE id = $4`,
		string(domain.EmailFailed), retries, lastErr, id)
	return err
}
