package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
	"github.com/tanush-yadav/automate-founder-flow/internal/store"
	_ "modernc.org/sqlite"
)

var _ store.Store = (*sqliteStore)(nil)

type sqliteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  raw_query TEXT NOT NULL,
  parsed_role TEXT NOT NULL DEFAULT '',
  parsed_location TEXT NOT NULL DEFAULT '',
  search_queries TEXT NOT NULL DEFAULT '[]',
  status TEXT NOT NULL,
  error_message TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
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
  created_at TEXT NOT NULL
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
  scheduled_at TEXT NOT NULL,
  sent_at TEXT NOT NULL DEFAULT '',
  retries INTEGER NOT NULL DEFAULT 0,
  last_error TEXT NOT NULL DEFAULT '',
  next_retry TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_emails_due ON emails(status, scheduled_at);

CREATE TABLE IF NOT EXISTS templates (
  name TEXT PRIMARY KEY,
  subject TEXT NOT NULL,
  body TEXT NOT NULL,
  variables TEXT NOT NULL DEFAULT '[]'
);
`

// Open creates (or opens) the sqlite store at path.
func Open(path string) (store.Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// sqlite wants a single writer; this also keeps SELECT changes()
	// pinned to the connection that ran the preceding insert.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) CreateJobRun(ctx context.Context, run *domain.JobRun) error {
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

	_, err := s.db.ExecContext(ctx, `
INSERT INTO jobs (id, raw_query, parsed_role, parsed_location, search_queries, status, error_message, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		run.ID, run.RawQuery, run.ParsedRole, run.ParsedLocation,
		string(queriesJSON), string(run.Status), run.ErrorMessage,
		run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *sqliteStore) GetJobRun(ctx context.Context, id string) (*domain.JobRun, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, raw_query, parsed_role, parsed_location, search_queries, status, error_message, created_at
FROM jobs WHERE id = ?;`, id)

	var run domain.JobRun
	var queriesJSON, status, createdAt string
	err := row.Scan(&run.ID, &run.RawQuery, &run.ParsedRole, &run.ParsedLocation,
		&queriesJSON, &status, &run.ErrorMessage, &createdAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	run.Status = domain.JobStatus(status)
	_ = json.Unmarshal([]byte(queriesJSON), &run.SearchQueries)
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &run, nil
}

func (s *sqliteStore) UpdateJobStatus(ctx context.Context, id string, status domain.JobStatus, errMsg string) error {
	if errMsg != "" {
		_, err := s.db.ExecContext(ctx,
			`UPDATE jobs SET status = ?, error_message = ? WHERE id = ?;`,
			string(status), errMsg, id)
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE id = ?;`, string(status), id)
	return err
}

func (s *sqliteStore) UpdateJobParse(ctx context.Context, id, role, location string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET parsed_role = ?, parsed_location = ? WHERE id = ?;`,
		role, location, id)
	return err
}

func (s *sqliteStore) UpdateJobPlan(ctx context.Context, id string, queries []string) error {
	queriesJSON, _ := json.Marshal(queries)
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET search_queries = ? WHERE id = ?;`,
		string(queriesJSON), id)
	return err
}

func (s *sqliteStore) SaveLead(ctx context.Context, lead *domain.Lead) (bool, error) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if lead.Status == "" {
		lead.Status = domain.LeadPending
	}

	// The partial unique indexes on company_name/company_url make this the
	// authoritative dedup point; ON CONFLICT DO NOTHING turns a duplicate
	// company into a silent no-op we detect via changes().
	_, err := s.db.ExecContext(ctx, `
INSERT INTO leads (id, job_id, job_url, company_url, role_title, company_name,
  job_description, contact_name, contact_title, contact_linkedin_url,
  contact_email, status, error_message, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING;`,
		lead.ID, lead.JobID, lead.JobURL, lead.CompanyURL, lead.RoleTitle,
		lead.CompanyName, lead.JobDescription, lead.ContactName,
		lead.ContactTitle, lead.ContactLinkedIn, lead.ContactEmail,
		string(lead.Status), lead.ErrorMessage,
		lead.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("insert lead: %w", err)
	}

	var changes int
	if err := s.db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return true, nil
	}
	return changes > 0, nil
}

func (s *sqliteStore) LeadExists(ctx context.Context, companyName, companyURL string) (bool, error) {
	var one int
	var err error
	switch {
	case companyName != "":
		err = s.db.QueryRowContext(ctx,
			`SELECT 1 FROM leads WHERE company_name = ? LIMIT 1;`, companyName).Scan(&one)
	case companyURL != "":
		err = s.db.QueryRowContext(ctx,
			`SELECT 1 FROM leads WHERE company_url = ? LIMIT 1;`, companyURL).Scan(&one)
	default:
		return false, nil
	}
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sqliteStore) UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus, email, errMsg string) error {
	query := `UPDATE leads SET status = ?`
	args := []any{string(status)}
	if email != "" {
		query += `, contact_email = ?`
		args = append(args, email)
	}
	if errMsg != "" {
		query += `, error_message = ?`
		args = append(args, errMsg)
	}
	query += ` WHERE id = ?;`
	args = append(args, id)

	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

const leadColumns = `id, job_id, job_url, company_url, role_title, company_name,
  job_description, contact_name, contact_title, contact_linkedin_url,
  contact_email, status, error_message, created_at`

func (s *sqliteStore) LeadsReadyToSend(ctx context.Context, jobID string) ([]*domain.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+leadColumns+` FROM leads
WHERE job_id = ? AND status = ? AND contact_email != ''
ORDER BY created_at;`, jobID, string(domain.LeadReadyToSend))
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (s *sqliteStore) LeadsForJob(ctx context.Context, jobID string) ([]*domain.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+leadColumns+` FROM leads WHERE job_id = ? ORDER BY created_at;`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

func scanLeads(rows *sql.Rows) ([]*domain.Lead, error) {
	var out []*domain.Lead
	for rows.Next() {
		var l domain.Lead
		var status, createdAt string
		if err := rows.Scan(&l.ID, &l.JobID, &l.JobURL, &l.CompanyURL,
			&l.RoleTitle, &l.CompanyName, &l.JobDescription, &l.ContactName,
			&l.ContactTitle, &l.ContactLinkedIn, &l.ContactEmail,
			&status, &l.ErrorMessage, &createdAt); err != nil {
			return nil, err
		}
		l.Status = domain.LeadStatus(status)
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetTemplate(ctx context.Context, name string) (*domain.EmailTemplate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, subject, body, variables FROM templates WHERE name = ?;`, name)

	var t domain.EmailTemplate
	var varsJSON string
	err := row.Scan(&t.Name, &t.Subject, &t.Body, &varsJSON)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	_ = json.Unmarshal([]byte(varsJSON), &t.Variables)
	return &t, nil
}

func (s *sqliteStore) ListTemplates(ctx context.Context) ([]*domain.EmailTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, subject, body, variables FROM templates ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*domain.EmailTemplate
	for rows.Next() {
		var t domain.EmailTemplate
		var varsJSON string
		if err := rows.Scan(&t.Name, &t.Subject, &t.Body, &varsJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(varsJSON), &t.Variables)
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveTemplate(ctx context.Context, t *domain.EmailTemplate) error {
	varsJSON, _ := json.Marshal(t.Variables)
	if t.Variables == nil {
		varsJSON = []byte("[]")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO templates (name, subject, body, variables)
VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET subject = excluded.subject,
  body = excluded.body, variables = excluded.variables;`,
		t.Name, t.Subject, t.Body, string(varsJSON))
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *sqliteStore) CreateScheduledEmail(ctx context.Context, e *domain.ScheduledEmail) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Status == "" {
		e.Status = domain.EmailScheduled
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO emails (id, lead_id, to_email, subject, body, template_used,
  status, scheduled_at, sent_at, retries, last_error, next_retry, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?, '', ?);`,
		e.ID, e.LeadID, e.ToEmail, e.Subject, e.Body, e.Template,
		string(e.Status), e.ScheduledAt.UTC().Format(time.RFC3339),
		e.Retries, e.LastError, e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

func (s *sqliteStore) DueEmails(ctx context.Context, now time.Time) ([]*domain.ScheduledEmail, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, lead_id, to_email, subject, body, template_used, status,
  scheduled_at, sent_at, retries, last_error, next_retry, created_at
FROM emails
WHERE status = ? AND scheduled_at <= ?
ORDER BY scheduled_at;`,
		string(domain.EmailScheduled), now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("query due emails: %w", err)
	}
	defer rows.Close()

	var out []*domain.ScheduledEmail
	for rows.Next() {
		var e domain.ScheduledEmail
		var status, scheduledAt, sentAt, nextRetry, createdAt string
		if err := rows.Scan(&e.ID, &e.LeadID, &e.ToEmail, &e.Subject, &e.Body,
			&e.Template, &status, &scheduledAt, &sentAt, &e.Retries,
			&e.LastError, &nextRetry, &createdAt); err != nil {
			return nil, err
		}
		e.Status = domain.EmailStatus(status)
		e.ScheduledAt, _ = time.Parse(time.RFC3339, scheduledAt)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if sentAt != "" {
			t, _ := time.Parse(time.RFC3339, sentAt)
			e.SentAt = &t
		}
		if nextRetry != "" {
			t, _ := time.Parse(time.RFC3339, nextRetry)
			e.NextRetry = &t
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	// Conditional on still being Scheduled so a second dispatcher cannot
	// claim a send that already happened.
	_, err := s.db.ExecContext(ctx, `
UPDATE emails SET status = ?, sent_at = ?
WHERE id = ? AND status = ?;`,
		string(domain.EmailSent), sentAt.UTC().Format(time.RFC3339),
		id, string(domain.EmailScheduled))
	if err != nil {
		return false, fmt.Errorf("mark sent: %w", err)
	}

	var changes int
	if err := s.db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return true, nil
	}
	return changes > 0, nil
}

func (s *sqliteStore) RescheduleEmail(ctx context.Context, id string, retries int, lastErr string, nextRetry time.Time) error {
	next := nextRetry.UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
UPDATE emails SET retries = ?, last_error = ?, next_retry = ?, scheduled_at = ?
WHERE id = ? AND status = ?;`,
		retries, lastErr, next, next, id, string(domain.EmailScheduled))
	return err
}

func (s *sqliteStore) FailEmail(ctx context.Context, id string, retries int, lastErr string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE emails SET status = ?, retries = ?, last_error = ?, next_retry = ''
WHERE id = ?;`,
		string(domain.EmailFailed), retries, lastErr, id)
	return err
}
