package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
)

// Runs only against a real database; set FOUNDERFLOW_TEST_PG_DSN to enable.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("FOUNDERFLOW_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("skipping postgres store test: FOUNDERFLOW_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	st, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer st.Close()

	run := &domain.JobRun{RawQuery: "find backend engineers"}
	require.NoError(t, st.CreateJobRun(ctx, run))

	require.NoError(t, st.UpdateJobParse(ctx, run.ID, "backend engineer", "remote"))
	require.NoError(t, st.UpdateJobStatus(ctx, run.ID, domain.JobSearching, ""))

	got, err := st.GetJobRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobSearching, got.Status)
	assert.Equal(t, "backend engineer", got.ParsedRole)

	lead := &domain.Lead{JobID: run.ID, JobURL: "u1",
		CompanyName: "Acme-" + run.ID, ContactEmail: "jane@acme.com",
		Status: domain.LeadReadyToSend}
	inserted, err := st.SaveLead(ctx, lead)
	require.NoError(t, err)
	assert.True(t, inserted)

	dupe := &domain.Lead{JobID: run.ID, JobURL: "u2",
		CompanyName: "Acme-" + run.ID}
	inserted, err = st.SaveLead(ctx, dupe)
	require.NoError(t, err)
	assert.False(t, inserted)

	e := &domain.ScheduledEmail{LeadID: lead.ID, ToEmail: "jane@acme.com",
		Subject: "s", Body: "b", ScheduledAt: time.Now().UTC().Add(-time.Minute)}
	require.NoError(t, st.CreateScheduledEmail(ctx, e))

	sent, err := st.MarkEmailSent(ctx, e.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = st.MarkEmailSent(ctx, e.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, sent)
}
