package email

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
	"github.com/tanush-yadav/automate-founder-flow/internal/store"
	"github.com/tanush-yadav/automate-founder-flow/internal/store/sqlite"
)

func testStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestResolveTemplateSeedsDefault(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	got, err := ResolveTemplate(ctx, st, DefaultTemplateName)
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplateName, got.Name)
	assert.NotEmpty(t, got.Subject)
	assert.NotEmpty(t, got.Body)

	// The seed must now be persisted.
	saved, err := st.GetTemplate(ctx, DefaultTemplateName)
	require.NoError(t, err)
	assert.Equal(t, got.Subject, saved.Subject)
}

func TestResolveTemplateEmptyNameMeansDefault(t *testing.T) {
	st := testStore(t)

	got, err := ResolveTemplate(context.Background(), st, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplateName, got.Name)
}

func TestResolveTemplateUnknownName(t *testing.T) {
	st := testStore(t)

	_, err := ResolveTemplate(context.Background(), st, "No Such Template")
	assert.Error(t, err)
}

func TestResolveTemplateCustom(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	custom := &domain.EmailTemplate{
		Name:      "Short Intro",
		Subject:   "Intro re {{company_name}}",
		Body:      "Hi {{founder_name}}",
		Variables: []string{"company_name", "founder_name"},
	}
	require.NoError(t, st.SaveTemplate(ctx, custom))

	got, err := ResolveTemplate(ctx, st, "Short Intro")
	require.NoError(t, err)
	assert.Equal(t, "Intro re {{company_name}}", got.Subject)
}

func TestRenderSubstitutesFacts(t *testing.T) {
	tmpl := &domain.EmailTemplate{
		Subject: "About the {{role}} role at {{company_name}}",
		Body:    "Hi {{founder_name}}, saw the {{role}} opening.",
	}
	lead := &domain.Lead{
		RoleTitle:   "Backend Engineer",
		ContactName: "Jane Smith",
		CompanyName: "Acme",
	}

	subject, body := Render(tmpl, lead)
	assert.Equal(t, "About the Backend Engineer role at Acme", subject)
	assert.Equal(t, "Hi Jane Smith, saw the Backend Engineer opening.", body)
}

func TestRenderFallbacks(t *testing.T) {
	tmpl := &domain.EmailTemplate{
		Subject: "{{role}} / {{company_name}}",
		Body:    "Hi {{founder_name}}",
	}

	subject, body := Render(tmpl, &domain.Lead{})
	assert.Equal(t, "the role / your company", subject)
	assert.Equal(t, "Hi Founder", body)
}
