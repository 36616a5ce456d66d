package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	results map[string][]string
	errs    map[string]error
	calls   []struct {
		query string
		num   int
	}
}

func (f *fakeProvider) Search(_ context.Context, query string, num int) ([]string, error) {
	f.calls = append(f.calls, struct {
		query string
		num   int
	}{query, num})
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

func TestExecuteFiltersAndDedupes(t *testing.T) {
	fp := &fakeProvider{results: map[string][]string{
		"d1": {
			"https://www.workatastartup.com/jobs/1",
			"https://www.workatastartup.com/companies/acme",
			"https://www.workatastartup.com/jobs/2",
		},
		"d2": {
			"https://www.workatastartup.com/jobs/2",
			"https://www.workatastartup.com/jobs/3",
		},
	}}
	e := &Executor{Provider: fp, JobPath: "workatastartup.com/jobs/"}

	urls := e.Execute(context.Background(), []string{"d1", "d2"}, 10)

	assert.Equal(t, []string{
		"https://www.workatastartup.com/jobs/1",
		"https://www.workatastartup.com/jobs/2",
		"https://www.workatastartup.com/jobs/3",
	}, urls)
}

func TestExecutePerDorkBudget(t *testing.T) {
	fp := &fakeProvider{results: map[string][]string{}}
	e := &Executor{Provider: fp, JobPath: "workatastartup.com/jobs/"}

	e.Execute(context.Background(), []string{"a", "b", "c"}, 9)

	// 9 results over 3 dorks is 3 each, requested at twice the budget.
	require.Len(t, fp.calls, 3)
	for _, c := range fp.calls {
		assert.Equal(t, 6, c.num)
	}
}

func TestExecuteBudgetFloor(t *testing.T) {
	fp := &fakeProvider{results: map[string][]string{}}
	e := &Executor{Provider: fp, JobPath: "workatastartup.com/jobs/"}

	e.Execute(context.Background(), []string{"a", "b", "c"}, 2)

	require.NotEmpty(t, fp.calls)
	assert.Equal(t, 2, fp.calls[0].num)
}

func TestExecuteStopsAtLimit(t *testing.T) {
	fp := &fakeProvider{results: map[string][]string{
		"d1": {
			"https://www.workatastartup.com/jobs/1",
			"https://www.workatastartup.com/jobs/2",
			"https://www.workatastartup.com/jobs/3",
		},
		"d2": {"https://www.workatastartup.com/jobs/4"},
	}}
	e := &Executor{Provider: fp, JobPath: "workatastartup.com/jobs/"}

	urls := e.Execute(context.Background(), []string{"d1", "d2"}, 2)

	assert.Len(t, urls, 2)
	assert.Len(t, fp.calls, 1, "second dork should not run once the limit is hit")
}

func TestExecuteSkipsFailingDork(t *testing.T) {
	fp := &fakeProvider{
		results: map[string][]string{
			"ok": {"https://www.workatastartup.com/jobs/1"},
		},
		errs: map[string]error{"bad": errors.New("quota exceeded")},
	}
	e := &Executor{Provider: fp, JobPath: "workatastartup.com/jobs/"}

	urls := e.Execute(context.Background(), []string{"bad", "ok"}, 5)

	assert.Equal(t, []string{"https://www.workatastartup.com/jobs/1"}, urls)
}

func TestExecuteEmptyInputs(t *testing.T) {
	e := &Executor{Provider: &fakeProvider{}, JobPath: "x"}

	assert.Nil(t, e.Execute(context.Background(), nil, 5))
	assert.Nil(t, e.Execute(context.Background(), []string{"d"}, 0))
}
