package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

type fakeScraper struct {
	results map[string][]models.RawPosting
	errs    map[string]error
	calls   []string
}

func (f *fakeScraper) Name() string { return "Fake" }

func (f *fakeScraper) Scrape(_ context.Context, _ playwright.Page, category string) ([]models.RawPosting, error) {
	f.calls = append(f.calls, category)
	return f.results[category], f.errs[category]
}

type fakeWriter struct {
	rows    []models.RawPosting
	failFor string
}

func (w *fakeWriter) AppendRaw(_ context.Context, postings []models.RawPosting) (int, error) {
	if len(postings) > 0 && postings[0].SearchCategory == w.failFor {
		return 0, errors.New("disk full")
	}
	w.rows = append(w.rows, postings...)
	return len(postings), nil
}

func postings(category string, n int) []models.RawPosting {
	out := make([]models.RawPosting, n)
	for i := range out {
		out[i] = models.NewRawPosting(category, "")
	}
	return out
}

func TestCollect(t *testing.T) {
	s := &fakeScraper{
		results: map[string][]models.RawPosting{
			"Data Engineer":   postings("Data Engineer", 3),
			"DevOps Engineer": postings("DevOps Engineer", 2),
			"Data Analyst":    postings("Data Analyst", 1),
		},
		errs: map[string]error{"QA Engineer": errors.New("selector timeout")},
	}
	w := &fakeWriter{failFor: "DevOps Engineer"}

	categories := []string{"Data Engineer", "DevOps Engineer", "QA Engineer", "Data Analyst"}
	report, err := Collect(context.Background(), s, nil, categories, w, nil)
	require.NoError(t, err)

	assert.Equal(t, categories, s.calls)
	assert.Equal(t, 4, report.Categories)
	assert.Equal(t, 6, report.Collected)
	assert.Equal(t, 4, report.Written)
	assert.Equal(t, []string{"DevOps Engineer", "QA Engineer"}, report.FailedCategories)
	assert.Len(t, w.rows, 4)
}

func TestCollect_CancelledKeepsCollectedPostings(t *testing.T) {
	s := &fakeScraper{
		results: map[string][]models.RawPosting{"Data Engineer": postings("Data Engineer", 2)},
		errs:    map[string]error{"Data Engineer": context.Canceled},
	}
	w := &fakeWriter{}

	report, err := Collect(context.Background(), s, nil, []string{"Data Engineer", "Data Analyst"}, w, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"Data Engineer"}, s.calls)
	assert.Equal(t, 2, report.Written)
	assert.Len(t, w.rows, 2)
}
