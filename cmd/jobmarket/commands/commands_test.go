package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/oscarl77/tech-job-market-analysis/internal/database"
	"github.com/oscarl77/tech-job-market-analysis/internal/export"
	"github.com/oscarl77/tech-job-market-analysis/internal/logger"
	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

// setup writes a config pointing at a fresh SQLite file seeded with raw rows.
func setup(t *testing.T) (configPath, dbPath string) {
	t.Helper()
	for _, env := range []string{"DATABASE_URL", "DATABASE_DRIVER", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "REDIS_URL", "LOG_LEVEL"} {
		t.Setenv(env, "")
	}

	dir := t.TempDir()
	dbPath = filepath.Join(dir, "jobs.db")
	configPath = filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf("database:\n  driver: sqlite\n  url: %s\npipeline:\n  scrape_date: \"2025-09-01\"\n  workers: 2\nlog:\n  level: error\n", dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))

	ctx := context.Background()
	store, err := database.Open(ctx, database.Config{DSN: dbPath}, logger.Discard())
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	dup := models.RawPosting{
		JobTitle: "Senior Data Engineer", CompanyName: "Acme", Location: "Leeds",
		EmploymentType: "Permanent", DatePostedRaw: "Published: 3 days ago",
		SalaryRaw: "£70,000", FullDescription: "Python, Airflow and AWS.",
		SearchCategory: "Data Engineer", JobURL: "https://www.cwjobs.co.uk/job/1",
	}
	other := dup
	other.JobTitle = "Graduate Data Analyst"
	other.FullDescription = "SQL and Power BI."
	other.JobURL = "https://www.cwjobs.co.uk/job/2"

	_, err = store.AppendRaw(ctx, []models.RawPosting{dup, other, dup})
	require.NoError(t, err)
	return configPath, dbPath
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	return NewApp().Run(context.Background(), append([]string{"jobmarket"}, args...))
}

func loadProcessed(t *testing.T, dbPath string) []models.ProcessedPosting {
	t.Helper()
	ctx := context.Background()
	store, err := database.Open(ctx, database.Config{DSN: dbPath}, logger.Discard())
	require.NoError(t, err)
	defer store.Close()
	postings, err := store.LoadProcessed(ctx)
	require.NoError(t, err)
	return postings
}

func TestDedupThenProcess(t *testing.T) {
	configPath, dbPath := setup(t)

	require.NoError(t, run(t, "--config", configPath, "dedup"))
	require.NoError(t, run(t, "--config", configPath, "process"))

	postings := loadProcessed(t, dbPath)
	require.Len(t, postings, 2)
	assert.Equal(t, models.SenioritySenior, postings[0].Seniority)
	assert.Equal(t, "Yorkshire", postings[0].Region)
	assert.Equal(t, "Leeds", postings[0].City)
	assert.Equal(t, []string{"Python", "Airflow", "AWS"}, postings[0].Skills)
	assert.Equal(t, models.SeniorityJunior, postings[1].Seniority)
}

func TestProcess_ScrapeDateFlag(t *testing.T) {
	configPath, dbPath := setup(t)

	require.NoError(t, run(t, "--config", configPath, "process", "--scrape-date", "2025-10-10", "--workers", "1"))

	postings := loadProcessed(t, dbPath)
	require.Len(t, postings, 3)
	d, ok := postings[0].DatePosted.Get()
	require.True(t, ok)
	assert.Equal(t, "2025-10-07", d.Format("2006-01-02"))
}

func TestProcess_BadScrapeDate(t *testing.T) {
	configPath, _ := setup(t)
	assert.Error(t, run(t, "--config", configPath, "process", "--scrape-date", "yesterday"))
}

func TestExportAndStats(t *testing.T) {
	configPath, _ := setup(t)
	require.NoError(t, run(t, "--config", configPath, "process"))

	out := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, run(t, "--config", configPath, "export", "-o", out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.PostingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	require.NoError(t, run(t, "--config", configPath, "stats", "--top", "3"))
	require.NoError(t, run(t, "--config", configPath, "stats", "--json"))
}

func TestMissingConfigFile(t *testing.T) {
	err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "stats")
	assert.Error(t, err)
}
