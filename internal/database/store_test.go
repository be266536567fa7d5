package database

import (
	"context"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	store, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func rawFixture(title, description string) models.RawPosting {
	p := models.NewRawPosting("Data Engineer", "https://www.cwjobs.co.uk/job/"+title)
	p.JobTitle = title
	p.FullDescription = description
	p.ScrapedAt = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	return p
}

func processedFixtures() []models.ProcessedPosting {
	return []models.ProcessedPosting{
		{
			SearchCategory:      "Data Engineer",
			JobTitle:            "Senior Data Engineer",
			CompanyName:         "Acme",
			Seniority:           models.SenioritySenior,
			SalaryNumeric:       80000,
			EmploymentTypeClean: "Permanent",
			City:                "London",
			Region:              "London",
			DatePosted:          mo.Some(time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)),
			Skills:              []string{"Python", "SQL"},
		},
		{
			SearchCategory:      "Data Engineer",
			JobTitle:            "Data Engineer",
			CompanyName:         models.NotAvailable,
			Seniority:           models.SeniorityMid,
			EmploymentTypeClean: models.NotAvailable,
			City:                models.NotAvailable,
			Region:              "Other",
			DatePosted:          mo.None[time.Time](),
			Skills:              []string{},
		},
	}
}

// exerciseStore runs the backend-independent contract against a migrated store.
func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("append and load raw", func(t *testing.T) {
		n, err := store.AppendRaw(ctx, []models.RawPosting{
			rawFixture("first", "same text"),
			rawFixture("second", "other text"),
			rawFixture("third", "same text"),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = store.AppendRaw(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		rows, err := store.LoadRaw(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "first", rows[0].JobTitle)
		assert.Equal(t, "third", rows[2].JobTitle)
		assert.Equal(t, models.NotAvailable, rows[0].SalaryRaw)
		assert.True(t, rows[0].ScrapedAt.Equal(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)))
		assert.Less(t, rows[0].ID, rows[1].ID)
	})

	t.Run("deduplicate keeps the first", func(t *testing.T) {
		removed, err := store.DeduplicateRaw(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		rows, err := store.LoadRaw(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "first", rows[0].JobTitle)
		assert.Equal(t, "second", rows[1].JobTitle)

		removed, err = store.DeduplicateRaw(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})

	t.Run("replace processed", func(t *testing.T) {
		fixtures := processedFixtures()
		require.NoError(t, store.ReplaceProcessed(ctx, fixtures))

		got, err := store.LoadProcessed(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, fixtures[0].JobTitle, got[0].JobTitle)
		assert.Equal(t, fixtures[0].Skills, got[0].Skills)
		assert.Equal(t, 80000, got[0].SalaryNumeric)
		date, ok := got[0].DatePosted.Get()
		require.True(t, ok)
		assert.Equal(t, "2025-08-18", date.Format("2006-01-02"))

		assert.True(t, got[1].DatePosted.IsAbsent())
		assert.Equal(t, []string{}, got[1].Skills)
		assert.Equal(t, models.SeniorityMid, got[1].Seniority)
	})

	t.Run("replace is a full swap", func(t *testing.T) {
		require.NoError(t, store.ReplaceProcessed(ctx, processedFixtures()[1:]))

		got, err := store.LoadProcessed(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Data Engineer", got[0].JobTitle)

		require.NoError(t, store.ReplaceProcessed(ctx, nil))
		got, err = store.LoadProcessed(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("migrate is repeatable", func(t *testing.T) {
		require.NoError(t, store.Migrate(ctx))
		require.NoError(t, store.Ping(ctx))
	})
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, newSQLiteStore(t))
}

func TestOpen_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"unknown driver", Config{Driver: "oracle"}, ErrUnknownDriver},
		{"bad raw table", Config{DSN: ":memory:", RawTable: "jobs; DROP TABLE x"}, ErrInvalidTableName},
		{"upper case table", Config{DSN: ":memory:", ProcessedTable: "Jobs"}, ErrInvalidTableName},
		{"same table twice", Config{DSN: ":memory:", RawTable: "jobs", ProcessedTable: "jobs"}, ErrInvalidTableName},
		{"postgres without dsn", Config{Driver: DriverPostgres}, ErrMissingDSN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.cfg, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, store)
		})
	}
}

func TestStagingName(t *testing.T) {
	a := stagingName("jobs_processed")
	b := stagingName("jobs_processed")

	assert.NoError(t, ValidateTableName(a))
	assert.Contains(t, a, "jobs_processed_staging_")
	assert.NotEqual(t, a, b)
}
