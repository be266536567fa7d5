package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/oscarl77/tech-job-market-analysis/internal/logger"
	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

func samplePostings() []models.ProcessedPosting {
	return []models.ProcessedPosting{
		{
			SearchCategory:      "Data Engineer",
			JobTitle:            "Senior Data Engineer",
			CompanyName:         "Acme",
			Seniority:           models.SenioritySenior,
			SalaryNumeric:       55000,
			EmploymentTypeClean: "Permanent",
			City:                "London",
			Region:              "London",
			DatePosted:          mo.Some(time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)),
			Skills:              []string{"Python", "SQL"},
		},
		{
			SearchCategory:      "Data Analyst",
			JobTitle:            "Data Analyst",
			CompanyName:         models.NotAvailable,
			Seniority:           models.SeniorityMid,
			EmploymentTypeClean: models.NotAvailable,
			City:                models.NotAvailable,
			Region:              "Other",
			DatePosted:          mo.None[time.Time](),
			Skills:              []string{"Excel"},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, samplePostings(), logger.Discard()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PostingsSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(PostingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.ProcessedColumns, rows[0])
	assert.Equal(t, []string{
		"Data Engineer", "Senior Data Engineer", "Acme", "Senior", "55000",
		"Permanent", "London", "London", "2025-08-18", "Python,SQL",
	}, rows[1])
	assert.Equal(t, "", rows[2][8])
	assert.Equal(t, "Excel", rows[2][9])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"postings", "2"}, summary[0])
	assert.Equal(t, []string{"mean salary", "55000"}, summary[1])
}

func TestWriteXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.xlsx")
	require.NoError(t, WriteXLSXFile(path, nil, logger.Discard()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(PostingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
