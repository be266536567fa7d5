package stats

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

func posting(seniority models.Seniority, region, city string, salary int, skills ...string) models.ProcessedPosting {
	return models.ProcessedPosting{
		Seniority:     seniority,
		Region:        region,
		City:          city,
		SalaryNumeric: salary,
		Skills:        skills,
		DatePosted:    mo.Some(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestSummarize(t *testing.T) {
	undated := posting(models.SeniorityJunior, "Scotland", "Glasgow", 0)
	undated.DatePosted = mo.None[time.Time]()

	postings := []models.ProcessedPosting{
		posting(models.SenioritySenior, "London", "London", 80000, "Python", "SQL"),
		posting(models.SenioritySenior, "London", "London", 70000, "SQL"),
		posting(models.SeniorityMid, "North West", "Other UK", 0, "AWS"),
		undated,
	}

	s := Summarize(postings, 2)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, []Count{{"Senior", 2}, {"Junior", 1}, {"Mid-Level", 1}}, s.BySeniority)
	assert.Equal(t, []Count{{"London", 2}, {"North West", 1}, {"Scotland", 1}}, s.ByRegion)
	assert.Equal(t, []Count{{"London", 2}, {"Glasgow", 1}, {"Other UK", 1}}, s.ByCity)
	assert.Equal(t, []Count{{"SQL", 2}, {"AWS", 1}}, s.TopSkills)
	assert.Equal(t, 75000, s.MeanSalary)
	assert.Equal(t, 2, s.SalaryRows)
	assert.Equal(t, 3, s.WithSkills)
	assert.Equal(t, 1, s.UndatedRows)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 0)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.MeanSalary)
	assert.Empty(t, s.TopSkills)
	assert.NotNil(t, s.ByRegion)
}
