// Package pipeline turns the raw table into the processed table: load every
// raw posting, normalize each one independently, replace the processed table.
package pipeline

import (
	"time"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
	"github.com/oscarl77/tech-job-market-analysis/internal/normalize"
	"github.com/oscarl77/tech-job-market-analysis/internal/reference"
)

// Normalizer holds everything a transform needs that is worth compiling
// once per batch. It is read-only after construction.
type Normalizer struct {
	tables     reference.Tables
	scrapeDate time.Time
	skills     *normalize.SkillMatcher
	seniority  *normalize.SeniorityClassifier
}

func NewNormalizer(tables reference.Tables, scrapeDate time.Time) *Normalizer {
	return &Normalizer{
		tables:     tables,
		scrapeDate: normalize.CalendarDate(scrapeDate),
		skills:     normalize.NewSkillMatcher(tables.Skills),
		seniority:  normalize.NewSeniorityClassifier(normalize.DefaultSeniorityRules()),
	}
}

// WithSeniorityRules returns a copy using rules instead of the defaults.
func (n *Normalizer) WithSeniorityRules(rules normalize.SeniorityRules) *Normalizer {
	c := *n
	c.seniority = normalize.NewSeniorityClassifier(rules)
	return &c
}

// Transform derives the processed form of one raw posting. It is a pure
// function of raw and the normalizer's tables.
func (n *Normalizer) Transform(raw models.RawPosting) models.ProcessedPosting {
	salary := normalize.ParseSalary(raw.SalaryRaw)
	return models.ProcessedPosting{
		SearchCategory:      raw.SearchCategory,
		JobTitle:            raw.JobTitle,
		CompanyName:         raw.CompanyName,
		Seniority:           n.seniority.Classify(raw.JobTitle, raw.FullDescription, salary),
		SalaryNumeric:       salary,
		EmploymentTypeClean: normalize.NormalizeEmploymentType(raw.EmploymentType),
		City:                normalize.ClassifyCity(raw.Location, n.tables.TargetCities),
		Region:              normalize.ClassifyRegion(raw.Location, n.tables.Regions),
		DatePosted:          normalize.ParseDate(raw.DatePostedRaw, n.scrapeDate),
		Skills:              n.skills.Extract(raw.FullDescription),
	}
}

// Transform is the one-off form of Normalizer.Transform.
func Transform(raw models.RawPosting, tables reference.Tables, scrapeDate time.Time) models.ProcessedPosting {
	return NewNormalizer(tables, scrapeDate).Transform(raw)
}
