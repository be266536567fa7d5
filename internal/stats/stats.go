// Package stats computes simple descriptive counts over the processed table.
package stats

import (
	"cmp"
	"slices"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

// DefaultTopSkills is how many skills Summarize ranks when top <= 0.
const DefaultTopSkills = 10

// Count is one labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Summary struct {
	Total       int     `json:"total"`
	BySeniority []Count `json:"by_seniority"`
	ByRegion    []Count `json:"by_region"`
	ByCity      []Count `json:"by_city"`
	TopSkills   []Count `json:"top_skills"`

	// MeanSalary ignores postings with an unknown (zero) salary.
	MeanSalary  int `json:"mean_salary"`
	SalaryRows  int `json:"salary_rows"`
	WithSkills  int `json:"with_skills"`
	UndatedRows int `json:"undated_rows"`
}

// Summarize tallies postings. Counts are sorted by descending count, then
// label, so output is stable for equal inputs.
func Summarize(postings []models.ProcessedPosting, top int) Summary {
	if top <= 0 {
		top = DefaultTopSkills
	}

	seniority := map[string]int{}
	region := map[string]int{}
	city := map[string]int{}
	skills := map[string]int{}

	s := Summary{Total: len(postings)}
	var salarySum int64
	for _, p := range postings {
		seniority[string(p.Seniority)]++
		region[p.Region]++
		city[p.City]++
		for _, sk := range p.Skills {
			skills[sk]++
		}
		if len(p.Skills) > 0 {
			s.WithSkills++
		}
		if p.SalaryNumeric > 0 {
			salarySum += int64(p.SalaryNumeric)
			s.SalaryRows++
		}
		if p.DatePosted.IsAbsent() {
			s.UndatedRows++
		}
	}
	if s.SalaryRows > 0 {
		s.MeanSalary = int(salarySum / int64(s.SalaryRows))
	}

	s.BySeniority = sorted(seniority)
	s.ByRegion = sorted(region)
	s.ByCity = sorted(city)
	s.TopSkills = sorted(skills)
	if len(s.TopSkills) > top {
		s.TopSkills = s.TopSkills[:top]
	}
	return s
}

func sorted(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
