package models

import (
	"strings"
	"time"

	"github.com/samber/mo"
)

// NotAvailable is the sentinel stored for any field the collector could not extract.
const NotAvailable = "N/A"

type Seniority string

const (
	SeniorityJunior Seniority = "Junior"
	SeniorityMid    Seniority = "Mid-Level"
	SenioritySenior Seniority = "Senior"
)

// RawPosting is one scraped job advertisement, stored append-only in the raw table.
type RawPosting struct {
	ID              int64     `json:"id,omitempty"`
	JobTitle        string    `json:"job_title"`
	CompanyName     string    `json:"company_name"`
	Location        string    `json:"location"`
	EmploymentType  string    `json:"employment_type"`
	DatePostedRaw   string    `json:"date_posted_raw"`
	SalaryRaw       string    `json:"salary_raw"`
	FullDescription string    `json:"full_description"`
	SearchCategory  string    `json:"search_category"`
	JobURL          string    `json:"job_url"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// NewRawPosting returns a posting with every text field set to NotAvailable.
func NewRawPosting(searchCategory, jobURL string) RawPosting {
	return RawPosting{
		JobTitle:        NotAvailable,
		CompanyName:     NotAvailable,
		Location:        NotAvailable,
		EmploymentType:  NotAvailable,
		DatePostedRaw:   NotAvailable,
		SalaryRaw:       NotAvailable,
		FullDescription: NotAvailable,
		SearchCategory:  searchCategory,
		JobURL:          jobURL,
	}
}

// ProcessedPosting is the normalized form of exactly one RawPosting.
type ProcessedPosting struct {
	SearchCategory      string               `json:"search_category"`
	JobTitle            string               `json:"job_title"`
	CompanyName         string               `json:"company_name"`
	Seniority           Seniority            `json:"seniority"`
	SalaryNumeric       int                  `json:"salary_numeric"`
	EmploymentTypeClean string               `json:"employment_type_clean"`
	City                string               `json:"city"`
	Region              string               `json:"region"`
	DatePosted          mo.Option[time.Time] `json:"date_posted"`
	Skills              []string             `json:"skills"`
}

// ProcessedColumns is the fixed column set of the processed table, in order.
var ProcessedColumns = []string{
	"search_category",
	"job_title",
	"company_name",
	"seniority",
	"salary_numeric",
	"employment_type_clean",
	"city",
	"region",
	"date_posted",
	"skills",
}

// SkillsString serializes the skills the way the processed table stores them.
func (p ProcessedPosting) SkillsString() string {
	return strings.Join(p.Skills, ",")
}

// SplitSkills is the inverse of SkillsString.
func SplitSkills(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// IsMissing reports whether a raw field holds no usable text.
func IsMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == NotAvailable
}
