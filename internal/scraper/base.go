// Package scraper defines the collector contract and runs collectors over a
// list of search categories.
package scraper

import (
	"context"

	"github.com/playwright-community/playwright-go"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

// Scraper defines the interface that all job-board collectors implement.
type Scraper interface {
	// Scrape collects raw postings for one search category. On cancellation
	// it returns what it collected so far together with ctx.Err().
	Scrape(ctx context.Context, page playwright.Page, searchCategory string) ([]models.RawPosting, error)

	// Name is the board name, e.g. CWJobs.
	Name() string
}
