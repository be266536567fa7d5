package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

// RawWriter is the part of the store the collection stage needs.
type RawWriter interface {
	AppendRaw(ctx context.Context, postings []models.RawPosting) (int, error)
}

// Report summarises one collection run.
type Report struct {
	Categories int
	Collected  int
	Written    int
	// FailedCategories lists categories whose scrape or append failed.
	FailedCategories []string
}

// Collect scrapes each category in turn and appends its postings to w.
// A failing category is logged and skipped; only cancellation ends the run
// early, after the postings already collected have been written.
func Collect(ctx context.Context, s Scraper, page playwright.Page, categories []string, w RawWriter, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var report Report

	for _, category := range categories {
		report.Categories++
		log := logger.With("scraper", s.Name(), "category", category)
		log.Info("collecting postings")

		postings, scrapeErr := s.Scrape(ctx, page, category)
		report.Collected += len(postings)

		if len(postings) > 0 {
			// write with a fresh context so a cancelled run still keeps its postings
			n, err := w.AppendRaw(context.WithoutCancel(ctx), postings)
			report.Written += n
			if err != nil {
				log.Error("failed to append raw postings", "rows", len(postings), "error", err)
				report.FailedCategories = append(report.FailedCategories, category)
				continue
			}
			log.Info("appended raw postings", "rows", n)
		}

		if scrapeErr != nil {
			if errors.Is(scrapeErr, context.Canceled) || errors.Is(scrapeErr, context.DeadlineExceeded) {
				return report, scrapeErr
			}
			log.Error("scrape failed", "error", scrapeErr)
			report.FailedCategories = append(report.FailedCategories, category)
		}
	}
	return report, ctx.Err()
}
