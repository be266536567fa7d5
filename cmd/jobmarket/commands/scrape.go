package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/oscarl77/tech-job-market-analysis/internal/browser"
	"github.com/oscarl77/tech-job-market-analysis/internal/dedup"
	"github.com/oscarl77/tech-job-market-analysis/internal/scraper"
	"github.com/oscarl77/tech-job-market-analysis/internal/scraper/cwjobs"
)

const cookiesFile = "cookies-cwjobs.json"

// ScrapeAction collects postings for every search title into the raw table.
func ScrapeAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if titles := cmd.StringSlice("title"); len(titles) > 0 {
		app.Config.Scrape.SearchTitles = titles
	}
	if pages := cmd.Int("pages"); pages > 0 {
		app.Config.Scrape.Pages = pages
	}

	report, err := runScrape(ctx, app)
	fmt.Printf("categories: %d, collected: %d, written: %d, failed: %v\n",
		report.Categories, report.Collected, report.Written, report.FailedCategories)
	return err
}

// openSeenCache prefers Redis when a URL is configured, else the JSON file
// under cache_path. The returned close func is never nil.
func openSeenCache(ctx context.Context, app *AppContext) (dedup.SeenCache, func(), error) {
	cfg := app.Config
	if cfg.Redis.URL != "" {
		rdb, err := dedup.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		app.Logger.Info("seen cache: redis", "key", cfg.Redis.Key)
		cache := dedup.NewRedisCache(rdb, cfg.Redis.Key, cfg.Scrape.SeenExpiry, app.Logger)
		return cache, func() { rdb.Close() }, nil
	}

	cache, err := dedup.NewJobCache(cfg.CachePath, cfg.Scrape.SeenExpiry, app.Logger)
	if err != nil {
		return nil, nil, err
	}
	app.Logger.Info("seen cache: file", "path", cfg.CachePath, "entries", cache.Len())
	return cache, func() {}, nil
}

func runScrape(ctx context.Context, app *AppContext) (scraper.Report, error) {
	cfg := app.Config
	log := app.Logger

	seen, closeSeen, err := openSeenCache(ctx, app)
	if err != nil {
		return scraper.Report{}, err
	}
	defer closeSeen()

	pm, err := browser.NewPlaywright(ctx, browser.LaunchOptions{
		Headless: cfg.Scrape.Headless,
		Install:  cfg.Scrape.InstallBrowser,
	}, log)
	if err != nil {
		return scraper.Report{}, err
	}
	defer pm.Close()

	cookiePath := filepath.Join(cfg.CookiesPath, cookiesFile)
	cookies, err := browser.LoadCookies(cookiePath)
	if err != nil {
		log.Debug("no cookies loaded, continuing", "path", cookiePath, "error", err)
	}

	page, err := pm.NewPage(cookies)
	if err != nil {
		return scraper.Report{}, err
	}

	shots := browser.NewScreenshotDebugger(cfg.ScreenshotDir, log)
	s := cwjobs.New(cfg.ScraperOptions(), seen, shots, log)

	report, err := scraper.Collect(ctx, s, page, cfg.Scrape.SearchTitles, app.Store, log)
	log.Info("collection finished",
		"categories", report.Categories,
		"collected", report.Collected,
		"written", report.Written,
		"failed", len(report.FailedCategories),
	)
	if sendErr := app.Reporter.SendScrapeReport(report); sendErr != nil {
		log.Warn("failed to send scrape report", "error", sendErr)
	}
	return report, err
}
