// Package cwjobs collects postings from cwjobs.co.uk, a StepStone board.
package cwjobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/oscarl77/tech-job-market-analysis/internal/browser"
	"github.com/oscarl77/tech-job-market-analysis/internal/dedup"
	"github.com/oscarl77/tech-job-market-analysis/internal/filter"
	"github.com/oscarl77/tech-job-market-analysis/internal/models"
	"github.com/oscarl77/tech-job-market-analysis/internal/scraper"
)

var _ scraper.Scraper = (*Scraper)(nil)

// fields are read after the title has rendered, so a short wait is enough
const fieldTimeout = 2 * time.Second

// Selectors locate the parts of a result page and of a posting page.
type Selectors struct {
	ResultLink     string `yaml:"result_link"`
	JobTitle       string `yaml:"job_title"`
	CompanyName    string `yaml:"company_name"`
	Location       string `yaml:"location"`
	EmploymentType string `yaml:"employment_type"`
	DatePosted     string `yaml:"date_posted"`
	Salary         string `yaml:"salary"`
	Description    string `yaml:"description"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		ResultLink:     `article[data-at="job-item"] a[data-at="job-item-title"]`,
		JobTitle:       `[data-at="header-job-title"]`,
		CompanyName:    `[data-at="metadata-company-name"]`,
		Location:       `[data-at="metadata-location"]`,
		EmploymentType: `[data-at="metadata-work-type"]`,
		DatePosted:     `[data-at="metadata-online-date"]`,
		Salary:         `[data-at="metadata-salary"]`,
		Description:    `[data-at="job-ad-content"]`,
	}
}

type Options struct {
	BaseURL        string
	JobPostBaseURL string
	URLTail        string
	Pages          int

	// IrrelevantLimit stops a category after this many consecutive
	// postings whose title lacks the category.
	IrrelevantLimit int

	// CookieButton is the accessible name of the consent button.
	CookieButton string
	Selectors    Selectors

	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	CookieTimeout     time.Duration

	PageDelay    browser.DelayRange
	PostingDelay browser.DelayRange
	// Scroll result pages before reading them so lazy cards render.
	Scroll bool
}

func DefaultOptions() Options {
	return Options{
		BaseURL:           DefaultBaseURL,
		JobPostBaseURL:    DefaultJobPostBaseURL,
		URLTail:           DefaultURLTail,
		Pages:             1,
		IrrelevantLimit:   filter.DefaultIrrelevantLimit,
		CookieButton:      "Just Necessary",
		Selectors:         DefaultSelectors(),
		NavigationTimeout: 60 * time.Second,
		SelectorTimeout:   10 * time.Second,
		CookieTimeout:     5 * time.Second,
		PageDelay:         browser.DelayRange{Min: 2 * time.Second, Max: 4 * time.Second},
		PostingDelay:      browser.DelayRange{Min: 4 * time.Second, Max: 8 * time.Second},
		Scroll:            true,
	}
}

// Scraper walks result pages, then opens each posting in turn on the same
// page. It remembers whether the consent banner was dismissed, so one
// Scraper must not be shared between goroutines.
type Scraper struct {
	opts         Options
	seen         dedup.SeenCache
	shots        *browser.ScreenshotDebugger
	logger       *slog.Logger
	consentGiven bool
}

// New builds a scraper. seen and shots may be nil.
func New(opts Options, seen dedup.SeenCache, shots *browser.ScreenshotDebugger, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{opts: opts, seen: seen, shots: shots, logger: logger}
}

func (s *Scraper) Name() string {
	return "CWJobs"
}

func (s *Scraper) Scrape(ctx context.Context, page playwright.Page, searchCategory string) ([]models.RawPosting, error) {
	log := s.logger.With("category", searchCategory)

	jobURLs, err := s.collectJobURLs(ctx, page, searchCategory)
	if err != nil {
		return nil, err
	}
	log.Info("collected job urls", "count", len(jobURLs))

	guard := filter.NewRelevanceGuard(searchCategory, s.opts.IrrelevantLimit)
	var postings []models.RawPosting
	var visited []string
	skipped := 0

	for i, jobURL := range jobURLs {
		if err := ctx.Err(); err != nil {
			s.markSeen(ctx, visited)
			return postings, err
		}
		if s.seen != nil && s.seen.IsSeen(ctx, jobURL) {
			skipped++
			continue
		}

		posting, err := s.scrapePosting(page, jobURL, searchCategory)
		if err != nil {
			log.Warn("skipping posting", "url", jobURL, "error", err)
		} else {
			postings = append(postings, posting)
			visited = append(visited, jobURL)
			if !guard.Observe(posting.JobTitle) {
				log.Info("too many irrelevant postings in a row, stopping", "streak", guard.Streak())
				break
			}
		}

		if i < len(jobURLs)-1 {
			if err := browser.RandomDelay(ctx, s.opts.PostingDelay); err != nil {
				s.markSeen(ctx, visited)
				return postings, err
			}
		}
	}

	s.markSeen(ctx, visited)
	log.Info("category finished", "postings", len(postings), "skipped_seen", skipped)
	return postings, nil
}

func (s *Scraper) markSeen(ctx context.Context, urls []string) {
	if s.seen == nil || len(urls) == 0 {
		return
	}
	if err := s.seen.Add(context.WithoutCancel(ctx), urls); err != nil {
		s.logger.Warn("failed to update seen cache", "error", err)
	}
}

// collectJobURLs visits every result page and returns the distinct posting
// URLs in page order. A page that fails to load is skipped.
func (s *Scraper) collectJobURLs(ctx context.Context, page playwright.Page, searchCategory string) ([]string, error) {
	pageURLs := SearchPageURLs(s.opts.BaseURL, s.opts.URLTail, searchCategory, s.opts.Pages)
	sel := s.opts.Selectors

	var jobURLs []string
	seenInRun := make(map[string]struct{})

	for i, pageURL := range pageURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, err := page.Goto(pageURL, s.gotoOptions()); err != nil {
			s.logger.Warn("failed to load result page", "url", pageURL, "error", err)
			continue
		}
		if !s.consentGiven {
			s.acceptCookies(page)
		}

		if _, err := page.WaitForSelector(sel.ResultLink, playwright.PageWaitForSelectorOptions{
			Timeout: milliseconds(s.opts.SelectorTimeout),
		}); err != nil {
			s.shots.CaptureAndLog(page, "cwjobs-results", "result cards not found")
			s.logger.Warn("no result cards", "url", pageURL, "error", err)
			continue
		}
		if s.opts.Scroll {
			if err := browser.HumanScroll(ctx, page); err != nil {
				s.logger.Debug("scroll failed", "error", err)
			}
		}

		links, err := page.Locator(sel.ResultLink).All()
		if err != nil {
			s.logger.Warn("failed to read result links", "url", pageURL, "error", err)
			continue
		}
		added := 0
		for _, link := range links {
			href, err := link.GetAttribute("href")
			if err != nil {
				continue
			}
			jobURL := ResolveJobURL(s.opts.JobPostBaseURL, href)
			if jobURL == "" {
				continue
			}
			if _, dup := seenInRun[jobURL]; dup {
				continue
			}
			seenInRun[jobURL] = struct{}{}
			jobURLs = append(jobURLs, jobURL)
			added++
		}
		s.logger.Debug("result page read", "page", i+1, "links", added)

		if i < len(pageURLs)-1 {
			if err := browser.RandomDelay(ctx, s.opts.PageDelay); err != nil {
				return nil, err
			}
		}
	}
	return jobURLs, nil
}

// acceptCookies dismisses the consent banner. A missing banner is not an error.
func (s *Scraper) acceptCookies(page playwright.Page) {
	if s.opts.CookieButton == "" {
		return
	}
	button := page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{
		Name: s.opts.CookieButton,
	})
	if err := button.WaitFor(playwright.LocatorWaitForOptions{
		Timeout: milliseconds(s.opts.CookieTimeout),
	}); err != nil {
		s.logger.Debug("no consent banner", "button", s.opts.CookieButton)
		return
	}
	if err := button.Click(); err != nil {
		s.logger.Warn("failed to click consent button", "error", err)
		return
	}
	s.consentGiven = true
}

// scrapePosting opens one posting and reads every field it can. Missing
// fields stay "N/A".
func (s *Scraper) scrapePosting(page playwright.Page, jobURL, searchCategory string) (models.RawPosting, error) {
	sel := s.opts.Selectors
	posting := models.NewRawPosting(searchCategory, jobURL)

	if _, err := page.Goto(jobURL, s.gotoOptions()); err != nil {
		return posting, fmt.Errorf("failed to load posting: %w", err)
	}
	if _, err := page.WaitForSelector(sel.JobTitle, playwright.PageWaitForSelectorOptions{
		Timeout: milliseconds(s.opts.SelectorTimeout),
	}); err != nil {
		s.shots.CaptureAndLog(page, "cwjobs-posting", "posting title not found")
		return posting, fmt.Errorf("posting title not found: %w", err)
	}

	posting.JobTitle = readText(page, sel.JobTitle, false)
	posting.CompanyName = readText(page, sel.CompanyName, false)
	posting.Location = readText(page, sel.Location, false)
	posting.EmploymentType = readText(page, sel.EmploymentType, false)
	posting.DatePostedRaw = readText(page, sel.DatePosted, false)
	posting.SalaryRaw = readText(page, sel.Salary, false)
	posting.FullDescription = readText(page, sel.Description, true)
	posting.ScrapedAt = time.Now().UTC()
	return posting, nil
}

func (s *Scraper) gotoOptions() playwright.PageGotoOptions {
	return playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   milliseconds(s.opts.NavigationTimeout),
	}
}

func readText(page playwright.Page, selector string, multiline bool) string {
	if selector == "" {
		return models.NotAvailable
	}
	loc := page.Locator(selector).First()

	var text string
	var err error
	if multiline {
		text, err = loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: milliseconds(fieldTimeout)})
	} else {
		text, err = loc.TextContent(playwright.LocatorTextContentOptions{Timeout: milliseconds(fieldTimeout)})
	}
	if err != nil {
		return models.NotAvailable
	}
	return cleanText(text, multiline)
}

// cleanText collapses whitespace. Multiline text keeps its non-empty lines.
func cleanText(text string, multiline bool) string {
	if !multiline {
		text = strings.Join(strings.Fields(text), " ")
	} else {
		var lines []string
		for _, line := range strings.Split(text, "\n") {
			if line = strings.Join(strings.Fields(line), " "); line != "" {
				lines = append(lines, line)
			}
		}
		text = strings.Join(lines, "\n")
	}
	if text == "" {
		return models.NotAvailable
	}
	return text
}

func milliseconds(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
