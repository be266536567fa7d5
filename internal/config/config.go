// Load envs from .env
// Load YAML config
// Override from environment
// Provide default values
// Validate config

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/oscarl77/tech-job-market-analysis/internal/browser"
	"github.com/oscarl77/tech-job-market-analysis/internal/database"
	"github.com/oscarl77/tech-job-market-analysis/internal/scraper/cwjobs"
)

// DefaultPath is read when no --config flag is given. It may be absent.
const DefaultPath = "configs/config.yaml"

const dateLayout = "2006-01-02"

// Configuration validation errors.
var (
	ErrInvalidDriver       = errors.New("database.driver must be 'sqlite' or 'postgres'")
	ErrMissingDatabaseURL  = errors.New("database.url is required for postgres")
	ErrNoSearchTitles      = errors.New("scrape.search_titles needs at least one title")
	ErrInvalidPages        = errors.New("scrape.pages must be at least 1")
	ErrInvalidDelay        = errors.New("delay min must not exceed max")
	ErrInvalidTimeout      = errors.New("scrape timeouts must be positive")
	ErrInvalidScrapeDate   = errors.New("pipeline.scrape_date must be YYYY-MM-DD")
	ErrInvalidWorkers      = errors.New("pipeline.workers must be at least 1")
	ErrMissingTelegramChat = errors.New("telegram.chat_id is required when a bot token is set")
	ErrInvalidLogLevel     = errors.New("log.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("log.format must be 'text' or 'json'")
	ErrMissingSchedule     = errors.New("schedule.cron is required")
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Telegram TelegramConfig `yaml:"telegram"`
	Redis    RedisConfig    `yaml:"redis"`
	Server   ServerConfig   `yaml:"server"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Log      LogConfig      `yaml:"log"`

	// ReferencePath points at a YAML file overriding the UK region, city
	// and skill tables. Empty means built-in tables.
	ReferencePath string `yaml:"reference_path"`
	//Paths
	CookiesPath   string `yaml:"cookies_path"`
	CachePath     string `yaml:"cache_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

type DatabaseConfig struct {
	Driver         string `yaml:"driver" env:"DATABASE_DRIVER"`
	URL            string `yaml:"url" env:"DATABASE_URL"`
	RawTable       string `yaml:"raw_table"`
	ProcessedTable string `yaml:"processed_table"`
}

type ScrapeConfig struct {
	SearchTitles    []string `yaml:"search_titles"`
	Pages           int      `yaml:"pages"`
	IrrelevantLimit int      `yaml:"irrelevant_limit"`
	Headless        bool     `yaml:"headless"`
	InstallBrowser  bool     `yaml:"install_browser"`

	BaseURL        string           `yaml:"base_url"`
	JobPostBaseURL string           `yaml:"job_post_base_url"`
	URLTail        string           `yaml:"url_tail"`
	CookieButton   string           `yaml:"cookie_button"`
	Selectors      cwjobs.Selectors `yaml:"selectors"`

	NavigationTimeout time.Duration      `yaml:"navigation_timeout"`
	SelectorTimeout   time.Duration      `yaml:"selector_timeout"`
	CookieTimeout     time.Duration      `yaml:"cookie_timeout"`
	PageDelay         browser.DelayRange `yaml:"page_delay"`
	PostingDelay      browser.DelayRange `yaml:"posting_delay"`

	// SeenExpiry is how long an opened posting URL is skipped in later runs.
	SeenExpiry time.Duration `yaml:"seen_expiry"`
}

type PipelineConfig struct {
	// ScrapeDate anchors relative "posted N days ago" phrases.
	ScrapeDate string `yaml:"scrape_date"`
	Workers    int    `yaml:"workers"`
}

type TelegramConfig struct {
	Token  string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
	Key string `yaml:"key"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Mode is the gin mode: debug, release or test.
	Mode string `yaml:"mode"`
}

type ScheduleConfig struct {
	Cron       string `yaml:"cron"`
	RunOnStart bool   `yaml:"run_on_start"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format"`
}

// Default returns a configuration that validates as is.
func Default() *Config {
	opts := cwjobs.DefaultOptions()
	return &Config{
		Database: DatabaseConfig{
			Driver:         database.DriverSQLite,
			URL:            "jobs.db",
			RawTable:       database.DefaultRawTable,
			ProcessedTable: database.DefaultProcessedTable,
		},
		Scrape: ScrapeConfig{
			SearchTitles:      []string{"Data Engineer"},
			Pages:             opts.Pages,
			IrrelevantLimit:   opts.IrrelevantLimit,
			Headless:          true,
			BaseURL:           opts.BaseURL,
			JobPostBaseURL:    opts.JobPostBaseURL,
			URLTail:           opts.URLTail,
			CookieButton:      opts.CookieButton,
			Selectors:         opts.Selectors,
			NavigationTimeout: opts.NavigationTimeout,
			SelectorTimeout:   opts.SelectorTimeout,
			CookieTimeout:     opts.CookieTimeout,
			PageDelay:         opts.PageDelay,
			PostingDelay:      opts.PostingDelay,
			SeenExpiry:        30 * 24 * time.Hour,
		},
		Pipeline: PipelineConfig{
			ScrapeDate: "2025-09-01",
			Workers:    4,
		},
		Server:   ServerConfig{Addr: ":8080", Mode: "release"},
		Schedule: ScheduleConfig{Cron: "@every 24h"},
		Log:      LogConfig{Level: "info", Format: "text"},

		CookiesPath:   ".cookies",
		CachePath:     ".cache",
		ScreenshotDir: "logs/screenshots",
	}
}

// Load reads .env, then the YAML file at path over the defaults, then the
// environment overrides, and validates the result. A missing file at
// DefaultPath is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
		//a postgres url implies the postgres driver unless one is given
		if os.Getenv("DATABASE_DRIVER") == "" && (strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://")) {
			c.Database.Driver = database.DriverPostgres
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case database.DriverSQLite:
	case database.DriverPostgres:
		if c.Database.URL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidDriver, c.Database.Driver)
	}
	for _, table := range []string{c.Database.RawTable, c.Database.ProcessedTable} {
		if err := database.ValidateTableName(table); err != nil {
			return err
		}
	}

	if len(c.Scrape.SearchTitles) == 0 {
		return ErrNoSearchTitles
	}
	for i, title := range c.Scrape.SearchTitles {
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("%w: search_titles[%d] is empty", ErrNoSearchTitles, i)
		}
	}
	if c.Scrape.Pages < 1 {
		return ErrInvalidPages
	}
	if c.Scrape.NavigationTimeout <= 0 || c.Scrape.SelectorTimeout <= 0 || c.Scrape.CookieTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Scrape.PageDelay.Min > c.Scrape.PageDelay.Max {
		return fmt.Errorf("%w: scrape.page_delay", ErrInvalidDelay)
	}
	if c.Scrape.PostingDelay.Min > c.Scrape.PostingDelay.Max {
		return fmt.Errorf("%w: scrape.posting_delay", ErrInvalidDelay)
	}

	if _, err := c.ScrapeDate(); err != nil {
		return err
	}
	if c.Pipeline.Workers < 1 {
		return ErrInvalidWorkers
	}

	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return ErrMissingTelegramChat
	}

	if c.Schedule.Cron == "" {
		return ErrMissingSchedule
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return ErrInvalidLogLevel
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return ErrInvalidLogFormat
	}
	return nil
}

// ScrapeDate parses pipeline.scrape_date as a UTC calendar date.
func (c *Config) ScrapeDate() (time.Time, error) {
	t, err := time.Parse(dateLayout, c.Pipeline.ScrapeDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: got %q", ErrInvalidScrapeDate, c.Pipeline.ScrapeDate)
	}
	return t, nil
}

// StoreConfig maps the database section onto the store configuration.
func (c *Config) StoreConfig() database.Config {
	return database.Config{
		Driver:         c.Database.Driver,
		DSN:            c.Database.URL,
		RawTable:       c.Database.RawTable,
		ProcessedTable: c.Database.ProcessedTable,
	}
}

// ScraperOptions maps the scrape section onto the CWJobs collector options.
func (c *Config) ScraperOptions() cwjobs.Options {
	s := c.Scrape
	return cwjobs.Options{
		BaseURL:           s.BaseURL,
		JobPostBaseURL:    s.JobPostBaseURL,
		URLTail:           s.URLTail,
		Pages:             s.Pages,
		IrrelevantLimit:   s.IrrelevantLimit,
		CookieButton:      s.CookieButton,
		Selectors:         s.Selectors,
		NavigationTimeout: s.NavigationTimeout,
		SelectorTimeout:   s.SelectorTimeout,
		CookieTimeout:     s.CookieTimeout,
		PageDelay:         s.PageDelay,
		PostingDelay:      s.PostingDelay,
		Scroll:            true,
	}
}

// String returns a string representation of the config without secrets.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Driver: %s, Titles: %d, Pages: %d, Workers: %d, Telegram: %t, Redis: %t}",
		c.Database.Driver,
		len(c.Scrape.SearchTitles),
		c.Scrape.Pages,
		c.Pipeline.Workers,
		c.Telegram.Token != "",
		c.Redis.URL != "",
	)
}
