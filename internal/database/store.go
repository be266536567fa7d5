// Package database persists raw and processed postings. Each stage owns one
// table: the raw table is append-only, the processed table is always replaced
// as a whole.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultRawTable       = "jobs_raw"
	DefaultProcessedTable = "jobs_processed"

	dateLayout = "2006-01-02"
)

var (
	ErrUnknownDriver    = errors.New("unknown database driver")
	ErrInvalidTableName = errors.New("invalid table name")

	identifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// Store is the storage collaborator of the collector and the pipeline.
type Store interface {
	// Migrate creates both tables if they do not exist yet.
	Migrate(ctx context.Context) error
	// AppendRaw inserts postings into the raw table and returns the number written.
	AppendRaw(ctx context.Context, postings []models.RawPosting) (int, error)
	// LoadRaw returns every raw posting in insertion order.
	LoadRaw(ctx context.Context) ([]models.RawPosting, error)
	// ReplaceProcessed swaps the processed table for one holding exactly postings.
	// Readers see either the old table or the new one, never a partial write.
	ReplaceProcessed(ctx context.Context, postings []models.ProcessedPosting) error
	// LoadProcessed returns the processed table in the order it was written.
	LoadProcessed(ctx context.Context) ([]models.ProcessedPosting, error)
	// DeduplicateRaw removes raw rows whose full description repeats an
	// earlier row, keeping the first, and returns the number removed.
	DeduplicateRaw(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Driver          string
	DSN             string
	RawTable        string
	ProcessedTable  string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

func (c Config) withDefaults() Config {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.RawTable == "" {
		c.RawTable = DefaultRawTable
	}
	if c.ProcessedTable == "" {
		c.ProcessedTable = DefaultProcessedTable
	}
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 2
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = time.Hour
	}
	return c
}

// Open connects to the configured backend. Table names are interpolated into
// SQL, so they must be plain lower-case identifiers.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	for _, name := range []string{cfg.RawTable, cfg.ProcessedTable} {
		if err := ValidateTableName(name); err != nil {
			return nil, err
		}
	}
	if cfg.RawTable == cfg.ProcessedTable {
		return nil, fmt.Errorf("%w: raw and processed tables are both %q", ErrInvalidTableName, cfg.RawTable)
	}

	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "sqlite3":
		s, err := openSQLite(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres, "postgresql", "pgx":
		s, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func ValidateTableName(name string) error {
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return nil
}

// stagingName derives a per-run table name for the staged replace.
func stagingName(table string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return table + "_staging_" + suffix
}

var rawInsertColumns = []string{
	"job_title",
	"company_name",
	"location",
	"employment_type",
	"date_posted_raw",
	"salary_raw",
	"full_description",
	"search_category",
	"job_url",
	"scraped_at",
}

func rawValues(p models.RawPosting) []any {
	scrapedAt := p.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}
	return []any{
		p.JobTitle,
		p.CompanyName,
		p.Location,
		p.EmploymentType,
		p.DatePostedRaw,
		p.SalaryRaw,
		p.FullDescription,
		p.SearchCategory,
		p.JobURL,
		scrapedAt.UTC(),
	}
}

// processedValues lays a posting out in models.ProcessedColumns order.
// date is the backend's representation of DatePosted.
func processedValues(p models.ProcessedPosting, date any) []any {
	return []any{
		p.SearchCategory,
		p.JobTitle,
		p.CompanyName,
		string(p.Seniority),
		p.SalaryNumeric,
		p.EmploymentTypeClean,
		p.City,
		p.Region,
		date,
		p.SkillsString(),
	}
}

func placeholders(n int, dollar bool) string {
	parts := make([]string, n)
	for i := range parts {
		if dollar {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}
