package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/mo"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

var ErrMissingDSN = errors.New("postgres requires a connection string")

type postgresStore struct {
	db        *pgxpool.Pool
	raw       string
	processed string
	logger    *slog.Logger
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*postgresStore, error) {
	if cfg.DSN == "" {
		return nil, ErrMissingDSN
	}
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = cfg.MaxConns
	config.MinConns = cfg.MinConns
	config.MaxConnLifetime = cfg.MaxConnLifetime
	config.ConnConfig.RuntimeParams["application_name"] = "jobmarket"

	// poolers in transaction mode (PgBouncer, Supabase) reject cached prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	logger.Info("connected to postgres", "raw_table", cfg.RawTable, "processed_table", cfg.ProcessedTable)
	return &postgresStore{db: pool, raw: cfg.RawTable, processed: cfg.ProcessedTable, logger: logger}, nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *postgresStore) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

const processedDDLPostgres = ` (
	search_category TEXT NOT NULL,
	job_title TEXT NOT NULL,
	company_name TEXT NOT NULL,
	seniority TEXT NOT NULL,
	salary_numeric BIGINT NOT NULL,
	employment_type_clean TEXT NOT NULL,
	city TEXT NOT NULL,
	region TEXT NOT NULL,
	date_posted DATE,
	skills TEXT NOT NULL
)`

func (s *postgresStore) Migrate(ctx context.Context) error {
	rawDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			job_title TEXT NOT NULL,
			company_name TEXT NOT NULL,
			location TEXT NOT NULL,
			employment_type TEXT NOT NULL,
			date_posted_raw TEXT NOT NULL,
			salary_raw TEXT NOT NULL,
			full_description TEXT NOT NULL,
			search_category TEXT NOT NULL,
			job_url TEXT NOT NULL DEFAULT '',
			scraped_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.raw)
	if _, err := s.db.Exec(ctx, rawDDL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.raw, err)
	}
	if _, err := s.db.Exec(ctx, "CREATE TABLE IF NOT EXISTS "+s.processed+processedDDLPostgres); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.processed, err)
	}
	return nil
}

// AppendRaw streams the batch with COPY.
func (s *postgresStore) AppendRaw(ctx context.Context, postings []models.RawPosting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(postings))
	for i, p := range postings {
		rows[i] = rawValues(p)
	}
	n, err := s.db.CopyFrom(ctx, pgx.Identifier{s.raw}, rawInsertColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy into %s: %w", s.raw, err)
	}
	return int(n), nil
}

func (s *postgresStore) LoadRaw(ctx context.Context) ([]models.RawPosting, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id", strings.Join(rawInsertColumns, ", "), s.raw)
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.raw, err)
	}
	defer rows.Close()

	var postings []models.RawPosting
	for rows.Next() {
		var p models.RawPosting
		if err := rows.Scan(&p.ID, &p.JobTitle, &p.CompanyName, &p.Location, &p.EmploymentType,
			&p.DatePostedRaw, &p.SalaryRaw, &p.FullDescription, &p.SearchCategory, &p.JobURL, &p.ScrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.raw, err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func (s *postgresStore) ReplaceProcessed(ctx context.Context, postings []models.ProcessedPosting) error {
	staging := stagingName(s.processed)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "CREATE TABLE "+staging+processedDDLPostgres); err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	rows := make([][]any, len(postings))
	for i, p := range postings {
		rows[i] = processedValues(p, postgresDate(p.DatePosted))
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{staging}, models.ProcessedColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("failed to copy into %s: %w", staging, err)
	}

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+s.processed); err != nil {
		return fmt.Errorf("failed to drop %s: %w", s.processed, err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", staging, s.processed)); err != nil {
		return fmt.Errorf("failed to rename %s: %w", staging, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	s.logger.Debug("replaced processed table", "table", s.processed, "rows", len(postings))
	return nil
}

// LoadProcessed orders by physical position; the table is only ever written
// in one COPY, so that is insertion order.
func (s *postgresStore) LoadProcessed(ctx context.Context) ([]models.ProcessedPosting, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY ctid", strings.Join(models.ProcessedColumns, ", "), s.processed)
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.processed, err)
	}
	defer rows.Close()

	var postings []models.ProcessedPosting
	for rows.Next() {
		var p models.ProcessedPosting
		var seniority, skills string
		var salary int64
		var date *time.Time
		if err := rows.Scan(&p.SearchCategory, &p.JobTitle, &p.CompanyName, &seniority, &salary,
			&p.EmploymentTypeClean, &p.City, &p.Region, &date, &skills); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.processed, err)
		}
		p.Seniority = models.Seniority(seniority)
		p.SalaryNumeric = int(salary)
		p.Skills = models.SplitSkills(skills)
		p.DatePosted = mo.PointerToOption(date)
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func (s *postgresStore) DeduplicateRaw(ctx context.Context) (int, error) {
	query := fmt.Sprintf(
		"DELETE FROM %[1]s WHERE id NOT IN (SELECT MIN(id) FROM %[1]s GROUP BY full_description)", s.raw)
	tag, err := s.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to deduplicate %s: %w", s.raw, err)
	}
	return int(tag.RowsAffected()), nil
}

func postgresDate(d mo.Option[time.Time]) any {
	if t, ok := d.Get(); ok {
		return t
	}
	return nil
}
