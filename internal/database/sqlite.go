package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/mo"
	_ "modernc.org/sqlite"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

type sqliteStore struct {
	db        *sql.DB
	raw       string
	processed string
	logger    *slog.Logger
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*sqliteStore, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "jobs.db"
	}
	logger.Info("opening sqlite database", "dsn", dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	// sqlite has a single writer; an in-memory database also exists per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite database unreachable: %w", err)
	}

	return &sqliteStore{db: db, raw: cfg.RawTable, processed: cfg.ProcessedTable, logger: logger}, nil
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) Migrate(ctx context.Context) error {
	rawDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_title TEXT NOT NULL,
			company_name TEXT NOT NULL,
			location TEXT NOT NULL,
			employment_type TEXT NOT NULL,
			date_posted_raw TEXT NOT NULL,
			salary_raw TEXT NOT NULL,
			full_description TEXT NOT NULL,
			search_category TEXT NOT NULL,
			job_url TEXT NOT NULL DEFAULT '',
			scraped_at TEXT NOT NULL
		)`, s.raw)
	if _, err := s.db.ExecContext(ctx, rawDDL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.raw, err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+s.processed+processedDDLSQLite); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.processed, err)
	}
	return nil
}

const processedDDLSQLite = ` (
	search_category TEXT NOT NULL,
	job_title TEXT NOT NULL,
	company_name TEXT NOT NULL,
	seniority TEXT NOT NULL,
	salary_numeric INTEGER NOT NULL,
	employment_type_clean TEXT NOT NULL,
	city TEXT NOT NULL,
	region TEXT NOT NULL,
	date_posted TEXT,
	skills TEXT NOT NULL
)`

func (s *sqliteStore) AppendRaw(ctx context.Context, postings []models.RawPosting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.raw, strings.Join(rawInsertColumns, ", "), placeholders(len(rawInsertColumns), false))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range postings {
		values := rawValues(p)
		values[len(values)-1] = values[len(values)-1].(time.Time).Format(time.RFC3339Nano)
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return 0, fmt.Errorf("failed to insert into %s: %w", s.raw, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert: %w", err)
	}
	return len(postings), nil
}

func (s *sqliteStore) LoadRaw(ctx context.Context) ([]models.RawPosting, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id", strings.Join(rawInsertColumns, ", "), s.raw)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.raw, err)
	}
	defer rows.Close()

	var postings []models.RawPosting
	for rows.Next() {
		var p models.RawPosting
		var scrapedAt string
		if err := rows.Scan(&p.ID, &p.JobTitle, &p.CompanyName, &p.Location, &p.EmploymentType,
			&p.DatePostedRaw, &p.SalaryRaw, &p.FullDescription, &p.SearchCategory, &p.JobURL, &scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.raw, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, scrapedAt); err == nil {
			p.ScrapedAt = t
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func (s *sqliteStore) ReplaceProcessed(ctx context.Context, postings []models.ProcessedPosting) error {
	staging := stagingName(s.processed)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+staging+processedDDLSQLite); err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		staging, strings.Join(models.ProcessedColumns, ", "), placeholders(len(models.ProcessedColumns), false))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range postings {
		if _, err := stmt.ExecContext(ctx, processedValues(p, sqliteDate(p.DatePosted))...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", staging, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.processed); err != nil {
		return fmt.Errorf("failed to drop %s: %w", s.processed, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", staging, s.processed)); err != nil {
		return fmt.Errorf("failed to rename %s: %w", staging, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	s.logger.Debug("replaced processed table", "table", s.processed, "rows", len(postings))
	return nil
}

func (s *sqliteStore) LoadProcessed(ctx context.Context) ([]models.ProcessedPosting, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(models.ProcessedColumns, ", "), s.processed)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.processed, err)
	}
	defer rows.Close()

	var postings []models.ProcessedPosting
	for rows.Next() {
		var p models.ProcessedPosting
		var seniority, skills string
		var date sql.NullString
		if err := rows.Scan(&p.SearchCategory, &p.JobTitle, &p.CompanyName, &seniority, &p.SalaryNumeric,
			&p.EmploymentTypeClean, &p.City, &p.Region, &date, &skills); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.processed, err)
		}
		p.Seniority = models.Seniority(seniority)
		p.Skills = models.SplitSkills(skills)
		p.DatePosted = mo.None[time.Time]()
		if date.Valid {
			if t, err := time.Parse(dateLayout, date.String); err == nil {
				p.DatePosted = mo.Some(t)
			}
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func (s *sqliteStore) DeduplicateRaw(ctx context.Context) (int, error) {
	query := fmt.Sprintf(
		"DELETE FROM %[1]s WHERE id NOT IN (SELECT MIN(id) FROM %[1]s GROUP BY full_description)", s.raw)
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to deduplicate %s: %w", s.raw, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed rows: %w", err)
	}
	return int(removed), nil
}

func sqliteDate(d mo.Option[time.Time]) any {
	if t, ok := d.Get(); ok {
		return t.Format(dateLayout)
	}
	return nil
}
