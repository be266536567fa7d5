package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

// Store is the part of the storage layer a batch run needs.
type Store interface {
	LoadRaw(ctx context.Context) ([]models.RawPosting, error)
	ReplaceProcessed(ctx context.Context, postings []models.ProcessedPosting) error
}

// PersistError reports a failed write of the processed table. The previous
// table is left in place.
type PersistError struct {
	Table string
	Rows  int
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist %d rows to %s: %v", e.Rows, e.Table, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Result describes one batch run.
type Result struct {
	RunID      uuid.UUID
	Loaded     int
	Written    int
	StartedAt  time.Time
	FinishedAt time.Time
	// Processed is the table as written, in raw insertion order.
	Processed []models.ProcessedPosting
}

func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type Orchestrator struct {
	store          Store
	normalizer     *Normalizer
	workers        int
	processedTable string
	logger         *slog.Logger
}

type Option func(*Orchestrator)

// WithWorkers bounds the number of postings normalized at once.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProcessedTable names the destination in PersistError.
func WithProcessedTable(name string) Option {
	return func(o *Orchestrator) {
		o.processedTable = name
	}
}

func NewOrchestrator(store Store, normalizer *Normalizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:          store,
		normalizer:     normalizer,
		workers:        runtime.NumCPU(),
		processedTable: "jobs_processed",
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run loads every raw posting, normalizes them in parallel and replaces the
// processed table. Output order equals raw insertion order, so running twice
// on unchanged raw data writes the same table.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.New(), StartedAt: time.Now()}
	log := o.logger.With("run_id", res.RunID.String())

	raw, err := o.store.LoadRaw(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to load raw postings: %w", err)
	}
	res.Loaded = len(raw)
	log.Info("loaded raw postings", "rows", len(raw))

	processed, err := o.transformAll(ctx, raw)
	if err != nil {
		return res, err
	}

	if err := o.store.ReplaceProcessed(ctx, processed); err != nil {
		perr := &PersistError{Table: o.processedTable, Rows: len(processed), Err: err}
		log.Error("persist failed", "table", perr.Table, "rows", perr.Rows, "error", err)
		return res, perr
	}

	res.Written = len(processed)
	res.Processed = processed
	res.FinishedAt = time.Now()
	log.Info("processed table replaced", "rows", res.Written, "duration", res.Duration())
	return res, nil
}

// transformAll fans the batch out over the worker limit. Each goroutine
// writes only its own slot.
func (o *Orchestrator) transformAll(ctx context.Context, raw []models.RawPosting) ([]models.ProcessedPosting, error) {
	out := make([]models.ProcessedPosting, len(raw))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range raw {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = o.normalizer.Transform(raw[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("transform interrupted: %w", err)
	}
	return out, nil
}
