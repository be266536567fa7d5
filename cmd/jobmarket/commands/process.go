package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/oscarl77/tech-job-market-analysis/internal/pipeline"
	"github.com/oscarl77/tech-job-market-analysis/internal/stats"
)

// ProcessAction rebuilds the processed table from the raw table.
func ProcessAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if d := cmd.String("scrape-date"); d != "" {
		app.Config.Pipeline.ScrapeDate = d
	}
	if w := cmd.Int("workers"); w > 0 {
		app.Config.Pipeline.Workers = w
	}

	res, err := runProcess(ctx, app)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: %d raw rows -> %d processed rows in %s\n",
		res.RunID, res.Loaded, res.Written, res.Duration())
	return nil
}

func runProcess(ctx context.Context, app *AppContext) (pipeline.Result, error) {
	cfg := app.Config
	scrapeDate, err := cfg.ScrapeDate()
	if err != nil {
		return pipeline.Result{}, err
	}

	orch := pipeline.NewOrchestrator(
		app.Store,
		pipeline.NewNormalizer(app.Tables, scrapeDate),
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithProcessedTable(cfg.Database.ProcessedTable),
		pipeline.WithLogger(app.Logger),
	)

	res, err := orch.Run(ctx)
	if err != nil {
		if sendErr := app.Reporter.SendError(err); sendErr != nil {
			app.Logger.Warn("failed to send error report", "error", sendErr)
		}
		return res, err
	}

	if sendErr := app.Reporter.SendRunSummary(res, stats.Summarize(res.Processed, 0)); sendErr != nil {
		app.Logger.Warn("failed to send run summary", "error", sendErr)
	}
	return res, nil
}
