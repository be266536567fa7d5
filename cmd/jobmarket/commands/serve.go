package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"github.com/oscarl77/tech-job-market-analysis/internal/scheduler"
	"github.com/oscarl77/tech-job-market-analysis/internal/server"
)

// ServeAction starts the read-only HTTP API.
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	addr := app.Config.Server.Addr
	if a := cmd.String("addr"); a != "" {
		addr = a
	}

	switch mode := app.Config.Server.Mode; mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
	case "":
		gin.SetMode(gin.ReleaseMode)
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", mode)
	}

	return server.New(app.Store, app.Logger).Run(ctx, addr)
}

// ScheduleAction runs scrape then process on the configured cron schedule
// until interrupted.
func ScheduleAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	spec := app.Config.Schedule.Cron
	if c := cmd.String("cron"); c != "" {
		spec = c
	}
	runOnStart := app.Config.Schedule.RunOnStart || cmd.Bool("now")

	sched := scheduler.New(spec, func(ctx context.Context) error {
		if _, err := runScrape(ctx, app); err != nil {
			// postings already written are still worth processing
			app.Logger.Error("scrape step failed", "error", err)
			if ctx.Err() != nil {
				return err
			}
		}
		_, err := runProcess(ctx, app)
		return err
	}, runOnStart, app.Logger)

	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	sched.Stop(stopCtx)
	return nil
}
