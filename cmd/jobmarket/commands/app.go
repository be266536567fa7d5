package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/oscarl77/tech-job-market-analysis/internal/config"
)

// NewApp builds the jobmarket command tree.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:  "jobmarket",
		Usage: "collect UK tech job postings and normalize them for analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Value:   config.DefaultPath,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "scrape",
				Usage: "collect postings from CWJobs into the raw table",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "title",
						Usage: "search title to collect (repeatable, overrides scrape.search_titles)",
					},
					&cli.IntFlag{
						Name:  "pages",
						Usage: "result pages per title (overrides scrape.pages)",
					},
				},
				Action: ScrapeAction,
			},
			{
				Name:  "process",
				Usage: "normalize the raw table into the processed table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "scrape-date",
						Usage: "reference date for relative posting dates (YYYY-MM-DD)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "parallel normalizers (overrides pipeline.workers)",
					},
				},
				Action: ProcessAction,
			},
			{
				Name:   "dedup",
				Usage:  "delete raw rows with a repeated full description, keeping the first",
				Action: DedupAction,
			},
			{
				Name:  "export",
				Usage: "write the processed table to an XLSX file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output file path",
						Value:   "jobs_processed.xlsx",
					},
				},
				Action: ExportAction,
			},
			{
				Name:  "stats",
				Usage: "print counts over the processed table",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top",
						Usage: "number of skills to rank",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print JSON instead of tables",
					},
					&cli.StringFlag{
						Name:  "pdf",
						Usage: "also render the summary to this PDF file (needs chromium)",
					},
				},
				Action: StatsAction,
			},
			{
				Name:  "serve",
				Usage: "serve the processed table over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address (overrides server.addr)",
					},
				},
				Action: ServeAction,
			},
			{
				Name:  "schedule",
				Usage: "run scrape and process on a cron schedule",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "cron",
						Usage: "cron spec (overrides schedule.cron), e.g. \"0 6 * * *\" or \"@every 12h\"",
					},
					&cli.BoolFlag{
						Name:  "now",
						Usage: "also run one cycle immediately",
					},
				},
				Action: ScheduleAction,
			},
		},
	}
}
