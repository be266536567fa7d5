package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/oscarl77/tech-job-market-analysis/internal/browser"
	"github.com/oscarl77/tech-job-market-analysis/internal/export"
	"github.com/oscarl77/tech-job-market-analysis/internal/pdf"
	"github.com/oscarl77/tech-job-market-analysis/internal/stats"
)

// DedupAction removes raw rows whose full description repeats an earlier row.
func DedupAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	removed, err := app.Store.DeduplicateRaw(ctx)
	if err != nil {
		return fmt.Errorf("failed to deduplicate raw postings: %w", err)
	}
	app.Logger.Info("raw table deduplicated", "removed", removed)
	fmt.Printf("removed %d duplicate raw rows\n", removed)
	return nil
}

// ExportAction writes the processed table to an XLSX file.
func ExportAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	postings, err := app.Store.LoadProcessed(ctx)
	if err != nil {
		return fmt.Errorf("failed to load processed postings: %w", err)
	}

	out := cmd.String("output")
	if err := export.WriteXLSXFile(out, postings, app.Logger); err != nil {
		return err
	}
	fmt.Printf("wrote %d postings to %s\n", len(postings), out)
	return nil
}

// StatsAction prints counts over the processed table.
func StatsAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	postings, err := app.Store.LoadProcessed(ctx)
	if err != nil {
		return fmt.Errorf("failed to load processed postings: %w", err)
	}
	summary := stats.Summarize(postings, cmd.Int("top"))

	if out := cmd.String("pdf"); out != "" {
		if err := writePDFReport(ctx, app, summary, out); err != nil {
			return err
		}
		fmt.Printf("wrote report to %s\n", out)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	displaySummary(summary)
	return nil
}

func displaySummary(s stats.Summary) {
	fmt.Println("\n=== Processed postings ===")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	table.Append("Postings", fmt.Sprintf("%d", s.Total))
	table.Append("With salary", fmt.Sprintf("%d", s.SalaryRows))
	table.Append("Mean salary", fmt.Sprintf("£%d", s.MeanSalary))
	table.Append("With skills", fmt.Sprintf("%d", s.WithSkills))
	table.Append("Undated", fmt.Sprintf("%d", s.UndatedRows))
	table.Render()

	for _, sec := range []struct {
		title  string
		label  string
		counts []stats.Count
	}{
		{"Seniority", "Level", s.BySeniority},
		{"Regions", "Region", s.ByRegion},
		{"Cities", "City", s.ByCity},
		{"Top skills", "Skill", s.TopSkills},
	} {
		if len(sec.counts) == 0 {
			continue
		}
		fmt.Printf("\n=== %s ===\n", sec.title)
		t := tablewriter.NewWriter(os.Stdout)
		t.Header(sec.label, "Postings", "Share")
		for _, c := range sec.counts {
			t.Append(c.Label, fmt.Sprintf("%d", c.Count), fmt.Sprintf("%.1f%%", share(c.Count, s.Total)))
		}
		t.Render()
	}
}

// writePDFReport prints the summary through a headless browser.
func writePDFReport(ctx context.Context, app *AppContext, s stats.Summary, out string) error {
	gen, err := pdf.NewGenerator()
	if err != nil {
		return err
	}

	pm, err := browser.NewPlaywright(ctx, browser.LaunchOptions{
		Headless: true,
		Install:  app.Config.Scrape.InstallBrowser,
	}, app.Logger)
	if err != nil {
		return err
	}
	defer pm.Close()

	page, err := pm.NewPage(nil)
	if err != nil {
		return err
	}

	data, err := gen.Generate(page, pdf.NewReport("UK tech job market", s, time.Now()))
	if err != nil {
		return err
	}
	return pdf.SaveToFile(data, out)
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
