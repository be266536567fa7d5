// Package export writes the processed table to a spreadsheet.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
	"github.com/oscarl77/tech-job-market-analysis/internal/stats"
)

const (
	PostingsSheet = "Postings"
	SummarySheet  = "Summary"
)

var columnWidths = map[string]float64{
	"A": 22, // search category
	"B": 40, // title
	"C": 28, // company
	"D": 12, // seniority
	"E": 12, // salary
	"F": 16, // employment type
	"G": 14, // city
	"H": 18, // region
	"I": 12, // date
	"J": 60, // skills
}

// WriteXLSX writes postings, one row each in table order, plus a summary
// sheet of the same counts `jobmarket stats` prints.
func WriteXLSX(w io.Writer, postings []models.ProcessedPosting, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PostingsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	header := make([]any, len(models.ProcessedColumns))
	for i, c := range models.ProcessedColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(PostingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	_ = f.SetRowStyle(PostingsSheet, 1, 1, bold)

	for i, p := range postings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			p.SearchCategory,
			p.JobTitle,
			p.CompanyName,
			string(p.Seniority),
			p.SalaryNumeric,
			p.EmploymentTypeClean,
			p.City,
			p.Region,
			formatDate(p),
			p.SkillsString(),
		}
		if err := f.SetSheetRow(PostingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	for col, width := range columnWidths {
		_ = f.SetColWidth(PostingsSheet, col, col, width)
	}

	if err := writeSummary(f, stats.Summarize(postings, 0), bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"rows", len(postings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// WriteXLSXFile is WriteXLSX into a newly created file at path.
func WriteXLSXFile(path string, postings []models.ProcessedPosting, logger *slog.Logger) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := WriteXLSX(out, postings, logger); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeSummary(f *excelize.File, s stats.Summary, bold int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}

	row := 1
	put := func(values ...any) error {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		row++
		return f.SetSheetRow(SummarySheet, cell, &values)
	}
	section := func(title string, counts []stats.Count) error {
		_ = f.SetRowStyle(SummarySheet, row, row, bold)
		if err := put(title, "count"); err != nil {
			return err
		}
		for _, c := range counts {
			if err := put(c.Label, c.Count); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	if err := put("postings", s.Total); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := put("mean salary", s.MeanSalary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	row++

	for _, sec := range []struct {
		title  string
		counts []stats.Count
	}{
		{"seniority", s.BySeniority},
		{"region", s.ByRegion},
		{"city", s.ByCity},
		{"skill", s.TopSkills},
	} {
		if err := section(sec.title, sec.counts); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 24)
	return nil
}

func formatDate(p models.ProcessedPosting) string {
	if d, ok := p.DatePosted.Get(); ok {
		return d.Format(time.DateOnly)
	}
	return ""
}
