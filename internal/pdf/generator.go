// Package pdf renders the market summary as a printable PDF report.
package pdf

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/oscarl77/tech-job-market-analysis/internal/stats"
)

//go:embed templates/summary.html
var templates embed.FS

// Section is one titled block of counts in the report.
type Section struct {
	Title  string
	Counts []stats.Count
}

// Report is the data the summary template renders.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Summary     stats.Summary
	Sections    []Section
}

// NewReport lays out a summary in the fixed section order.
func NewReport(title string, s stats.Summary, now time.Time) Report {
	return Report{
		Title:       title,
		GeneratedAt: now,
		Summary:     s,
		Sections: []Section{
			{Title: "Seniority", Counts: s.BySeniority},
			{Title: "Regions", Counts: s.ByRegion},
			{Title: "Cities", Counts: s.ByCity},
			{Title: "Top skills", Counts: s.TopSkills},
		},
	}
}

// Generator is responsible for converting a Report into a PDF file.
type Generator struct {
	tmpl *template.Template
}

func NewGenerator() (*Generator, error) {
	// Add custom function "percent" for the bar widths
	funcMap := template.FuncMap{
		"percent": func(n, total int) string {
			if total == 0 {
				return "0"
			}
			return fmt.Sprintf("%.1f", float64(n)/float64(total)*100)
		},
	}

	tmpl, err := template.New("summary.html").Funcs(funcMap).ParseFS(templates, "templates/summary.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// RenderHTML executes the template for r.
func (g *Generator) RenderHTML(r Report) (string, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Generate renders r on page and prints it to A4 PDF bytes. The page's
// current content is replaced.
func (g *Generator) Generate(page playwright.Page, r Report) ([]byte, error) {
	htmlContent, err := g.RenderHTML(r)
	if err != nil {
		return nil, err
	}

	// Set the generated HTML content into the browser page
	if err := page.SetContent(htmlContent, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String("12mm"),
			Bottom: playwright.String("12mm"),
			Left:   playwright.String("10mm"),
			Right:  playwright.String("10mm"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}
	return pdfBytes, nil
}

// SaveToFile is a helper function to directly save generated PDF to disk
func SaveToFile(pdfBytes []byte, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}
	return os.WriteFile(outputPath, pdfBytes, 0o644)
}
