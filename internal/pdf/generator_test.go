package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscarl77/tech-job-market-analysis/internal/stats"
)

var generatedAt = time.Date(2025, 9, 1, 9, 30, 0, 0, time.UTC)

func sampleReport() Report {
	return NewReport("UK tech job market", stats.Summary{
		Total:       4,
		MeanSalary:  62500,
		SalaryRows:  2,
		WithSkills:  3,
		BySeniority: []stats.Count{{Label: "Senior", Count: 3}, {Label: "Junior", Count: 1}},
		TopSkills:   []stats.Count{{Label: "C++ <templates>", Count: 2}},
	}, generatedAt)
}

func TestRenderHTML(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	html, err := g.RenderHTML(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, html, "<title>UK tech job market</title>")
	assert.Contains(t, html, "Generated 2025-09-01 09:30")
	assert.Contains(t, html, "£62500")
	assert.Contains(t, html, "<h2>Seniority</h2>")
	assert.Contains(t, html, "width: 75.0%")
	// labels are escaped
	assert.Contains(t, html, "C&#43;&#43; &lt;templates&gt;")
	// empty sections are left out
	assert.NotContains(t, html, "<h2>Regions</h2>")
}

func TestRenderHTML_NoSalary(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	html, err := g.RenderHTML(NewReport("empty", stats.Summary{}, generatedAt))
	require.NoError(t, err)
	assert.Contains(t, html, "<b>n/a</b>")
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.pdf")
	require.NoError(t, SaveToFile([]byte("%PDF-1.4"), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestGenerate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright driver not available: %v", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(true)})
	if err != nil {
		t.Skipf("chromium not available: %v", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	require.NoError(t, err)

	g, err := NewGenerator()
	require.NoError(t, err)

	out, err := g.Generate(page, sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
