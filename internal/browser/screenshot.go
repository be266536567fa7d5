package browser

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ScreenshotDebugger saves full-page screenshots when a page does not look
// the way a collector expects.
type ScreenshotDebugger struct {
	outputDir string
	logger    *slog.Logger
}

// NewScreenshotDebugger returns nil when dir is empty; a nil debugger is a no-op.
func NewScreenshotDebugger(dir string, logger *slog.Logger) *ScreenshotDebugger {
	if dir == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreenshotDebugger{outputDir: dir, logger: logger}
}

func (s *ScreenshotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	if s == nil {
		return nil
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.png", name, time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.outputDir, filename)

	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.logger.Warn("failed to capture screenshot", "name", name, "error", err)
		return err
	}

	s.logger.Warn(message, "screenshot", path)
	return nil
}
