// Package browser owns the playwright lifecycle used by the collectors.
package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

type LaunchOptions struct {
	Headless  bool
	UserAgent string
	Locale    string
	// Install downloads the driver and chromium before starting.
	Install bool
}

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    LaunchOptions
	logger  *slog.Logger
}

// NewPlaywright starts the driver and launches chromium.
func NewPlaywright(ctx context.Context, opts LaunchOptions, logger *slog.Logger) (*PlaywrightManager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Locale == "" {
		opts.Locale = "en-GB"
	}

	runOpts := &playwright.RunOptions{Browsers: []string{"chromium"}}
	if opts.Install {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("could not install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	logger.Info("browser launched", "headless", opts.Headless, "version", browser.Version())
	return &PlaywrightManager{pw: pw, browser: browser, opts: opts, logger: logger}, nil
}

// NewContext opens an isolated browser context preloaded with cookies.
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	bctx, err := pm.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(pm.opts.UserAgent),
		Locale:    playwright.String(pm.opts.Locale),
		Viewport:  &playwright.Size{Width: 1366, Height: 768},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			bctx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
		pm.logger.Debug("cookies added to context", "count", len(cookies))
	}
	return bctx, nil
}

// NewPage is NewContext followed by a single page.
func (pm *PlaywrightManager) NewPage(cookies []playwright.OptionalCookie) (playwright.Page, error) {
	bctx, err := pm.NewContext(cookies)
	if err != nil {
		return nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return page, nil
}

func (pm *PlaywrightManager) Close() error {
	var firstErr error
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			firstErr = fmt.Errorf("could not close browser: %w", err)
		}
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("could not stop playwright: %w", err)
		}
	}
	return firstErr
}
