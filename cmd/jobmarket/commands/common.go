package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/oscarl77/tech-job-market-analysis/internal/config"
	"github.com/oscarl77/tech-job-market-analysis/internal/database"
	"github.com/oscarl77/tech-job-market-analysis/internal/logger"
	"github.com/oscarl77/tech-job-market-analysis/internal/reference"
	"github.com/oscarl77/tech-job-market-analysis/internal/reporter"
)

// AppContext holds what every command needs: configuration, logger, an open
// and migrated store, the reference tables and the run reporter.
type AppContext struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    database.Store
	Tables   reference.Tables
	Reporter reporter.Reporter
}

// NewAppContext loads the configuration named by --config and opens the store.
func NewAppContext(ctx context.Context, cmd *cli.Command) (*AppContext, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Debug("config loaded", "config", cfg.String())

	tables := reference.Default()
	if cfg.ReferencePath != "" {
		tables, err = reference.Load(cfg.ReferencePath)
		if err != nil {
			return nil, err
		}
		log.Info("reference tables loaded", "path", cfg.ReferencePath,
			"regions", len(tables.Regions), "skills", len(tables.Skills))
	}

	store, err := database.Open(ctx, cfg.StoreConfig(), log)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	var rep reporter.Reporter = reporter.Nop{}
	if cfg.Telegram.Token != "" {
		tg, err := reporter.NewTelegramReporter(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
		if err != nil {
			// a broken bot never blocks collection or processing
			log.Warn("telegram reporter disabled", "error", err)
		} else {
			rep = tg
		}
	}

	return &AppContext{
		Config:   cfg,
		Logger:   log,
		Store:    store,
		Tables:   tables,
		Reporter: rep,
	}, nil
}

func (ac *AppContext) Close() {
	if ac.Store != nil {
		if err := ac.Store.Close(); err != nil {
			ac.Logger.Warn("failed to close store", "error", err)
		}
	}
}
