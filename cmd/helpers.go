package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kozaktomas/face-morph/internal/config"
	"github.com/kozaktomas/face-morph/internal/database/postgres"
	"github.com/kozaktomas/face-morph/internal/logger"
	"github.com/schollz/progressbar/v3"
)

// loadConfig reads the --config file when given and applies environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	return logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(jsonLogs),
		logger.WithPretty(!jsonLogs),
	)
}

func newProgressBar(total int, description, unit string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(unit),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}

// openDatabase connects when DATABASE_URL is set. A nil pool means no database.
func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*postgres.Pool, error) {
	if cfg.Database.URL == "" {
		return nil, nil
	}
	log.Debug("connecting to PostgreSQL")
	pool, err := postgres.Open(ctx, &cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return pool, nil
}
