package cmd

import (
	"fmt"
	"log/slog"

	"github.com/mcodersir/axkhan/internal/acquire"
	"github.com/mcodersir/axkhan/internal/config"
	"github.com/mcodersir/axkhan/internal/gemini"
	"github.com/mcodersir/axkhan/internal/notify"
	"github.com/mcodersir/axkhan/internal/ocr"
	"github.com/mcodersir/axkhan/internal/quota"
	"github.com/mcodersir/axkhan/internal/settings"
	"github.com/mcodersir/axkhan/internal/storage"
)

// app is the process-wide state shared by every command
type app struct {
	cfg      config.Config
	db       *storage.SQLite
	settings *settings.Manager
	quota    *quota.Tracker
	feed     *notify.Feed
	client   *ocr.Client
}

func openApp(cfg config.Config) (*app, error) {
	db, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	slog.Debug("Opened settings store", "path", cfg.DBPath)

	return &app{
		cfg:      cfg,
		db:       db,
		settings: settings.Load(db),
		quota:    quota.New(db, config.DailyLimit),
		feed:     notify.NewFeed(notify.DefaultCapacity),
		client:   ocr.NewClient(gemini.New(), cfg.EnvAPIKey),
	}, nil
}

// coordinator builds the pipeline over prefs, which is usually a.settings
func (a *app) coordinator(prefs acquire.SettingsSource, opts acquire.Options) *acquire.Coordinator {
	if opts.Model == "" {
		opts.Model = a.cfg.Model
	}
	if opts.MaxDimension == 0 {
		opts.MaxDimension = a.cfg.MaxDimension
	}
	if opts.BasePrompt == "" {
		opts.BasePrompt = ocr.BasePrompt
	}
	return acquire.New(a.client, prefs, a.quota, a.feed, opts)
}

func (a *app) Close() error {
	return a.db.Close()
}
