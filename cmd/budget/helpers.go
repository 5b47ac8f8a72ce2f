package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/budget-flow/internal/categorize"
	"github.com/Veraticus/budget-flow/internal/config"
	"github.com/Veraticus/budget-flow/internal/rules"
	"github.com/Veraticus/budget-flow/internal/sheets"
	"github.com/Veraticus/budget-flow/internal/storage"
	"github.com/spf13/viper"
)

func loadApp() (*config.App, error) {
	return config.Load(viper.GetViper())
}

// openSheets connects to the configured spreadsheet. It returns a nil client
// without error when Google Sheets is not configured at all.
func openSheets(ctx context.Context) (*sheets.Client, error) {
	sheetsConfig := config.LoadSheetsConfig(viper.GetViper())
	if !sheetsConfig.HasOAuth() && sheetsConfig.ServiceAccountPath == "" {
		return nil, nil
	}

	client, err := sheets.NewClient(ctx, sheetsConfig, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}
	return client, nil
}

// loadRules reads the rule table: the configured sheet tab when set, else the
// local categories file.
func loadRules(ctx context.Context, app *config.App, client *sheets.Client) (*categorize.RuleSet, error) {
	src := rules.Source{Path: app.RulesPath}
	if app.RulesTab != "" {
		src = rules.Source{SheetTab: app.RulesTab}
	}

	var reader rules.RowReader
	if client != nil {
		reader = client
	}

	rs, err := rules.Load(ctx, src, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to load category rules from %s: %w", src, err)
	}
	return rs, nil
}

func newClassifier(ctx context.Context, app *config.App, client *sheets.Client) (*categorize.Classifier, error) {
	rs, err := loadRules(ctx, app, client)
	if err != nil {
		return nil, err
	}
	return categorize.NewClassifier(rs, app.ClassifierOptions()...)
}

func openHistory(ctx context.Context, app *config.App) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(app.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return store, nil
}
