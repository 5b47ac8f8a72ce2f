package config

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/budget-flow/internal/categorize"
	"github.com/Veraticus/budget-flow/internal/common"
	"github.com/Veraticus/budget-flow/internal/source"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// App is the resolved application configuration.
type App struct {
	Goals       map[string]decimal.Decimal // Monthly budget goals keyed by YYYY-MM
	ExportPath  string
	RulesPath   string
	RulesTab    string // Rule table tab in the spreadsheet; used when RulesPath is empty
	LogFile     string
	Database    string
	OutputTab   string // Also write the consolidated table to this tab when set
	SheetTabs   []string
	Files       []string // Local .xlsx bank exports
	OFXFiles    []string
	Threshold   float64
	Workers     int
	SaveHistory bool
}

// SetDefaults registers the default values for every key Load reads.
func SetDefaults(v *viper.Viper) {
	dir := DataDir()
	v.SetDefault("paths.export", filepath.Join(dir, "budget_export.xlsx"))
	v.SetDefault("paths.categories", filepath.Join(dir, "categories.xlsx"))
	v.SetDefault("paths.database", filepath.Join(dir, "history.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("classifier.threshold", categorize.DefaultThreshold)
	v.SetDefault("classifier.workers", 0)
	v.SetDefault("sources.sheet_tabs", source.DefaultSheetTabs)
	v.SetDefault("history.enabled", false)
}

// Load reads the application configuration from v.
func Load(v *viper.Viper) (*App, error) {
	app := &App{
		ExportPath:  ExpandPath(v.GetString("paths.export")),
		RulesPath:   ExpandPath(v.GetString("paths.categories")),
		RulesTab:    v.GetString("rules.sheet_tab"),
		LogFile:     ExpandPath(v.GetString("logging.file")),
		Database:    ExpandPath(v.GetString("paths.database")),
		OutputTab:   v.GetString("output.sheet_tab"),
		SheetTabs:   v.GetStringSlice("sources.sheet_tabs"),
		Threshold:   v.GetFloat64("classifier.threshold"),
		Workers:     v.GetInt("classifier.workers"),
		SaveHistory: v.GetBool("history.enabled"),
	}

	for _, f := range v.GetStringSlice("sources.files") {
		app.Files = append(app.Files, ExpandPath(f))
	}
	for _, f := range v.GetStringSlice("sources.ofx") {
		app.OFXFiles = append(app.OFXFiles, ExpandPath(f))
	}

	if app.Threshold < 0 || app.Threshold > 100 {
		return nil, fmt.Errorf("%w: classifier.threshold %v is outside 0-100", common.ErrInvalidConfig, app.Threshold)
	}

	goals, err := parseGoals(v.GetStringMapString("budget.goals"))
	if err != nil {
		return nil, err
	}
	app.Goals = goals

	return app, nil
}

// ClassifierOptions converts the classifier settings to options.
func (a *App) ClassifierOptions() []categorize.Option {
	opts := []categorize.Option{categorize.WithThreshold(a.Threshold)}
	if a.Workers > 0 {
		opts = append(opts, categorize.WithWorkers(a.Workers))
	}
	return opts
}

func parseGoals(raw map[string]string) (map[string]decimal.Decimal, error) {
	goals := make(map[string]decimal.Decimal, len(raw))
	for month, value := range raw {
		goal, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: budget goal for %s: %q is not a number", common.ErrInvalidConfig, month, value)
		}
		if goal.IsNegative() {
			return nil, fmt.Errorf("%w: budget goal for %s must not be negative", common.ErrInvalidConfig, month)
		}
		goals[month] = goal
	}
	return goals, nil
}
