package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/budget-flow/internal/cli"
	"github.com/Veraticus/budget-flow/internal/common"
	"github.com/Veraticus/budget-flow/internal/config"
	"github.com/Veraticus/budget-flow/internal/consolidate"
	"github.com/Veraticus/budget-flow/internal/export"
	"github.com/Veraticus/budget-flow/internal/service"
	"github.com/Veraticus/budget-flow/internal/sheets"
	"github.com/Veraticus/budget-flow/internal/source"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Consolidate bank exports into one categorized workbook",
		Long: `Read every configured bank source (Google Sheets tabs, local .xlsx
workbooks and OFX files), remove duplicate transactions, assign each
row a category from the rule table and write the consolidated workbook.

Sources that fail to load are reported and skipped.`,
		RunE: runExport,
	}

	cmd.Flags().Bool("no-sheets", false, "Skip Google Sheets bank tabs")
	cmd.Flags().StringSlice("file", nil, "Local .xlsx bank export (repeatable)")
	cmd.Flags().StringSlice("ofx", nil, "OFX/QFX download (repeatable)")
	cmd.Flags().StringP("output", "o", "", "Output workbook (default: paths.export)")
	cmd.Flags().String("sheet-tab", "", "Also write the consolidated table to this spreadsheet tab")
	cmd.Flags().Bool("save-history", false, "Record this run in the history database")

	_ = viper.BindPFlag("paths.export", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.sheet_tab", cmd.Flags().Lookup("sheet-tab"))
	_ = viper.BindPFlag("history.enabled", cmd.Flags().Lookup("save-history"))

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}

	noSheets, _ := cmd.Flags().GetBool("no-sheets")
	files, _ := cmd.Flags().GetStringSlice("file")
	ofxFiles, _ := cmd.Flags().GetStringSlice("ofx")
	for _, f := range files {
		app.Files = append(app.Files, config.ExpandPath(f))
	}
	for _, f := range ofxFiles {
		app.OFXFiles = append(app.OFXFiles, config.ExpandPath(f))
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Export cancelled; nothing was written.")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	var client *sheets.Client
	if !noSheets || app.RulesTab != "" || app.OutputTab != "" {
		if client, err = openSheets(ctx); err != nil {
			return err
		}
	}

	classifier, err := newClassifier(ctx, app, client)
	if err != nil {
		return err
	}

	sources := exportSources(ctx, app, client, noSheets)
	if len(sources) == 0 {
		return common.NewUserError("No sources configured. Configure Google Sheets or pass --file/--ofx.", common.ErrMissingConfig)
	}

	progress := cli.NewProgress(cmd.ErrOrStderr(), len(sources), "Loading sources")
	pipeline := &consolidate.Pipeline{
		Classifier: classifier,
		Logger:     slog.Default(),
		Sources:    sources,
		OnSource: func(name string, _ int, _ error) {
			progress.Step(name)
		},
	}

	result, err := pipeline.Run(ctx)
	progress.Finish()
	if handler.WasInterrupted() {
		return common.NewUserError("Export interrupted.", context.Canceled)
	}
	if errors.Is(err, common.ErrNoData) {
		for _, f := range result.Failures {
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf("%s: %v", f.Source, f.Err)))
		}
		return common.NewUserError("No data to save.", err)
	}
	if err != nil {
		return err
	}

	sinks := []service.CategorizedSink{&export.XLSXSink{Path: app.ExportPath}}
	if app.OutputTab != "" {
		if client == nil {
			return common.NewUserError("output.sheet_tab is set but Google Sheets is not configured.", common.ErrMissingConfig)
		}
		sinks = append(sinks, client.NewTableWriter(app.OutputTab))
	}
	for _, sink := range sinks {
		if err := sink.Write(ctx, result.Rows); err != nil {
			return fmt.Errorf("failed to write consolidated table: %w", err)
		}
	}

	if app.SaveHistory {
		if err := saveHistory(ctx, app, result); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, f := range result.Failures {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Skipped %s: %v", f.Source, f.Err)))
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Consolidated data saved to %s", app.ExportPath)))
	if app.OutputTab != "" {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Consolidated data written to tab %s", app.OutputTab)))
	}
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d rows, %d duplicates removed, %d uncategorized",
		len(result.Rows), result.Duplicates, result.Uncategorized)))

	return nil
}

// exportSources lists sources in a fixed order: sheet tabs, then workbooks,
// then OFX files. The first source to yield a transaction ID wins on dedupe.
func exportSources(ctx context.Context, app *config.App, client *sheets.Client, noSheets bool) []service.TransactionSource {
	var sources []service.TransactionSource

	switch {
	case noSheets:
	case client == nil:
		if len(app.SheetTabs) > 0 {
			slog.Warn("Google Sheets is not configured, skipping bank tabs", "tabs", app.SheetTabs)
		}
	default:
		sources = append(sources, source.SheetSources(ctx, client, app.SheetTabs)...)
	}

	for _, path := range app.Files {
		sources = append(sources, &source.XLSXSource{Path: path})
	}
	for _, path := range app.OFXFiles {
		sources = append(sources, &source.OFXSource{Path: path})
	}

	return sources
}

func saveHistory(ctx context.Context, app *config.App, result *consolidate.Result) error {
	store, err := openHistory(ctx, app)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runID := uuid.NewString()
	if err := store.SaveRun(ctx, runID, result.Rows); err != nil {
		return fmt.Errorf("failed to save run history: %w", err)
	}
	slog.Info("Saved run to history", "run", runID, "database", app.Database, "rows", len(result.Rows))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
