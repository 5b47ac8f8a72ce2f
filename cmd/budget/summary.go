package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/budget-flow/internal/cli"
	"github.com/Veraticus/budget-flow/internal/common"
	"github.com/Veraticus/budget-flow/internal/export"
	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/report"
	"github.com/Veraticus/budget-flow/internal/service"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show filtered spending totals",
		Long: `Summarize the consolidated table by category and account. Rows come
from the exported workbook, or from the history database with --from-history.
When --month is set and a budget goal exists for it, the month total is
compared against the goal.`,
		Example: `  budget summary --month 2024-03
  budget summary --account Chase --category Groceries
  budget summary --from-history --run 5f0c...`,
		RunE: runSummary,
	}

	cmd.Flags().StringSlice("account", nil, "Only include these accounts (repeatable)")
	cmd.Flags().StringSlice("category", nil, "Only include these categories (repeatable)")
	cmd.Flags().String("month", "", "Only include this month (YYYY-MM)")
	cmd.Flags().Bool("from-history", false, "Read rows from the history database instead of the workbook")
	cmd.Flags().String("run", "", "History run to summarize (default: latest)")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	app, err := loadApp()
	if err != nil {
		return err
	}

	accounts, _ := cmd.Flags().GetStringSlice("account")
	categories, _ := cmd.Flags().GetStringSlice("category")
	month, _ := cmd.Flags().GetString("month")
	fromHistory, _ := cmd.Flags().GetBool("from-history")
	runID, _ := cmd.Flags().GetString("run")

	var rows []model.CategorizedTransaction
	if fromHistory {
		store, err := openHistory(ctx, app)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		rows, err = store.ListCategorized(ctx, service.HistoryFilter{RunID: runID})
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError("No stored runs found. Run 'budget export --save-history' first.", err)
		}
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
	} else {
		if !fileExists(app.ExportPath) {
			return common.NewUserError(fmt.Sprintf("No export found at %s. Run 'budget export' first.", app.ExportPath), common.ErrNotFound)
		}
		if rows, err = export.ReadXLSX(app.ExportPath); err != nil {
			return err
		}
	}

	filter := report.Filter{Accounts: accounts, Categories: categories, Month: month}
	return cli.RenderSummary(cmd.OutOrStdout(), report.Summarize(rows, filter, app.Goals))
}
