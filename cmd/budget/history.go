package main

import (
	"fmt"

	"github.com/Veraticus/budget-flow/internal/cli"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List exports recorded in the history database",
		RunE:  runHistory,
	}
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	app, err := loadApp()
	if err != nil {
		return err
	}

	store, err := openHistory(ctx, app)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Runs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No runs recorded yet."))
		return nil
	}

	return cli.RenderRuns(cmd.OutOrStdout(), runs)
}
