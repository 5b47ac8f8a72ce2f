package main

import (
	"fmt"

	"github.com/Veraticus/budget-flow/internal/cli"
	"github.com/Veraticus/budget-flow/internal/sheets"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List and validate the category rule table",
		Long: `Load the rule table (paths.categories, or rules.sheet_tab when set) and
print the rules in evaluation order. Rules are tried top to bottom and the
first keyword found in a description wins.`,
		RunE: runRules,
	}

	cmd.Flags().Bool("validate", false, "Only check the rule table and report the rule count")

	return cmd
}

func runRules(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	app, err := loadApp()
	if err != nil {
		return err
	}

	var client *sheets.Client
	if app.RulesTab != "" {
		if client, err = openSheets(ctx); err != nil {
			return err
		}
	}

	rs, err := loadRules(ctx, app, client)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if validateOnly, _ := cmd.Flags().GetBool("validate"); validateOnly {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d rules, %d categories", rs.Len(), len(rs.Categories()))))
		return nil
	}

	if rs.Len() == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No rules loaded; every transaction will be Uncategorized."))
		return nil
	}

	return cli.RenderRules(out, rs.Rules())
}
