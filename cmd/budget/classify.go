package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/Veraticus/budget-flow/internal/cli"
	"github.com/Veraticus/budget-flow/internal/sheets"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [description...]",
		Short: "Classify transaction descriptions against the rule table",
		Long: `Show which category each description would receive, along with the
matched keyword, the match phase and its score. Descriptions are read from
stdin, one per line, when none are given as arguments.`,
		Example: `  budget classify "NETFLIX.COM 866-579-7172" "Kroger #412"
  cut -d, -f3 bank.csv | budget classify`,
		RunE: runClassify,
	}

	cmd.Flags().Float64("threshold", -1, "Fuzzy match threshold 0-100 (default: classifier.threshold)")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := loadApp()
	if err != nil {
		return err
	}
	if threshold, _ := cmd.Flags().GetFloat64("threshold"); threshold >= 0 {
		app.Threshold = threshold
	}

	var client *sheets.Client
	if app.RulesTab != "" {
		if client, err = openSheets(ctx); err != nil {
			return err
		}
	}

	classifier, err := newClassifier(ctx, app, client)
	if err != nil {
		return err
	}

	descriptions := args
	if len(descriptions) == 0 {
		if descriptions, err = readLines(cmd); err != nil {
			return err
		}
	}

	lines := make([]cli.ClassifiedLine, len(descriptions))
	for i, d := range descriptions {
		lines[i] = cli.ClassifiedLine{
			Description: d,
			Result:      classifier.Classify(&d),
		}
	}

	return cli.RenderClassifications(cmd.OutOrStdout(), lines)
}

func readLines(cmd *cobra.Command) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read descriptions: %w", err)
	}
	return lines, nil
}
