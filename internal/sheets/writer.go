package sheets

import (
	"context"
	"fmt"

	"github.com/Veraticus/budget-flow/internal/consolidate"
	"github.com/Veraticus/budget-flow/internal/model"
)

// TableWriter replaces the contents of one tab with the consolidated table.
type TableWriter struct {
	client *Client
	tab    string
}

// NewTableWriter returns a writer for tab.
func (c *Client) NewTableWriter(tab string) *TableWriter {
	return &TableWriter{client: c, tab: tab}
}

// Write implements service.CategorizedSink.
func (w *TableWriter) Write(ctx context.Context, rows []model.CategorizedTransaction) error {
	c := w.client

	if err := c.call(ctx, func() error {
		return c.api.EnsureTab(ctx, c.spreadsheetID, w.tab)
	}); err != nil {
		return fmt.Errorf("failed to prepare tab %s: %w", w.tab, err)
	}

	if err := c.call(ctx, func() error {
		return c.api.Clear(ctx, c.spreadsheetID, tabRange(w.tab, ""))
	}); err != nil {
		return fmt.Errorf("failed to clear tab %s: %w", w.tab, err)
	}

	values := make([][]any, 0, len(rows)+1)
	header := make([]any, len(consolidate.Columns))
	for i, col := range consolidate.Columns {
		header[i] = col
	}
	values = append(values, header)
	for _, row := range rows {
		values = append(values, consolidate.RowValues(row))
	}

	for start := 0; start < len(values); start += c.batchSize {
		end := min(start+c.batchSize, len(values))
		rng := tabRange(w.tab, fmt.Sprintf("A%d", start+1))
		batch := values[start:end]

		if err := c.call(ctx, func() error {
			return c.api.Update(ctx, c.spreadsheetID, rng, batch)
		}); err != nil {
			return fmt.Errorf("failed to write rows %d-%d to %s: %w", start+1, end, w.tab, err)
		}
	}

	c.logger.Info("Wrote consolidated tab",
		"spreadsheet_id", c.spreadsheetID,
		"tab", w.tab,
		"rows", len(rows))

	return nil
}
