package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentTabs bounds parallel tab reads to stay well inside API quotas.
const maxConcurrentTabs = 4

// Record is one data row keyed by header name.
type Record map[string]any

// String returns the cell under key as text, or "" when absent.
func (r Record) String(key string) string {
	return CellString(r[key])
}

// Has reports whether the key was a column header.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Table is a tab read as a header row followed by records.
type Table struct {
	Tab     string
	Headers []string
	Records []Record
}

// TabResult is the outcome of reading one tab in ReadTabs.
type TabResult struct {
	Err   error
	Table *Table
	Tab   string
}

// CellString renders a cell value as text. Whole numbers have no decimal point.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// ReadRows returns every non-empty row of a tab as raw cell values.
func (c *Client) ReadRows(ctx context.Context, tab string) ([][]any, error) {
	var rows [][]any
	err := c.call(ctx, func() error {
		var getErr error
		rows, getErr = c.api.Get(ctx, c.spreadsheetID, tabRange(tab, ""))
		return getErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}
	return rows, nil
}

// ReadRecords reads a tab whose first row holds column headers. Headers are
// trimmed, short rows are padded with empty strings, and columns without a
// header are dropped.
func (c *Client) ReadRecords(ctx context.Context, tab string) (*Table, error) {
	rows, err := c.ReadRows(ctx, tab)
	if err != nil {
		return nil, err
	}
	return RecordsFromRows(tab, rows), nil
}

// RecordsFromRows applies header-row semantics to raw rows.
func RecordsFromRows(tab string, rows [][]any) *Table {
	table := &Table{Tab: tab}
	if len(rows) == 0 {
		return table
	}

	table.Headers = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		table.Headers[i] = strings.TrimSpace(CellString(h))
	}

	table.Records = make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(table.Headers))
		for i, header := range table.Headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		table.Records = append(table.Records, record)
	}

	return table
}

// ReadTabs reads several tabs concurrently. A failing tab does not stop the
// others; results keep the order of tabs.
func (c *Client) ReadTabs(ctx context.Context, tabs []string) []TabResult {
	results := make([]TabResult, len(tabs))

	var g errgroup.Group
	g.SetLimit(maxConcurrentTabs)
	for i, tab := range tabs {
		g.Go(func() error {
			table, err := c.ReadRecords(ctx, tab)
			results[i] = TabResult{Tab: tab, Table: table, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
