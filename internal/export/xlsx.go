// Package export writes the consolidated table to local workbooks and reads
// it back for reporting.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/budget-flow/internal/categorize"
	"github.com/Veraticus/budget-flow/internal/consolidate"
	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/source"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the consolidated table.
const SheetName = "Sheet1"

// WriteXLSX replaces path with a workbook holding a header row and one row per
// transaction, in consolidate.Columns order.
func WriteXLSX(path string, rows []model.CategorizedTransaction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(consolidate.Columns))
	for i, col := range consolidate.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(consolidate.Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := consolidate.RowValues(row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return nil
}

// ReadXLSX reads a workbook written by WriteXLSX. The matched keyword is
// recovered from the notes column; the match method is not stored.
func ReadXLSX(path string) ([]model.CategorizedTransaction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	get := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]model.CategorizedTransaction, 0, len(rows)-1)
	for _, row := range rows[1:] {
		notes := get(row, "Notes")
		_, keyword, _ := strings.Cut(notes, " | ")
		category := get(row, "Category")
		if category == "" {
			category = categorize.UncategorizedCategory
		}

		out = append(out, model.CategorizedTransaction{
			Transaction: model.Transaction{
				Account:       get(row, "Account"),
				SourceSheet:   get(row, "SourceSheet"),
				Description:   model.StringPtr(get(row, "Description")),
				Date:          get(row, "Date"),
				Amount:        source.ParseAmount(get(row, "Amount")),
				TransactionID: get(row, "TransactionID"),
				Merchant:      get(row, "CompanyName"),
			},
			Result: model.ClassificationResult{
				Category:       category,
				MatchedKeyword: keyword,
			},
			CompanyName: get(row, "CompanyName"),
			Subcategory: get(row, "Subcategory"),
			Notes:       notes,
		})
	}

	return out, nil
}

// XLSXSink writes the consolidated table to a workbook.
type XLSXSink struct {
	Path string
}

// Write implements service.CategorizedSink.
func (s *XLSXSink) Write(ctx context.Context, rows []model.CategorizedTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteXLSX(s.Path, rows)
}
