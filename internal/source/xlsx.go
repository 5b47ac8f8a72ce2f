package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/sheets"
	"github.com/xuri/excelize/v2"
)

// XLSXSource reads a local workbook whose first row is a header, laid out
// like a bank tab.
type XLSXSource struct {
	Path  string
	Sheet string // Defaults to the first sheet
}

// Name implements service.TransactionSource. It is the file name without extension.
func (s *XLSXSource) Name() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load implements service.TransactionSource.
func (s *XLSXSource) Load(ctx context.Context) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.Path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, s.Path, err)
	}

	cells := make([][]any, len(rows))
	for i, row := range rows {
		cells[i] = make([]any, len(row))
		for j, v := range row {
			cells[i][j] = v
		}
	}

	table := sheets.RecordsFromRows(s.Name(), cells)
	return FromRecords(s.Name(), table.Records), nil
}
