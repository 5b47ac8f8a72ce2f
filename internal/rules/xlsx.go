package rules

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/budget-flow/internal/categorize"
	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads rules from the first sheet of a workbook: column A holds the
// keyword and column B the category. Cells keep their workbook types, so a
// numeric category is rejected just as it is when read from a sheet tab.
func LoadXLSX(path string) (*categorize.RuleSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return categorize.EmptyRuleSet(), nil
	}

	rows, err := typedRows(f, sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading rule sheet %s: %w", sheets[0], err)
	}

	rs, err := FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// typedRows reads raw cell values and converts numeric and boolean cells to
// float64 and bool.
func typedRows(f *excelize.File, sheet string) ([][]any, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = make([]any, len(row))
		for j, value := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheet, axis)
			if err != nil {
				return nil, err
			}
			out[i][j] = typedCell(cellType, value)
		}
	}
	return out, nil
}

func typedCell(cellType excelize.CellType, value string) any {
	if value == "" {
		return value
	}
	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	case excelize.CellTypeBool:
		return value == "1" || value == "TRUE"
	}
	return value
}
