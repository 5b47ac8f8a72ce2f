// Package rules loads keyword-to-category rule tables from files and sheets.
package rules

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/budget-flow/internal/categorize"
	"github.com/Veraticus/budget-flow/internal/common"
)

// RowReader reads raw cell rows from a named sheet tab.
type RowReader interface {
	ReadRows(ctx context.Context, tab string) ([][]any, error)
}

// Source identifies a rule table: a local file or a tab of the configured
// Google Sheet. Path takes precedence when both are set.
type Source struct {
	Path     string
	SheetTab string
}

func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	return "sheet:" + s.SheetTab
}

// Load reads the rule table described by src. reader may be nil when src is a file.
func Load(ctx context.Context, src Source, reader RowReader) (*categorize.RuleSet, error) {
	if src.Path != "" {
		return LoadFile(src.Path)
	}
	if src.SheetTab == "" {
		return nil, fmt.Errorf("%w: no rule source configured", common.ErrMissingConfig)
	}
	if reader == nil {
		return nil, fmt.Errorf("%w: rule tab %q needs a Google Sheets connection", common.ErrMissingConfig, src.SheetTab)
	}

	rows, err := reader.ReadRows(ctx, src.SheetTab)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule tab %s: %w", src.SheetTab, err)
	}

	rs, err := FromRows(rows)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded category rules", "source", src.String(), "rules", rs.Len())
	return rs, nil
}

// LoadFile reads a rule table from .xlsx, .yaml/.yml or .csv. A missing file
// yields an empty rule set so every transaction falls back to uncategorized.
func LoadFile(path string) (*categorize.RuleSet, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Category file not found, continuing without rules", "path", path)
		return categorize.EmptyRuleSet(), nil
	}

	var (
		rs  *categorize.RuleSet
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		rs, err = LoadXLSX(path)
	case ".yaml", ".yml":
		rs, err = LoadYAML(path)
	case ".csv":
		rs, err = LoadCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded category rules", "source", path, "rules", rs.Len())
	return rs, nil
}

// FromRows converts two-column rows (keyword, category) into a rule set.
// There is no header row. Rows with both cells blank are skipped; extra
// columns are ignored.
func FromRows(rows [][]any) (*categorize.RuleSet, error) {
	entries := make([]categorize.RuleEntry, 0, len(rows))
	for i, row := range rows {
		keyword, category := cell(row, 0), cell(row, 1)
		if keyword == nil && category == nil {
			continue
		}
		entries = append(entries, categorize.RuleEntry{
			Keyword:  keyword,
			Category: category,
			Row:      i + 1,
		})
	}
	return categorize.NewRuleSet(entries)
}

func fromStringRows(rows [][]string) (*categorize.RuleSet, error) {
	converted := make([][]any, len(rows))
	for i, row := range rows {
		converted[i] = make([]any, len(row))
		for j, v := range row {
			converted[i][j] = v
		}
	}
	return FromRows(converted)
}

func cell(row []any, i int) any {
	if i >= len(row) {
		return nil
	}
	if s, ok := row[i].(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	return row[i]
}
