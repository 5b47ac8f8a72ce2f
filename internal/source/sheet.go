package source

import (
	"context"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/service"
	"github.com/Veraticus/budget-flow/internal/sheets"
)

// TabReader reads several spreadsheet tabs at once.
type TabReader interface {
	ReadTabs(ctx context.Context, tabs []string) []sheets.TabResult
}

// SheetSource is one bank tab that has already been fetched.
type SheetSource struct {
	err   error
	table *sheets.Table
	tab   string
}

// SheetSources fetches all tabs concurrently and returns one source per tab,
// in the order given. A tab that failed to read yields a source whose Load
// returns that error.
func SheetSources(ctx context.Context, reader TabReader, tabs []string) []service.TransactionSource {
	results := reader.ReadTabs(ctx, tabs)

	sources := make([]service.TransactionSource, len(results))
	for i, res := range results {
		sources[i] = &SheetSource{tab: res.Tab, table: res.Table, err: res.Err}
	}
	return sources
}

// Name implements service.TransactionSource.
func (s *SheetSource) Name() string {
	return s.tab
}

// Load implements service.TransactionSource.
func (s *SheetSource) Load(_ context.Context) ([]model.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.table == nil {
		return nil, nil
	}
	return FromRecords(s.tab, s.table.Records), nil
}
