package consolidate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/budget-flow/internal/categorize"
	"github.com/Veraticus/budget-flow/internal/common"
	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/service"
)

// SourceFailure records a source that could not be loaded.
type SourceFailure struct {
	Err    error
	Source string
}

// Result is the outcome of a consolidation run.
type Result struct {
	Rows          []model.CategorizedTransaction
	Failures      []SourceFailure
	Loaded        int
	Duplicates    int
	Uncategorized int
}

// Pipeline loads every source, removes duplicate transactions and classifies
// the combined rows.
type Pipeline struct {
	Classifier *categorize.Classifier
	Logger     *slog.Logger
	// OnSource is called after each source finishes, successful or not.
	OnSource func(name string, rows int, err error)
	Sources  []service.TransactionSource
}

// Run executes the pipeline. A failing source is logged and skipped; the run
// fails with common.ErrNoData only when no source produced a transaction.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classifier := p.Classifier
	if classifier == nil {
		var err error
		if classifier, err = categorize.NewClassifier(nil); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	var combined []model.Transaction

	for _, src := range p.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		txns, err := src.Load(ctx)
		if p.OnSource != nil {
			p.OnSource(src.Name(), len(txns), err)
		}
		if err != nil {
			logger.Error("Error reading source", "source", src.Name(), "error", err)
			result.Failures = append(result.Failures, SourceFailure{Source: src.Name(), Err: err})
			continue
		}

		logger.Info("Loaded rows", "source", src.Name(), "rows", len(txns))
		combined = append(combined, txns...)
	}

	if len(combined) == 0 {
		return result, common.ErrNoData
	}
	result.Loaded = len(combined)
	logger.Info("Total combined rows", "rows", result.Loaded)

	unique := Dedupe(combined)
	result.Duplicates = len(combined) - len(unique)
	if result.Duplicates > 0 {
		logger.Info("Removed duplicate transactions", "count", result.Duplicates)
	}

	rows, err := classifier.ClassifyTransactions(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to classify transactions: %w", err)
	}

	for i := range rows {
		Decorate(&rows[i])
		if !rows[i].Result.Matched() {
			result.Uncategorized++
		}
	}
	result.Rows = rows

	logger.Info("Classified transactions",
		"rows", len(rows),
		"uncategorized", result.Uncategorized,
		"rules", classifier.Rules().Len())

	return result, nil
}

// Dedupe drops transactions whose TransactionID was already seen, keeping the
// first occurrence. Transactions without an ID are always kept: an empty ID is
// not treated as a shared key, so several ID-less rows are never collapsed
// into one.
func Dedupe(txns []model.Transaction) []model.Transaction {
	seen := make(map[string]bool, len(txns))
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.TransactionID != "" {
			if seen[txn.TransactionID] {
				continue
			}
			seen[txn.TransactionID] = true
		}
		out = append(out, txn)
	}
	return out
}

// Decorate fills the derived export columns of a classified row.
func Decorate(row *model.CategorizedTransaction) {
	row.CompanyName = row.Merchant
	row.Notes = Notes(row.Date, row.Result.MatchedKeyword)
	row.Subcategory = ""
}
