// Package service defines the interfaces between the application's components.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/budget-flow/internal/model"
)

// TransactionSource yields transactions from one origin (a sheet tab, a file).
type TransactionSource interface {
	Name() string
	Load(ctx context.Context) ([]model.Transaction, error)
}

// CategorizedSink consumes the consolidated, categorized table.
type CategorizedSink interface {
	Write(ctx context.Context, rows []model.CategorizedTransaction) error
}

// HistoryFilter narrows history queries. Empty fields match everything,
// except an empty RunID, which selects the most recent run.
type HistoryFilter struct {
	RunID      string
	Accounts   []string
	Categories []string
	Month      string
	Limit      int
}

// Run describes one stored export.
type Run struct {
	CreatedAt     time.Time
	ID            string
	RowCount      int
	Uncategorized int
}

// HistoryStore persists categorized exports across runs.
type HistoryStore interface {
	SaveRun(ctx context.Context, runID string, rows []model.CategorizedTransaction) error
	ListCategorized(ctx context.Context, filter HistoryFilter) ([]model.CategorizedTransaction, error)
	Runs(ctx context.Context) ([]Run, error)
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
