package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/budget-flow/internal/common"
	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/service"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SaveRun stores one export run and its rows atomically. Run IDs are unique.
func (s *SQLiteStorage) SaveRun(ctx context.Context, runID string, rows []model.CategorizedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(runID, "runID"); err != nil {
		return err
	}
	if err := validateRows(rows); err != nil {
		return err
	}

	uncategorized := 0
	for _, row := range rows {
		if !row.Result.Matched() {
			uncategorized++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, row_count, uncategorized, created_at) VALUES (?, ?, ?, ?)`,
		runID, len(rows), uncategorized, time.Now().UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("run %s: %w", runID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categorized_transactions (
			run_id, position, transaction_id, hash, account, source_sheet,
			company_name, description, category, subcategory, matched_keyword,
			match_method, score, date, month, amount, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range rows {
		hash := row.Hash
		if hash == "" {
			hash = row.GenerateHash()
		}

		var description sql.NullString
		if row.Description != nil {
			description = sql.NullString{String: *row.Description, Valid: true}
		}

		_, err = stmt.ExecContext(ctx,
			runID,
			i,
			row.TransactionID,
			hash,
			row.Account,
			row.SourceSheet,
			row.CompanyName,
			description,
			row.Result.Category,
			row.Subcategory,
			row.Result.MatchedKeyword,
			string(row.Result.Method),
			row.Result.Score,
			row.Date,
			row.Month(),
			row.Amount.String(),
			row.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to save row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// LatestRunID returns the most recently saved run.
func (s *SQLiteStorage) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no saved runs: %w", common.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest run: %w", err)
	}
	return id, nil
}

// ListCategorized returns the rows of one run, in their original order,
// narrowed by filter.
func (s *SQLiteStorage) ListCategorized(ctx context.Context, filter service.HistoryFilter) ([]model.CategorizedTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateMonth(filter.Month); err != nil {
		return nil, err
	}

	runID := filter.RunID
	if runID == "" {
		var err error
		if runID, err = s.LatestRunID(ctx); err != nil {
			return nil, err
		}
	}

	query := strings.Builder{}
	query.WriteString(`
		SELECT transaction_id, hash, account, source_sheet, company_name,
			description, category, subcategory, matched_keyword, match_method,
			score, date, amount, notes
		FROM categorized_transactions
		WHERE run_id = ?`)
	args := []any{runID}

	if len(filter.Accounts) > 0 {
		query.WriteString(" AND account IN (" + placeholders(len(filter.Accounts)) + ")")
		for _, a := range filter.Accounts {
			args = append(args, a)
		}
	}
	if len(filter.Categories) > 0 {
		query.WriteString(" AND category IN (" + placeholders(len(filter.Categories)) + ")")
		for _, c := range filter.Categories {
			args = append(args, c)
		}
	}
	if filter.Month != "" {
		query.WriteString(" AND month = ?")
		args = append(args, filter.Month)
	}
	query.WriteString(" ORDER BY position")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CategorizedTransaction
	for rows.Next() {
		row, scanErr := scanCategorized(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return out, nil
}

// Runs lists saved runs, newest first.
func (s *SQLiteStorage) Runs(ctx context.Context) ([]service.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, row_count, uncategorized, created_at FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []service.Run
	for rows.Next() {
		var run service.Run
		if err := rows.Scan(&run.ID, &run.RowCount, &run.Uncategorized, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

func scanCategorized(rows *sql.Rows) (model.CategorizedTransaction, error) {
	var (
		row         model.CategorizedTransaction
		description sql.NullString
		method      string
		amount      string
	)

	err := rows.Scan(
		&row.TransactionID,
		&row.Hash,
		&row.Account,
		&row.SourceSheet,
		&row.CompanyName,
		&description,
		&row.Result.Category,
		&row.Subcategory,
		&row.Result.MatchedKeyword,
		&method,
		&row.Result.Score,
		&row.Date,
		&amount,
		&row.Notes,
	)
	if err != nil {
		return row, fmt.Errorf("failed to scan categorized transaction: %w", err)
	}

	if description.Valid {
		row.Description = &description.String
	}
	row.Result.Method = model.MatchMethod(method)
	row.Merchant = row.CompanyName

	row.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return row, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}

	return row, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
