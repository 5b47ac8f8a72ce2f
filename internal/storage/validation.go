// Package storage persists categorized exports in SQLite so past runs can be
// summarized without re-reading the bank sheets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/budget-flow/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidRow   = errors.New("invalid categorized transaction")
	ErrInvalidMonth = errors.New("month must be formatted as YYYY-MM")
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRows checks that every row carries a category.
func validateRows(rows []model.CategorizedTransaction) error {
	for i, row := range rows {
		if strings.TrimSpace(row.Result.Category) == "" {
			return fmt.Errorf("%w: row %d has no category", ErrInvalidRow, i)
		}
	}
	return nil
}

func validateMonth(month string) error {
	if month != "" && !monthPattern.MatchString(month) {
		return fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return nil
}
