package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func categorizedRow(account, category, keyword, date, amount string, method model.MatchMethod) model.CategorizedTransaction {
	row := model.CategorizedTransaction{
		Transaction: model.Transaction{
			Account:     account,
			SourceSheet: "Chase",
			Description: model.StringPtr("desc " + keyword),
			Date:        date,
			Amount:      decimal.RequireFromString(amount),
		},
		Result: model.ClassificationResult{
			Category:       category,
			MatchedKeyword: keyword,
			Method:         method,
		},
	}
	row.Notes = date + " | " + keyword
	return row
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})

	t.Run("file database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "history.db")
		store, err := NewSQLiteStorage(path)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		assert.Equal(t, path, store.Path())
		require.NoError(t, store.Migrate(context.Background()))
	})
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	var indexCount int
	err = store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_categorized_month'
	`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}
