package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/budget-flow/internal/common"
	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRun(t *testing.T, store *SQLiteStorage, runID string) []model.CategorizedTransaction {
	t.Helper()

	rows := []model.CategorizedTransaction{
		categorizedRow("Checking", "Groceries", "kroger", "2024-01-05", "-54.20", model.MatchExact),
		categorizedRow("Visa", "Entertainment", "netflix", "2024-01-15", "-15.49", model.MatchFuzzy),
		categorizedRow("Checking", "Uncategorized", "", "2024-02-01", "-3", model.MatchNone),
	}
	rows[1].TransactionID = "tx-2"
	rows[2].Description = nil

	require.NoError(t, store.SaveRun(context.Background(), runID, rows))
	return rows
}

func TestSaveRun(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	seedRun(t, store, "run-1")

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 3, runs[0].RowCount)
	assert.Equal(t, 1, runs[0].Uncategorized)
	assert.False(t, runs[0].CreatedAt.IsZero())

	err = store.SaveRun(ctx, "run-1", nil)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSaveRun_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveRun(ctx, "", nil), ErrEmptyString)

	bad := []model.CategorizedTransaction{{}}
	assert.ErrorIs(t, store.SaveRun(ctx, "run", bad), ErrInvalidRow)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs, "failed saves must not leave a run behind")
}

func TestListCategorized(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	seedRun(t, store, "old")
	want := seedRun(t, store, "new")

	t.Run("latest run by default", func(t *testing.T) {
		rows, err := store.ListCategorized(ctx, service.HistoryFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, want[0].DescriptionText(), rows[0].DescriptionText())
		assert.True(t, want[0].Amount.Equal(rows[0].Amount))
		assert.Equal(t, "kroger", rows[0].Result.MatchedKeyword)
		assert.Equal(t, model.MatchExact, rows[0].Result.Method)
		assert.Equal(t, "tx-2", rows[1].TransactionID)
		assert.Nil(t, rows[2].Description)
		assert.NotEmpty(t, rows[0].Hash)
	})

	tests := []struct {
		name   string
		filter service.HistoryFilter
		want   int
	}{
		{name: "explicit run", filter: service.HistoryFilter{RunID: "old"}, want: 3},
		{name: "unknown run", filter: service.HistoryFilter{RunID: "missing"}, want: 0},
		{name: "accounts", filter: service.HistoryFilter{Accounts: []string{"Visa"}}, want: 1},
		{name: "categories", filter: service.HistoryFilter{Categories: []string{"Groceries", "Uncategorized"}}, want: 2},
		{name: "month", filter: service.HistoryFilter{Month: "2024-01"}, want: 2},
		{name: "limit", filter: service.HistoryFilter{Limit: 1}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := store.ListCategorized(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}

	t.Run("invalid month", func(t *testing.T) {
		_, err := store.ListCategorized(ctx, service.HistoryFilter{Month: "2024-13"})
		assert.ErrorIs(t, err, ErrInvalidMonth)
	})
}

func TestListCategorized_NoRuns(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.ListCategorized(context.Background(), service.HistoryFilter{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRuns_NewestFirst(t *testing.T) {
	store := createTestStorage(t)
	seedRun(t, store, "first")
	seedRun(t, store, "second")

	runs, err := store.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].ID)
}

var _ service.HistoryStore = (*SQLiteStorage)(nil)
