package categorize

import (
	"testing"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRule(t *testing.T) {
	rule, err := NewRule("  NetFlix ", "  Entertainment  ")
	require.NoError(t, err)
	assert.Equal(t, model.Rule{Keyword: "netflix", Category: "Entertainment"}, rule)

	_, err = NewRule("   ", "Entertainment")
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = NewRule("netflix", " ")
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestNewRuleSet(t *testing.T) {
	t.Run("preserves order and duplicates", func(t *testing.T) {
		rs, err := NewRuleSet([]RuleEntry{
			{Keyword: "Shell", Category: "Fuel", Row: 1},
			{Keyword: "Kroger", Category: "Groceries", Row: 2},
			{Keyword: "shell", Category: "Other", Row: 3},
		})
		require.NoError(t, err)

		assert.Equal(t, 3, rs.Len())
		assert.Equal(t, []string{"shell", "kroger", "shell"}, rs.Keywords())
		assert.Equal(t, []string{"Fuel", "Groceries", "Other"}, rs.Categories())

		rules := rs.Rules()
		assert.Equal(t, 3, rules[2].Row)

		rules[0].Category = "mutated"
		assert.Equal(t, "Fuel", rs.Rules()[0].Category, "Rules must return a copy")
	})

	t.Run("numeric keyword is accepted", func(t *testing.T) {
		rs, err := NewRuleSet([]RuleEntry{
			{Keyword: 711, Category: "Convenience"},
			{Keyword: float64(76), Category: "Fuel"},
			{Keyword: int64(1800), Category: "Flowers"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"711", "76", "1800"}, rs.Keywords())
	})

	t.Run("empty input", func(t *testing.T) {
		rs, err := NewRuleSet(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, rs.Len())
	})

	tests := []struct {
		name    string
		entry   RuleEntry
		wantMsg string
	}{
		{name: "numeric category", entry: RuleEntry{Keyword: "netflix", Category: 42.0, Row: 7}, wantMsg: "row 7"},
		{name: "missing category", entry: RuleEntry{Keyword: "netflix"}, wantMsg: "missing category"},
		{name: "missing keyword", entry: RuleEntry{Category: "Entertainment"}, wantMsg: "missing keyword"},
		{name: "list keyword", entry: RuleEntry{Keyword: []any{"a"}, Category: "Entertainment"}, wantMsg: "keyword must be text"},
		{name: "blank keyword", entry: RuleEntry{Keyword: "  ", Category: "Entertainment"}, wantMsg: "empty keyword"},
		{name: "blank category", entry: RuleEntry{Keyword: "netflix", Category: ""}, wantMsg: "empty category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleSet([]RuleEntry{
				{Keyword: "kroger", Category: "Groceries"},
				tt.entry,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRule)
			assert.Contains(t, err.Error(), "rule 2")
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRuleSet_NilReceiver(t *testing.T) {
	var rs *RuleSet
	assert.Equal(t, 0, rs.Len())
	assert.Nil(t, rs.Rules())
	assert.Nil(t, rs.Keywords())
	assert.Nil(t, rs.Categories())
}
