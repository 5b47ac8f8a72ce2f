package categorize

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRules(t testing.TB, pairs ...[2]string) *RuleSet {
	t.Helper()
	rs, err := NewRuleSetFromPairs(pairs)
	require.NoError(t, err)
	return rs
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input *string
		name  string
		want  string
	}{
		{name: "absent", input: nil, want: NoDescriptionPlaceholder},
		{name: "empty", input: model.StringPtr(""), want: NoDescriptionPlaceholder},
		{name: "whitespace only", input: model.StringPtr(" \t "), want: NoDescriptionPlaceholder},
		{name: "trim and lower", input: model.StringPtr("  NETFLIX.COM Charge "), want: "netflix.com charge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		rules       *RuleSet
		description *string
		name        string
		want        model.ClassificationResult
		threshold   float64
	}{
		{
			name:        "first match wins over more specific keyword",
			rules:       mustRules(t, [2]string{"gas", "Auto"}, [2]string{"gasoline", "Fuel"}),
			description: model.StringPtr("Paid for gasoline"),
			threshold:   DefaultThreshold,
			want:        model.ClassificationResult{Category: "Auto", MatchedKeyword: "gas", Method: model.MatchExact, Score: 100},
		},
		{
			name:        "case and spacing normalized before containment",
			rules:       mustRules(t, [2]string{"netflix", "Entertainment"}),
			description: model.StringPtr("  NETFLIX.COM CHARGE"),
			threshold:   DefaultThreshold,
			want:        model.ClassificationResult{Category: "Entertainment", MatchedKeyword: "netflix", Method: model.MatchExact, Score: 100},
		},
		{
			name:        "misspelling falls through to fuzzy match",
			rules:       mustRules(t, [2]string{"netflix", "Entertainment"}),
			description: model.StringPtr("NETFLX"),
			threshold:   DefaultThreshold,
			want:        model.ClassificationResult{Category: "Entertainment", MatchedKeyword: "netflix", Method: model.MatchFuzzy, Score: 1000.0 / 11},
		},
		{
			name:        "unrelated description is uncategorized",
			rules:       mustRules(t, [2]string{"netflix", "Entertainment"}),
			description: model.StringPtr("buy cards"),
			threshold:   DefaultThreshold,
			want:        model.ClassificationResult{Category: UncategorizedCategory, Method: model.MatchNone},
		},
		{
			name:        "empty rule set",
			rules:       EmptyRuleSet(),
			description: model.StringPtr("netflix"),
			threshold:   DefaultThreshold,
			want:        model.ClassificationResult{Category: UncategorizedCategory, Method: model.MatchNone},
		},
		{
			name:        "nil rule set",
			rules:       nil,
			description: model.StringPtr("netflix"),
			threshold:   DefaultThreshold,
			want:        model.ClassificationResult{Category: UncategorizedCategory, Method: model.MatchNone},
		},
		{
			name:        "placeholder can match a rule",
			rules:       mustRules(t, [2]string{"no description", "Unknown"}),
			description: nil,
			threshold:   DefaultThreshold,
			want:        model.ClassificationResult{Category: "Unknown", MatchedKeyword: "no description", Method: model.MatchExact, Score: 100},
		},
		{
			name:        "duplicate keywords resolve to earliest rule",
			rules:       mustRules(t, [2]string{"shell", "Fuel"}, [2]string{"shell", "Other"}),
			description: model.StringPtr("SHELL OIL 5742"),
			threshold:   DefaultThreshold,
			want:        model.ClassificationResult{Category: "Fuel", MatchedKeyword: "shell", Method: model.MatchExact, Score: 100},
		},
		{
			name:        "threshold zero accepts best candidate",
			rules:       mustRules(t, [2]string{"netflix", "Entertainment"}),
			description: model.StringPtr("buy cards"),
			threshold:   0,
			want:        model.ClassificationResult{Category: "Entertainment", MatchedKeyword: "netflix", Method: model.MatchFuzzy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.description, tt.rules, tt.threshold)
			assert.Equal(t, tt.want.Category, got.Category)
			assert.Equal(t, tt.want.MatchedKeyword, got.MatchedKeyword)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.InDelta(t, tt.want.Score, got.Score, 1e-9)
		})
	}
}

func TestClassify_ThresholdBoundary(t *testing.T) {
	// "abcd" is not contained in "zabxdz"; its best window "abxd" scores exactly 75.
	rules := mustRules(t, [2]string{"abcd", "Letters"})
	desc := model.StringPtr("zabxdz")

	atThreshold := Classify(desc, rules, 75)
	assert.Equal(t, "Letters", atThreshold.Category)
	assert.Equal(t, "abcd", atThreshold.MatchedKeyword)
	assert.Equal(t, model.MatchFuzzy, atThreshold.Method)
	assert.InDelta(t, 75.0, atThreshold.Score, 1e-9)

	belowThreshold := Classify(desc, rules, 76)
	assert.Equal(t, UncategorizedCategory, belowThreshold.Category)
	assert.Empty(t, belowThreshold.MatchedKeyword)
	assert.Equal(t, model.MatchNone, belowThreshold.Method)
	assert.InDelta(t, 75.0, belowThreshold.Score, 1e-9, "near miss score is still reported")
}

func TestClassify_EmptyDescriptionsAreEquivalent(t *testing.T) {
	ruleSets := []*RuleSet{
		EmptyRuleSet(),
		mustRules(t, [2]string{"netflix", "Entertainment"}),
		mustRules(t, [2]string{"description", "Misc"}),
		mustRules(t, [2]string{"no description", "Unknown"}, [2]string{"desc", "Other"}),
	}

	for i, rs := range ruleSets {
		for _, threshold := range []float64{0, 50, DefaultThreshold, 100} {
			fromNil := Classify(nil, rs, threshold)
			fromEmpty := Classify(model.StringPtr(""), rs, threshold)
			fromBlank := Classify(model.StringPtr("   "), rs, threshold)
			assert.Equal(t, fromNil, fromEmpty, "rule set %d threshold %v", i, threshold)
			assert.Equal(t, fromNil, fromBlank, "rule set %d threshold %v", i, threshold)
		}
	}
}

func TestClassify_StableTieBreak(t *testing.T) {
	desc := model.StringPtr("abcz")

	forward := mustRules(t, [2]string{"abcx", "First"}, [2]string{"abcy", "Second"})
	for range 20 {
		got := Classify(desc, forward, DefaultThreshold)
		assert.Equal(t, "First", got.Category)
		assert.Equal(t, "abcx", got.MatchedKeyword)
	}

	reversed := mustRules(t, [2]string{"abcy", "Second"}, [2]string{"abcx", "First"})
	got := Classify(desc, reversed, DefaultThreshold)
	assert.Equal(t, "Second", got.Category, "rule order decides ties")
}

func TestNewClassifier(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewClassifier(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultThreshold, c.Threshold())
		assert.Equal(t, 0, c.Rules().Len())
	})

	t.Run("custom threshold", func(t *testing.T) {
		c, err := NewClassifier(EmptyRuleSet(), WithThreshold(90), WithWorkers(0))
		require.NoError(t, err)
		assert.Equal(t, 90.0, c.Threshold())
	})

	for _, bad := range []float64{-1, 100.5} {
		t.Run(fmt.Sprintf("rejects %v", bad), func(t *testing.T) {
			_, err := NewClassifier(EmptyRuleSet(), WithThreshold(bad))
			assert.ErrorIs(t, err, ErrInvalidThreshold)
		})
	}
}

func TestClassifier_ClassifyAll_PreservesOrder(t *testing.T) {
	rules := mustRules(t,
		[2]string{"netflix", "Entertainment"},
		[2]string{"kroger", "Groceries"},
		[2]string{"shell", "Fuel"},
	)
	c, err := NewClassifier(rules, WithWorkers(4))
	require.NoError(t, err)

	inputs := []string{"KROGER #123", "netflx", "", "Shell Oil", "rent payment", "NETFLIX.COM"}
	var descriptions []*string
	for i := 0; i < 50; i++ {
		for _, in := range inputs {
			descriptions = append(descriptions, model.StringPtr(in))
		}
	}
	descriptions = append(descriptions, nil)

	results, err := c.ClassifyAll(context.Background(), descriptions)
	require.NoError(t, err)
	require.Len(t, results, len(descriptions))

	for i, d := range descriptions {
		assert.Equal(t, c.Classify(d), results[i], "index %d", i)
	}
}

func TestClassifier_ClassifyAll_Empty(t *testing.T) {
	c, err := NewClassifier(EmptyRuleSet())
	require.NoError(t, err)

	results, err := c.ClassifyAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClassifier_ClassifyAll_Canceled(t *testing.T) {
	c, err := NewClassifier(mustRules(t, [2]string{"netflix", "Entertainment"}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.ClassifyAll(ctx, []*string{model.StringPtr("netflix")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifier_ClassifyTransactions(t *testing.T) {
	c, err := NewClassifier(mustRules(t, [2]string{"kroger", "Groceries"}), WithWorkers(2))
	require.NoError(t, err)

	txns := []model.Transaction{
		{ID: "a", Description: model.StringPtr("KROGER 0042")},
		{ID: "b"},
		{ID: "c", Description: model.StringPtr("Payroll")},
	}

	got, err := c.ClassifyTransactions(context.Background(), txns)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "Groceries", got[0].Result.Category)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, UncategorizedCategory, got[1].Result.Category)
	assert.Equal(t, "c", got[2].ID)
	assert.Equal(t, UncategorizedCategory, got[2].Result.Category)
}

// FuzzClassify checks that every result is either the fallback or a category
// from the rule set, and that the keyword is consistent with the category.
func FuzzClassify(f *testing.F) {
	seeds := []string{"", "Paid for gasoline", "NETFLIX.COM", "netflx", "kroger #42", "ünïcödé", "   ", "no description"}
	for _, s := range seeds {
		f.Add(s, 75.0)
	}

	rules := mustRules(f,
		[2]string{"gas", "Auto"},
		[2]string{"gasoline", "Fuel"},
		[2]string{"netflix", "Entertainment"},
		[2]string{"kroger", "Groceries"},
		[2]string{"kroger", "Duplicate"},
	)
	byKeyword := make(map[string]string)
	for _, r := range rules.Rules() {
		if _, ok := byKeyword[r.Keyword]; !ok {
			byKeyword[r.Keyword] = r.Category
		}
	}

	f.Fuzz(func(t *testing.T, description string, threshold float64) {
		if threshold < 0 || threshold > 100 || threshold != threshold {
			t.Skip()
		}

		got := Classify(&description, rules, threshold)

		if got.Category == UncategorizedCategory {
			assert.Empty(t, got.MatchedKeyword)
			return
		}

		category, ok := byKeyword[got.MatchedKeyword]
		require.True(t, ok, "keyword %q not in rule set", got.MatchedKeyword)
		assert.Equal(t, category, got.Category)
		if got.Method == model.MatchFuzzy {
			assert.GreaterOrEqual(t, got.Score, threshold)
		}
	})
}
