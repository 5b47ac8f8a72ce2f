package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/report"
	"github.com/Veraticus/budget-flow/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "$0.00"},
		{in: "5.5", want: "$5.50"},
		{in: "-15.49", want: "$-15.49"},
		{in: "1234.5", want: "$1,234.50"},
		{in: "-1234567.891", want: "$-1,234,567.89"},
		{in: "100000", want: "$100,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Name", "Amount"}, [][]string{
		{"Groceries", "$1.00"},
		{"Fuel"},
	})

	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Fuel")
	assert.Len(t, bytes.Split([]byte(out), []byte("\n")), 3)
}

func TestRenderSummary(t *testing.T) {
	goal := decimal.NewFromInt(100)
	s := report.Summary{
		Month:      "2024-01",
		Count:      2,
		Total:      decimal.RequireFromString("-65.74"),
		Goal:       &goal,
		Delta:      decimal.RequireFromString("-165.74"),
		Categories: []report.Total{{Name: "Groceries", Count: 1, Amount: decimal.RequireFromString("-50.25")}},
		Accounts:   []report.Total{{Name: "Checking", Count: 2, Amount: decimal.RequireFromString("-65.74")}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "Transactions (2)")
	assert.Contains(t, out, "Month: 2024-01")
	assert.Contains(t, out, "$-165.74")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Checking")
}

func TestRenderClassificationsAndRules(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderClassifications(&buf, []ClassifiedLine{{
		Description: "NETFLX",
		Result:      model.ClassificationResult{Category: "Entertainment", MatchedKeyword: "netflix", Method: model.MatchFuzzy, Score: 90.9},
	}}))
	assert.Contains(t, buf.String(), "Entertainment")
	assert.Contains(t, buf.String(), "90.9")

	buf.Reset()
	require.NoError(t, RenderRules(&buf, []model.Rule{{Keyword: "shell", Category: "Fuel", Row: 3}}))
	assert.Contains(t, buf.String(), "shell")
	assert.Contains(t, buf.String(), "Fuel")

	buf.Reset()
	require.NoError(t, RenderRuns(&buf, []service.Run{{ID: "abc", CreatedAt: time.Now(), RowCount: 4, Uncategorized: 1}}))
	assert.Contains(t, buf.String(), "abc")
}
