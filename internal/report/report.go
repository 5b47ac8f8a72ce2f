// Package report computes dashboard figures over consolidated transactions:
// filtered views, per-category and per-account totals, and month totals
// against a budget goal.
package report

import (
	"slices"
	"sort"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/shopspring/decimal"
)

// Filter selects rows. Empty fields match everything.
type Filter struct {
	Accounts   []string
	Categories []string
	Month      string // YYYY-MM
}

// Total is an aggregated amount for one account or category.
type Total struct {
	Name   string
	Amount decimal.Decimal
	Count  int
}

// Summary is the dashboard view of a filtered set of rows.
type Summary struct {
	Goal       *decimal.Decimal // Set only when a month is selected and has a goal
	Month      string
	Categories []Total
	Accounts   []Total
	Total      decimal.Decimal
	Delta      decimal.Decimal
	Count      int
}

// Apply returns the rows matching filter, in their original order.
func Apply(rows []model.CategorizedTransaction, filter Filter) []model.CategorizedTransaction {
	var out []model.CategorizedTransaction
	for _, row := range rows {
		if len(filter.Accounts) > 0 && !slices.Contains(filter.Accounts, row.Account) {
			continue
		}
		if len(filter.Categories) > 0 && !slices.Contains(filter.Categories, row.Result.Category) {
			continue
		}
		if filter.Month != "" && row.Month() != filter.Month {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Accounts returns the distinct accounts in first-seen order.
func Accounts(rows []model.CategorizedTransaction) []string {
	return distinct(rows, func(r model.CategorizedTransaction) string { return r.Account })
}

// Categories returns the distinct categories in first-seen order.
func Categories(rows []model.CategorizedTransaction) []string {
	return distinct(rows, func(r model.CategorizedTransaction) string { return r.Result.Category })
}

// Months returns the distinct YYYY-MM months in ascending order. Rows with an
// unparseable date are ignored.
func Months(rows []model.CategorizedTransaction) []string {
	months := distinct(rows, func(r model.CategorizedTransaction) string { return r.Month() })
	months = slices.DeleteFunc(months, func(m string) bool { return m == "" })
	sort.Strings(months)
	return months
}

// Sum adds up the amounts of rows.
func Sum(rows []model.CategorizedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total
}

// MonthTotal sums the rows posted in month.
func MonthTotal(rows []model.CategorizedTransaction, month string) decimal.Decimal {
	return Sum(Apply(rows, Filter{Month: month}))
}

// GoalDelta is how far a month's total is from its budget goal.
func GoalDelta(total, goal decimal.Decimal) decimal.Decimal {
	return total.Sub(goal)
}

// CategoryTotals aggregates rows by category, sorted by name.
func CategoryTotals(rows []model.CategorizedTransaction) []Total {
	return totals(rows, func(r model.CategorizedTransaction) string { return r.Result.Category })
}

// AccountTotals aggregates rows by account, sorted by name.
func AccountTotals(rows []model.CategorizedTransaction) []Total {
	return totals(rows, func(r model.CategorizedTransaction) string { return r.Account })
}

// Summarize filters rows and computes the dashboard figures. goals maps
// YYYY-MM to a budget goal and is consulted only when filter.Month is set.
func Summarize(rows []model.CategorizedTransaction, filter Filter, goals map[string]decimal.Decimal) Summary {
	filtered := Apply(rows, filter)

	s := Summary{
		Month:      filter.Month,
		Count:      len(filtered),
		Total:      Sum(filtered),
		Categories: CategoryTotals(filtered),
		Accounts:   AccountTotals(filtered),
	}

	if filter.Month != "" {
		goal, ok := goals[filter.Month]
		if !ok {
			goal = decimal.Zero
		}
		s.Goal = &goal
		s.Delta = GoalDelta(s.Total, goal)
	}

	return s
}

func distinct(rows []model.CategorizedTransaction, key func(model.CategorizedTransaction) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		k := key(row)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func totals(rows []model.CategorizedTransaction, key func(model.CategorizedTransaction) string) []Total {
	byName := make(map[string]*Total)
	for _, row := range rows {
		name := key(row)
		t, ok := byName[name]
		if !ok {
			t = &Total{Name: name, Amount: decimal.Zero}
			byName[name] = t
		}
		t.Amount = t.Amount.Add(row.Amount)
		t.Count++
	}

	out := make([]Total, 0, len(byName))
	for _, t := range byName {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
