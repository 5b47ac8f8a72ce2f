package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/report"
	"github.com/Veraticus/budget-flow/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as dollars with thousands separators, e.g.
// "$1,234.50" or "$-15.49".
func FormatMoney(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return "$" + sign + b.String() + "." + frac
}

// RenderTable lays out rows under headers in padded columns.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := range headers {
			if i < len(row) {
				widths[i] = max(widths[i], lipgloss.Width(row[i]))
			}
		}
	}

	var lines []string
	header := make([]string, len(headers))
	for i, h := range headers {
		header[i] = TableHeaderStyle.Width(widths[i] + 2).Render(h)
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			cells[i] = TableCellStyle.Width(widths[i] + 2).Render(value)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return strings.Join(lines, "\n")
}

func totalsTable(name string, totals []report.Total) string {
	rows := make([][]string, len(totals))
	for i, t := range totals {
		rows[i] = []string{t.Name, strconv.Itoa(t.Count), FormatMoney(t.Amount)}
	}
	return RenderTable([]string{name, "Rows", "Amount"}, rows)
}

// RenderSummary writes the dashboard view of a summary.
func RenderSummary(w io.Writer, s report.Summary) error {
	var b strings.Builder

	b.WriteString(FormatTitle(fmt.Sprintf("Transactions (%d)", s.Count)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total: %s\n", FormatMoney(s.Total))

	if s.Month != "" && s.Goal != nil {
		style := PositiveStyle
		if s.Delta.IsNegative() {
			style = NegativeStyle
		}
		metric := fmt.Sprintf("Month: %s\n%s\nGoal: %s  Delta: %s",
			s.Month,
			FormatMoney(s.Total),
			FormatMoney(*s.Goal),
			style.Render(FormatMoney(s.Delta)))
		b.WriteString(RenderBox(ChartIcon+" Budget", metric))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(totalsTable("Category", s.Categories))
	b.WriteString("\n\n")
	b.WriteString(totalsTable("Account", s.Accounts))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// ClassifiedLine is one ad-hoc classification shown by RenderClassifications.
type ClassifiedLine struct {
	Description string
	Result      model.ClassificationResult
}

// RenderClassifications writes a table of descriptions and their results.
func RenderClassifications(w io.Writer, lines []ClassifiedLine) error {
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = []string{
			l.Description,
			l.Result.Category,
			l.Result.MatchedKeyword,
			string(l.Result.Method),
			strconv.FormatFloat(l.Result.Score, 'f', 1, 64),
		}
	}

	_, err := fmt.Fprintln(w, RenderTable([]string{"Description", "Category", "Keyword", "Match", "Score"}, rows))
	return err
}

// RenderRules writes the rule table in evaluation order.
func RenderRules(w io.Writer, rules []model.Rule) error {
	rows := make([][]string, len(rules))
	for i, r := range rules {
		row := ""
		if r.Row > 0 {
			row = strconv.Itoa(r.Row)
		}
		rows[i] = []string{strconv.Itoa(i + 1), r.Keyword, r.Category, row}
	}

	_, err := fmt.Fprintln(w, RenderTable([]string{"#", "Keyword", "Category", "Row"}, rows))
	return err
}

// RenderRuns writes the stored export runs.
func RenderRuns(w io.Writer, runs []service.Run) error {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.RowCount),
			strconv.Itoa(r.Uncategorized),
		}
	}

	_, err := fmt.Fprintln(w, RenderTable([]string{"Run", "Created", "Rows", "Uncategorized"}, rows))
	return err
}
