// Package consolidate merges bank exports into one categorized table.
package consolidate

import (
	"github.com/Veraticus/budget-flow/internal/model"
)

// Columns is the header of the consolidated table, in output order.
var Columns = []string{
	"Account",
	"SourceSheet",
	"CompanyName",
	"Description",
	"Category",
	"Subcategory",
	"Date",
	"Amount",
	"Notes",
	"TransactionID",
}

// RowValues returns the cells of a consolidated row in Columns order.
// Amounts are written as numbers so spreadsheets can sum them.
func RowValues(row model.CategorizedTransaction) []any {
	return []any{
		row.Account,
		row.SourceSheet,
		row.CompanyName,
		row.DescriptionText(),
		row.Result.Category,
		row.Subcategory,
		row.Date,
		row.Amount.InexactFloat64(),
		row.Notes,
		row.TransactionID,
	}
}

// Notes builds the notes cell: the transaction date and the matched keyword.
func Notes(date, matchedKeyword string) string {
	return date + " | " + matchedKeyword
}
