// Package source loads bank transactions from Google Sheets tabs, local
// spreadsheets and OFX/QFX downloads.
package source

import (
	"fmt"
	"strings"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/Veraticus/budget-flow/internal/sheets"
	"github.com/shopspring/decimal"
)

// MissingDescription is used when an export has no Description column at all.
const MissingDescription = "No Description"

// DefaultSheetTabs are the bank tabs read when none are configured.
var DefaultSheetTabs = []string{"NFCU", "Chase", "USAA"}

// Column names recognised in bank exports.
const (
	colAccount          = "Account"
	colAmount           = "Amount"
	colCurrency         = "Currency"
	colDate             = "Date"
	colDescription      = "Description"
	colMerchant         = "Merchant"
	colTags             = "Tags"
	colTransactionID    = "TransactionID"
	colTransactionIDAlt = "Transaction Id"
)

// FromRecords maps header-keyed rows to transactions. The first data row is
// row 2 of the source, which is reflected in the transaction ID.
func FromRecords(sourceName string, records []sheets.Record) []model.Transaction {
	txns := make([]model.Transaction, 0, len(records))

	for i, rec := range records {
		txn := model.Transaction{
			ID:            fmt.Sprintf("%s:%d", sourceName, i+2),
			SourceSheet:   sourceName,
			Account:       strings.TrimSpace(rec.String(colAccount)),
			Date:          strings.TrimSpace(rec.String(colDate)),
			Merchant:      strings.TrimSpace(rec.String(colMerchant)),
			Tags:          rec.String(colTags),
			Currency:      rec.String(colCurrency),
			TransactionID: transactionID(rec),
			Amount:        ParseAmount(rec[colAmount]),
		}

		if rec.Has(colDescription) {
			txn.Description = model.StringPtr(rec.String(colDescription))
		} else {
			txn.Description = model.StringPtr(MissingDescription)
		}

		txn.Hash = txn.GenerateHash()
		txns = append(txns, txn)
	}

	return txns
}

func transactionID(rec sheets.Record) string {
	if rec.Has(colTransactionID) {
		return strings.TrimSpace(rec.String(colTransactionID))
	}
	return strings.TrimSpace(rec.String(colTransactionIDAlt))
}

// ParseAmount coerces a cell to a decimal. Anything that is not a number
// becomes zero.
func ParseAmount(v any) decimal.Decimal {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
