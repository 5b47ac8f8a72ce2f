package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are the date formats seen in bank exports, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"01/02/06",
	time.RFC3339,
}

// Transaction represents a single bank transaction from any source.
type Transaction struct {
	Description   *string         // Raw description; nil when the source had none
	ID            string          // Position within a run, e.g. "Chase:12"
	TransactionID string          // Bank-provided identifier used for de-duplication
	SourceSheet   string          // Tab or file the row came from
	Account       string
	Date          string // Date as exported by the bank
	Merchant      string
	Tags          string
	Currency      string
	Hash          string
	Amount        decimal.Decimal
}

// DescriptionText returns the description or an empty string when absent.
func (t *Transaction) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// PostedAt parses Date using the known export layouts.
func (t *Transaction) PostedAt() (time.Time, bool) {
	raw := strings.TrimSpace(t.Date)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Month returns the transaction month as YYYY-MM, or "" when the date is unparseable.
func (t *Transaction) Month() string {
	posted, ok := t.PostedAt()
	if !ok {
		return ""
	}
	return posted.Format("2006-01")
}

// GenerateHash creates a stable hash of the transaction contents for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date,
		t.Amount.StringFixed(2),
		t.DescriptionText(),
		t.Account)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// StringPtr returns a pointer to s. Handy for building descriptions.
func StringPtr(s string) *string {
	return &s
}
