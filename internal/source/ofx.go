package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Veraticus/budget-flow/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at end of line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// merchantPrefixes are stripped from OFX names to recover the merchant.
var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// OFXSource reads an OFX or QFX download. Account defaults to the statement's
// account ID when empty.
type OFXSource struct {
	Path    string
	Account string
}

// Name implements service.TransactionSource.
func (s *OFXSource) Name() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load implements service.TransactionSource.
func (s *OFXSource) Load(ctx context.Context) ([]model.Transaction, error) {
	f, err := os.Open(s.Path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open OFX file: %w", err)
	}
	defer func() { _ = f.Close() }()

	txns, err := ParseOFX(ctx, f, s.Name())
	if err != nil {
		return nil, err
	}

	if s.Account != "" {
		for i := range txns {
			txns[i].Account = s.Account
			txns[i].Hash = txns[i].GenerateHash()
		}
	}
	return txns, nil
}

// ParseOFX parses an OFX/QFX document. Bank and credit card statements are
// both read; FITIDs become transaction IDs.
func ParseOFX(ctx context.Context, r io.Reader, sourceName string) ([]model.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var txns []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			txns = appendStatement(txns, stmt.BankTranList, string(stmt.BankAcctFrom.AcctID), stmt.CurDef.String(), sourceName)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			txns = appendStatement(txns, stmt.BankTranList, string(stmt.CCAcctFrom.AcctID), stmt.CurDef.String(), sourceName)
		}
	}

	slog.Info("Parsed OFX file",
		"source", sourceName,
		"total_transactions", len(txns),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return txns, nil
}

// preprocessOFX fixes common formatting issues in bank-generated OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func appendStatement(txns []model.Transaction, list *ofxgo.TransactionList, account, currency, sourceName string) []model.Transaction {
	if list == nil {
		return txns
	}
	for _, ofxTx := range list.Transactions {
		txn := convertTransaction(ofxTx, account, currency)
		txn.SourceSheet = sourceName
		txn.ID = fmt.Sprintf("%s:%d", sourceName, len(txns)+1)
		txn.Hash = txn.GenerateHash()
		txns = append(txns, txn)
	}
	return txns
}

func convertTransaction(ofxTx ofxgo.Transaction, account, currency string) model.Transaction {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.Rat.FloatString(4))
	if err != nil {
		amount = decimal.Zero
	}

	description := strings.TrimSpace(string(ofxTx.Name))
	if description == "" || isGenericDescription(description) {
		if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" {
			description = memo
		}
	}

	return model.Transaction{
		TransactionID: string(ofxTx.FiTID),
		Account:       account,
		Date:          ofxTx.DtPosted.Format("2006-01-02"),
		Description:   model.StringPtr(description),
		Merchant:      extractMerchantName(ofxTx),
		Currency:      currency,
		Amount:        amount,
	}
}

// extractMerchantName gets a clean merchant name from OFX data.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date stamps
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
