package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>POS PURCHASE STARBUCKS #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>PURCHASE
<MEMO>Whole Foods Market
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseOFX(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantErr   bool
	}{
		{name: "bank statement", data: sampleBankOFX, wantCount: 2},
		{name: "credit card statement", data: sampleCreditCardOFX, wantCount: 1},
		{name: "invalid", data: "not valid OFX", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := ParseOFX(context.Background(), strings.NewReader(tt.data), "download")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, txns, tt.wantCount)
		})
	}
}

func TestParseOFX_BankFields(t *testing.T) {
	txns, err := ParseOFX(context.Background(), strings.NewReader(sampleBankOFX), "checking")
	require.NoError(t, err)
	require.Len(t, txns, 2)

	first := txns[0]
	assert.Equal(t, "2024011501", first.TransactionID)
	assert.Equal(t, "checking:1", first.ID)
	assert.Equal(t, "checking", first.SourceSheet)
	assert.Equal(t, "1234567890", first.Account)
	assert.Equal(t, "2024-01-15", first.Date)
	assert.Equal(t, "POS PURCHASE STARBUCKS #1234", first.DescriptionText())
	assert.Equal(t, "STARBUCKS #1234", first.Merchant)
	assert.Equal(t, "-25.5", first.Amount.String())
	assert.Equal(t, "USD", first.Currency)

	second := txns[1]
	assert.Equal(t, "Whole Foods Market", second.DescriptionText(), "generic names fall back to the memo")
	assert.Equal(t, "Whole Foods Market", second.Merchant)
	assert.Equal(t, "-125", second.Amount.String())
}

func TestOFXSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visa.qfx")
	require.NoError(t, os.WriteFile(path, []byte(sampleCreditCardOFX), 0600))

	src := &OFXSource{Path: path, Account: "Visa"}
	assert.Equal(t, "visa", src.Name())

	txns, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Visa", txns[0].Account)
	assert.Equal(t, "NETFLIX.COM", txns[0].DescriptionText())
	assert.Equal(t, txns[0].GenerateHash(), txns[0].Hash)
}

func TestExtractMerchantName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "POS prefix", input: "POS PURCHASE STARBUCKS", want: "STARBUCKS"},
		{name: "debit card prefix", input: "DEBIT CARD PURCHASE WHOLE FOODS", want: "WHOLE FOODS"},
		{name: "clean name", input: "NETFLIX.COM", want: "NETFLIX.COM"},
		{name: "whitespace", input: "  AMAZON.COM  ", want: "AMAZON.COM"},
		{name: "date stamp", input: "01/15 SHELL OIL", want: "SHELL OIL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMerchantName(ofxgo.Transaction{Name: ofxgo.String(tt.input)}))
		})
	}

	payee := ofxgo.Transaction{Name: "PURCHASE", Payee: &ofxgo.Payee{Name: "Target"}}
	assert.Equal(t, "Target", extractMerchantName(payee))
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n  <OFX>\n<SEVERITY>Info</SEVERITY>\n<CODE\n"
	assert.Equal(t, "<OFX>\n<SEVERITY>INFO</SEVERITY>\n<CODE>\n", preprocessOFX(in))
}
