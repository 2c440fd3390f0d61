package ofx

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stmtLine struct {
	kind, posted, amount, fitID, name string
}

// statementOFX renders an SGML statement. A card account uses the credit
// card message set.
func statementOFX(acctID string, card bool, lines ...stmtLine) string {
	set, trn, rs, from := "BANKMSGSRSV1", "STMTTRNRS", "STMTRS", "<BANKACCTFROM><BANKID>021000021<ACCTID>"+acctID+"<ACCTTYPE>CHECKING</BANKACCTFROM>"
	if card {
		set, trn, rs, from = "CREDITCARDMSGSRSV1", "CCSTMTTRNRS", "CCSTMTRS", "<CCACCTFROM><ACCTID>"+acctID+"</CCACCTFROM>"
	}

	var body strings.Builder
	body.WriteString("<OFX><SIGNONMSGSRSV1><SONRS><STATUS><CODE>0<SEVERITY>INFO</STATUS>" +
		"<DTSERVER>20240301090000[0:GMT]<LANGUAGE>ENG</SONRS></SIGNONMSGSRSV1>")
	fmt.Fprintf(&body, "<%s><%s><TRNUID>7<STATUS><CODE>0<SEVERITY>INFO</STATUS><%s><CURDEF>EUR%s", set, trn, rs, from)
	body.WriteString("<BANKTRANLIST><DTSTART>20240201000000[0:GMT]<DTEND>20240229000000[0:GMT]")
	for _, l := range lines {
		fmt.Fprintf(&body, "<STMTTRN><TRNTYPE>%s<DTPOSTED>%s100000[0:GMT]<TRNAMT>%s<FITID>%s<NAME>%s</STMTTRN>",
			l.kind, l.posted, l.amount, l.fitID, l.name)
	}
	fmt.Fprintf(&body, "</BANKTRANLIST><LEDGERBAL><BALAMT>0.00<DTASOF>20240229000000[0:GMT]</LEDGERBAL></%s></%s></%s></OFX>", rs, trn, set)

	// one element per line, as institutions write them
	elements := strings.TrimPrefix(strings.ReplaceAll(body.String(), "<", "\n<"), "\n")
	return "OFXHEADER:100\nDATA:OFXSGML\nVERSION:102\nSECURITY:NONE\nENCODING:USASCII\n" +
		"CHARSET:1252\nCOMPRESSION:NONE\nOLDFILEUID:NONE\nNEWFILEUID:NONE\n\n" + elements
}

var (
	operatingOFX = statementOFX("DE4450010517",
		false,
		stmtLine{"DEBIT", "20240205", "-310.40", "F-0205-1", "OFFICE SUPPLY CO"},
		stmtLine{"CREDIT", "20240209", "4800.00", "F-0209-1", "INVOICE 2024-014 NORTHWIND"},
		stmtLine{"DEBIT", "20240215", "-1450.00", "F-0215-1", "WAREHOUSE RENT FEB"},
		stmtLine{"CHECK", "20240221", "-220.00", "F-0221-1", "CHECK #0042"},
	)
	cardOFX = statementOFX("5500000000000004",
		true,
		stmtLine{"DEBIT", "20240203", "-89.99", "CC-0203", "CLOUDHOST*INV88231"},
		stmtLine{"DEBIT", "20240212", "-19.00", "CC-0212", "DOMAIN REGISTRAR"},
	)
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "operating account",
			ofxData:       operatingOFX,
			expectedCount: 4,
		},
		{
			name:          "company card",
			ofxData:       cardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()

			statements, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, statements, 1)
			assert.Len(t, statements[0].Transactions, tt.expectedCount)
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	parser := NewParser(sequentialIDs())

	statements, err := parser.ParseFile(context.Background(), strings.NewReader(operatingOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)
	stmt := statements[0]
	assert.Equal(t, "DE4450010517", stmt.AccountID)
	assert.Equal(t, "EUR", stmt.Currency)
	require.Len(t, stmt.Transactions, 4)

	supplies := stmt.Transactions[0]
	assert.Equal(t, "id-1", supplies.ID)
	assert.Equal(t, "F-0205-1", supplies.ExternalID)
	assert.Equal(t, "OFFICE SUPPLY CO", supplies.Description)
	assert.Equal(t, model.Expense, supplies.Type)
	assert.Equal(t, model.StatusApproved, supplies.Status)
	assert.True(t, supplies.Amount.Equal(decimal.RequireFromString("310.40")), "amounts are unsigned")
	assert.Equal(t, "DE4450010517", supplies.AccountID)
	assert.Equal(t, model.MustParseDate("2024-02-05"), supplies.Date)
	require.NoError(t, supplies.Validate())

	invoice := stmt.Transactions[1]
	assert.Equal(t, model.Income, invoice.Type)
	assert.True(t, invoice.Amount.Equal(decimal.NewFromInt(4800)))

	check := stmt.Transactions[3]
	assert.Equal(t, "CHECK #0042", check.Description)
	assert.Equal(t, model.Expense, check.Type)
}

func TestParseCreditCardTransactions(t *testing.T) {
	parser := NewParser(WithStatus(model.StatusPending))

	statements, err := parser.ParseFile(context.Background(), strings.NewReader(cardOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)
	txns := statements[0].Transactions
	require.Len(t, txns, 2)

	assert.Equal(t, "CC-0203", txns[0].ExternalID)
	assert.Equal(t, "CLOUDHOST*INV88231", txns[0].Description)
	assert.True(t, txns[0].Amount.Equal(decimal.RequireFromString("89.99")))
	assert.Equal(t, "5500000000000004", txns[0].AccountID)
	assert.Equal(t, model.StatusPending, txns[0].Status)
	assert.NotEqual(t, txns[0].ID, txns[1].ID)
}

func TestExtractMerchantName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"},
			expected: "WHOLE FOODS",
		},
		{
			name:     "keep clean name",
			tx:       ofxgo.Transaction{Name: "NETFLIX.COM"},
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
		{
			name:     "strip leading date",
			tx:       ofxgo.Transaction{Name: "01/15 HARDWARE DEPOT"},
			expected: "HARDWARE DEPOT",
		},
		{
			name:     "memo replaces generic name",
			tx:       ofxgo.Transaction{Name: "PAYMENT", Memo: "CITY WATER"},
			expected: "CITY WATER",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "ACH DEBIT 9921", Payee: &ofxgo.Payee{Name: "Landlord LLC"}},
			expected: "Landlord LLC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.extractMerchantName(tt.tx))
		})
	}
}

func TestMissingFitIDFallsBackToHash(t *testing.T) {
	parser := NewParser()
	tx, err := parser.convertTransaction(ofxgo.Transaction{
		Name:   "BAKERY",
		TrnAmt: ofxgo.Amount{},
	}, "acct")
	require.NoError(t, err)
	assert.Len(t, tx.ExternalID, 64)
	assert.Equal(t, tx.GenerateHash(), tx.ExternalID)
}

func TestGetAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(operatingOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"DE4450010517"}, accounts)

	accounts, err = parser.GetAccounts(context.Background(), strings.NewReader(cardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"5500000000000004"}, accounts)
}
