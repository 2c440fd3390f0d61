// Package ofx turns OFX/QFX bank statements into ledger transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/tally/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement is the transactions of one bank or card account in a file.
// AccountID is the institution's account number, not a ledger account.
type Statement struct {
	AccountID    string
	Currency     string
	Transactions []model.Transaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	newID  func() string
	status model.TransactionStatus
}

// Option configures a Parser.
type Option func(*Parser)

// WithStatus sets the status given to parsed transactions. Cleared bank
// lines default to APPROVED.
func WithStatus(s model.TransactionStatus) Option {
	return func(p *Parser) { p.status = s }
}

// WithIDGenerator replaces the random transaction ids.
func WithIDGenerator(f func() string) Option {
	return func(p *Parser) { p.newID = f }
}

// NewParser creates a new OFX parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{newID: uuid.NewString, status: model.StatusApproved}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare tag line
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file into one Statement per account.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Statement, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var statements []Statement
	total := 0

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			s := p.convertStatement(string(stmt.BankAcctFrom.AcctID), stmt.CurDef.String(), stmt.BankTranList)
			total += len(s.Transactions)
			statements = append(statements, s)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			s := p.convertStatement(string(stmt.CCAcctFrom.AcctID), stmt.CurDef.String(), stmt.BankTranList)
			total += len(s.Transactions)
			statements = append(statements, s)
		}
	}

	slog.InfoContext(ctx, "Parsed OFX file",
		"total_transactions", total,
		"statements", len(statements))

	return statements, nil
}

func (p *Parser) convertStatement(accountID, currency string, list *ofxgo.TransactionList) Statement {
	s := Statement{AccountID: accountID, Currency: currency}
	if list == nil {
		return s
	}
	for _, ofxTx := range list.Transactions {
		tx, err := p.convertTransaction(ofxTx, accountID)
		if err != nil {
			slog.Warn("Skipping unreadable OFX transaction",
				"account", accountID,
				"fitid", string(ofxTx.FiTID),
				"error", err)
			continue
		}
		s.Transactions = append(s.Transactions, tx)
	}
	return s
}

// convertTransaction maps an OFX line onto a ledger transaction. OFX signs
// debits negative; the ledger stores a magnitude and a type.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (model.Transaction, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	typ := model.Income
	if amount.IsNegative() {
		typ = model.Expense
	}

	tx := model.Transaction{
		ID:          p.newID(),
		Date:        model.DateOf(ofxTx.DtPosted.Time),
		Type:        typ,
		Status:      p.status,
		Amount:      amount.Abs(),
		AccountID:   accountID,
		Description: p.extractMerchantName(ofxTx),
		ExternalID:  string(ofxTx.FiTID),
	}
	if ofxTx.CheckNum != "" && !strings.Contains(tx.Description, string(ofxTx.CheckNum)) {
		tx.Description = fmt.Sprintf("%s (check %s)", tx.Description, ofxTx.CheckNum)
	}
	if tx.ExternalID == "" {
		tx.ExternalID = tx.GenerateHash()
	}

	return tx, nil
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is the cleanest source when present
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// leading "MM/DD "
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id ofxgo.String) {
		if id != "" && !seen[string(id)] {
			seen[string(id)] = true
			accounts = append(accounts, string(id))
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankAcctFrom.AcctID)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.CCAcctFrom.AcctID)
		}
	}

	return accounts, nil
}
