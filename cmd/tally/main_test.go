package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/sheets"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementOFX = `OFXHEADER:100
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
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240122120000[0:GMT]
<TRNAMT>1200.00
<FITID>2024012201
<NAME>ACME CORP PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1174.50
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

// cliHarness runs commands against one SQLite ledger on disk.
type cliHarness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return &cliHarness{t: t, dbPath: filepath.Join(t.TempDir(), "ledger.db")}
}

// run executes the CLI with stdin and returns stdout.
func (h *cliHarness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()

	cmd := newRootCmd(viper.New())
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--database", h.dbPath, "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, "tally %s", strings.Join(args, " "))
	return out
}

func (h *cliHarness) seed() {
	h.t.Helper()
	h.mustRun("accounts", "add", "Bank", "--id", "bank", "--opening", "1000")
	h.mustRun("accounts", "add", "Cash", "--id", "cash", "--opening", "50")
	h.mustRun("categories", "add", "Sales", "--id", "sales", "--type", "income")
	h.mustRun("categories", "add", "Rent", "--id", "rent", "--type", "expense")
	h.mustRun("transactions", "add", "--id", "t1", "--type", "income", "--amount", "250", "--account", "bank", "--category", "sales", "--date", "2024-01-05")
	h.mustRun("transactions", "add", "--id", "t2", "--type", "expense", "--amount", "100", "--account", "cash", "--category", "rent", "--date", "2024-01-06")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "tally dev\n", h.mustRun("version"))
}

func TestAccountsShowBalances(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out := h.mustRun("accounts")
	assert.Contains(t, out, "Bank")
	assert.Contains(t, out, "1,250.00")
	assert.Contains(t, out, "-50.00")
}

func TestTransactionStatus(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.mustRun("transactions", "add", "--id", "t3", "--amount", "75", "--account", "bank", "--status", "pending", "--date", "2024-01-07")

	pending := h.mustRun("transactions", "--status", "pending")
	assert.Contains(t, pending, "t3")
	assert.NotContains(t, pending, "t1")

	h.mustRun("transactions", "approve", "t3")
	assert.Contains(t, h.mustRun("accounts"), "1,175.00")

	_, err := h.run("", "transactions", "approve", "missing")
	assert.Error(t, err)
}

func TestTransactionsFilterByProject(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.mustRun("projects", "add", "Fit-out", "--id", "fitout")
	h.mustRun("transactions", "add", "--id", "t4", "--amount", "80", "--account", "bank", "--project", "fitout", "--date", "2024-01-08")

	out := h.mustRun("transactions", "--project", "fitout")
	assert.Contains(t, out, "t4")
	assert.NotContains(t, out, "t1")
	assert.Contains(t, out, "Transactions (1)")

	assert.Contains(t, h.mustRun("transactions", "--project", "all"), "Transactions (3)")
}

func TestTransactionAddRejectsInvalid(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad amount", []string{"--amount", "ten", "--account", "bank"}},
		{"bad type", []string{"--type", "refund", "--amount", "1", "--account", "bank"}},
		{"bad date", []string{"--amount", "1", "--account", "bank", "--date", "2024-13-01"}},
		{"transfer without destination", []string{"--type", "transfer", "--amount", "1", "--account", "bank"}},
		{"missing account", []string{"--amount", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run("", append([]string{"transactions", "add"}, tt.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestKPIJSON(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.mustRun("planned", "add", "--id", "p1", "--amount", "2000", "--account", "bank", "--date", "2024-01-20")

	out := h.mustRun("kpi", "--json", "--from", "2024-01-01", "--to", "2024-01-31", "--today", "2024-01-10")

	var dash finance.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	assert.Equal(t, testutil.Range("2024-01-01", "2024-01-31"), dash.Request.Range)
	require.NotNil(t, dash.CashFlow.GapDate)
	assert.Equal(t, testutil.Day("2024-01-20"), *dash.CashFlow.GapDate)

	labels := make(map[string]string)
	for _, k := range dash.KPIs {
		labels[k.Label] = k.Value.String()
	}
	assert.Equal(t, "250", labels[finance.LabelIncome])
	assert.Equal(t, "100", labels[finance.LabelExpenses])
	assert.Equal(t, "1200", labels[finance.LabelBusinessCash])
}

func TestKPIFilterByAccount(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out := h.mustRun("kpi", "--json", "--from", "2024-01-01", "--to", "2024-01-31", "--today", "2024-01-10", "--account", "cash")

	var dash finance.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	for _, k := range dash.KPIs {
		if k.Label == finance.LabelIncome {
			assert.True(t, k.Value.IsZero())
		}
	}
}

func TestReports(t *testing.T) {
	h := newHarness(t)
	h.seed()
	window := []string{"--from", "2024-01-01", "--to", "2024-03-31"}

	pnl := h.mustRun(append([]string{"report", "pnl"}, window...)...)
	assert.Contains(t, pnl, "Sales")
	assert.Contains(t, pnl, "Rent")
	assert.Contains(t, pnl, "150.00")

	// only accounts in credit count as cash: Bank 1,250 is in, Cash -50 is out
	balance := h.mustRun(append([]string{"report", "balance-sheet"}, window...)...)
	assert.Contains(t, balance, "Bank")
	assert.Contains(t, balance, "1,250.00")
	assert.NotContains(t, balance, "-50.00")
	assert.NotContains(t, balance, "1,200.00")
	assert.Contains(t, h.mustRun(append([]string{"report", "cash-flow"}, window...)...), "150.00")
	assert.Contains(t, h.mustRun(append([]string{"report", "dynamics", "--type", "income"}, window...)...), "Sales")
	assert.Contains(t, h.mustRun(append([]string{"structure"}, window...)...), "Rent")

	_, err := h.run("", "report", "dynamics", "--type", "transfer")
	assert.Error(t, err)

	_, err = h.run("", "report", "pnl", "--from", "2024-02-01", "--to", "2024-01-01")
	assert.ErrorIs(t, err, model.ErrInvalidDateRange)
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out, err := h.run("n\n", "delete", "transactions", "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted")
	assert.Contains(t, h.mustRun("transactions"), "t1")

	out, err = h.run("y\n", "delete", "transactions", "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted transactions t1")
	assert.NotContains(t, h.mustRun("transactions"), "t1")

	_, err = h.run("", "delete", "widgets", "w1", "--yes")
	assert.ErrorIs(t, err, model.ErrUnknownCollection)
}

func TestImportOFX(t *testing.T) {
	h := newHarness(t)
	h.seed()

	path := filepath.Join(t.TempDir(), "jan.ofx")
	require.NoError(t, os.WriteFile(path, []byte(statementOFX), 0o600))

	// No mapping for bank account 1234567890, so the importer asks.
	out, err := h.run("1\n", "import-ofx", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1234567890")
	assert.Contains(t, out, "Imported 2 transactions, skipped 0 duplicates")
	assert.Contains(t, h.mustRun("accounts"), "2,424.50")

	out = h.mustRun("import-ofx", "--account", "bank", path)
	assert.Contains(t, out, "Imported 0 transactions, skipped 2 duplicates")
}

func TestImportOFXDryRun(t *testing.T) {
	h := newHarness(t)
	h.seed()

	path := filepath.Join(t.TempDir(), "jan.ofx")
	require.NoError(t, os.WriteFile(path, []byte(statementOFX), 0o600))

	out := h.mustRun("import-ofx", "--dry-run", "--account", "cash", path)
	assert.Contains(t, out, "2 transactions for cash")
	assert.Contains(t, h.mustRun("accounts"), "-50.00", "dry run stores nothing")

	_, err := h.run("", "import-ofx", filepath.Join(t.TempDir(), "none-*.ofx"))
	assert.Error(t, err)
}

func TestExportDryRun(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out := h.mustRun("export", "--dry-run", "--from", "2024-01-01", "--to", "2024-01-31")
	assert.Contains(t, out, "Tab")
	assert.Contains(t, out, "Transactions")
}

func TestExportWritesWorkbook(t *testing.T) {
	h := newHarness(t)
	h.seed()
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", filepath.Join(t.TempDir(), "key.json"))

	recorder := &sheets.MockWriter{}
	orig := newReportWriter
	newReportWriter = func(context.Context, sheets.Config) (sheets.ReportWriter, error) { return recorder, nil }
	t.Cleanup(func() { newReportWriter = orig })

	out := h.mustRun("export", "--title", "Q1 books", "--from", "2024-01-01", "--to", "2024-03-31")
	assert.Contains(t, out, `"Q1 books"`)

	written := recorder.Written()
	require.Len(t, written, 1)
	assert.Equal(t, "Q1 books", written[0].Title)
	txns := written[0].Tab(sheets.TabTransactions)
	require.NotNil(t, txns)
	assert.Len(t, txns.Rows, 3, "header and two transactions")

	recorder.Err = errors.New("quota exhausted")
	_, err := h.run("", "export", "--from", "2024-01-01", "--to", "2024-03-31")
	assert.ErrorContains(t, err, "export failed: quota exhausted")
}

func TestExportNeedsCredentials(t *testing.T) {
	h := newHarness(t)
	for _, env := range []string{"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"} {
		t.Setenv(env, "")
	}

	_, err := h.run("", "export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tally auth sheets")
}

func TestMigrateStatus(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("migrate", "--status")
	assert.Contains(t, out, "Schema version")
}

func TestPeriodWindow(t *testing.T) {
	today := testutil.Day("2024-05-10")

	tests := []struct {
		name    string
		p       period
		want    model.DateRange
		wantErr bool
	}{
		{"defaults to quarter", period{}, testutil.Range("2024-04-01", "2024-06-30"), false},
		{"from only", period{from: "2024-05-01"}, testutil.Range("2024-05-01", "2024-06-30"), false},
		{"both", period{from: "2024-01-01", to: "2024-01-31"}, testutil.Range("2024-01-01", "2024-01-31"), false},
		{"reversed", period{from: "2024-06-01", to: "2024-05-01"}, model.DateRange{}, true},
		{"bad date", period{to: "tomorrow"}, model.DateRange{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.window(today)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodRequest(t *testing.T) {
	p := period{today: "2024-02-15", account: "bank", project: "all"}
	req, err := p.request()
	require.NoError(t, err)
	assert.Equal(t, testutil.Day("2024-02-15"), req.Today)
	assert.Equal(t, testutil.Range("2024-01-01", "2024-03-31"), req.Range)
	assert.Equal(t, finance.Filter{AccountID: "bank", ProjectID: "all"}, req.Filter)
	assert.True(t, req.Filter.AllProjects())
}

func TestNameLookup(t *testing.T) {
	snap := testutil.NewLedger().
		Account("bank", "0").
		Category("sales", "Sales", model.Income).
		Snapshot()

	name := nameLookup(snap)
	assert.Equal(t, "bank", name(model.CollectionAccounts, "bank"))
	assert.Equal(t, "Sales", name(model.CollectionCategories, "sales"))
	assert.Equal(t, "ghost", name(model.CollectionCategories, "ghost"))
	assert.Empty(t, name(model.CollectionProjects, ""))
}
