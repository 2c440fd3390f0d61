package finance

import (
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name string
		curr string
		prev string
		want int64
	}{
		{"both zero", "0", "0", 0},
		{"from zero to positive", "5000", "0", 100},
		{"from zero to negative", "-5", "0", 0},
		{"growth", "150", "100", 50},
		{"decline", "50", "100", -50},
		{"half rounds up", "9", "8", 13},
		{"negative half rounds toward positive", "-1", "8", -112},
		{"negative previous uses magnitude", "-50", "-100", 50},
		{"unchanged", "42", "42", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delta(testutil.Dec(tt.curr), testutil.Dec(tt.prev)))
		})
	}
}

func TestSumPeriod(t *testing.T) {
	snap := testutil.NewLedger().
		Account("a", "0").
		Account("b", "0").
		Income("2024-01-01", "10", "a", testutil.WithProject("p1")).
		Income("2024-01-31", "20", "b").
		Income("2024-02-01", "40", "a").
		Income("2024-01-15", "80", "a", testutil.WithStatus(model.StatusPending)).
		Expense("2024-01-15", "160", "a").
		Snapshot()
	jan := testutil.Range("2024-01-01", "2024-01-31")

	assertDec(t, "30", SumPeriod(snap.Transactions, jan, model.Income, Filter{}), "bounds are inclusive")
	assertDec(t, "10", SumPeriod(snap.Transactions, jan, model.Income, Filter{AccountID: "a"}))
	assertDec(t, "10", SumPeriod(snap.Transactions, jan, model.Income, Filter{ProjectID: "p1"}))
	assertDec(t, "0", SumPeriod(snap.Transactions, jan, model.Income, Filter{AccountID: "b", ProjectID: "p1"}))
	assertDec(t, "160", SumPeriod(snap.Transactions, jan, model.Expense, Filter{AccountID: AllSelector, ProjectID: AllSelector}))
	assertDec(t, "0", SumPeriod(nil, jan, model.Income, Filter{}))
}

func TestKPIs_ConcreteScenario(t *testing.T) {
	snap := testutil.NewLedger().
		Account("bank", "50000").
		Income("2024-01-01", "25000", "bank").
		Expense("2024-01-05", "5000", "bank").
		Snapshot()

	kpis := KPIs(snap.Transactions, snap.Accounts, testutil.Range("2024-01-01", "2024-01-05"), Filter{})
	require.Len(t, kpis, 4)

	labels := []string{kpis[0].Label, kpis[1].Label, kpis[2].Label, kpis[3].Label}
	assert.Equal(t, []string{LabelIncome, LabelExpenses, LabelNetProfit, LabelBusinessCash}, labels)

	assertDec(t, "25000", kpis[0].Value)
	assertDec(t, "5000", kpis[1].Value)
	assertDec(t, "20000", kpis[2].Value)
	assertDec(t, "70000", kpis[3].Value)

	// The previous window is 2023-12-28..2024-01-01 and shares its last day
	// with the current window, so the opening income is counted in both.
	assertDec(t, "25000", kpis[0].PreviousValue)
	assert.Equal(t, int64(0), kpis[0].Delta)
	assert.Equal(t, int64(100), kpis[1].Delta)
	assert.Equal(t, int64(-20), kpis[2].Delta)

	assert.Equal(t, int64(0), kpis[3].Delta)
	assertDec(t, "0", kpis[3].PreviousValue)
	require.Len(t, kpis[3].Sparkline, 1)
	assertDec(t, "70000", kpis[3].Sparkline[0])
}

func TestKPIs_ShortPeriodSparklineCollapses(t *testing.T) {
	snap := testutil.NewLedger().
		Account("bank", "0").
		Income("2024-01-01", "25000", "bank").
		Expense("2024-01-05", "5000", "bank").
		Snapshot()

	kpis := KPIs(snap.Transactions, snap.Accounts, testutil.Range("2024-01-01", "2024-01-05"), Filter{})

	for _, k := range kpis[:3] {
		require.Len(t, k.Sparkline, 7, k.Label)
	}
	for i := range 7 {
		assertDec(t, "0", kpis[0].Sparkline[i], "income bucket %d", i)
		assertDec(t, "5000", kpis[1].Sparkline[i], "expense bucket %d", i)
		assertDec(t, "-5000", kpis[2].Sparkline[i], "profit bucket %d", i)
	}
}

func TestKPIs_SparklineBuckets(t *testing.T) {
	// A 28-day period gives four-day buckets ending on Jan 5, 9, ... 29.
	b := testutil.NewLedger().Account("bank", "0")
	for _, d := range []string{"2024-01-05", "2024-01-07", "2024-01-29", "2023-12-31"} {
		b.Income(d, "1", "bank")
	}
	snap := b.Snapshot()

	kpis := KPIs(snap.Transactions, snap.Accounts, testutil.Range("2024-01-01", "2024-01-29"), Filter{})
	got := make([]string, 0, 7)
	for _, v := range kpis[0].Sparkline {
		got = append(got, v.String())
	}
	// Buckets: [01,05] [05,09] [09,13] [13,17] [17,21] [21,25] [25,29].
	// Jan 5 sits on a shared boundary and counts twice.
	assert.Equal(t, []string{"1", "2", "0", "0", "0", "0", "1"}, got)
}

func TestKPIs_Empty(t *testing.T) {
	kpis := KPIs(nil, nil, testutil.Range("2024-01-01", "2024-01-31"), Filter{})
	require.Len(t, kpis, 4)
	for _, k := range kpis {
		assert.True(t, k.Value.IsZero(), k.Label)
		assert.True(t, k.PreviousValue.IsZero(), k.Label)
		assert.Equal(t, int64(0), k.Delta, k.Label)
	}
}

func TestKPIs_BusinessCashIgnoresProjectFilter(t *testing.T) {
	snap := testutil.NewLedger().
		Account("a", "100").
		Account("b", "1000").
		Income("2024-01-02", "10", "a", testutil.WithProject("p1")).
		Income("2024-01-02", "20", "b").
		Snapshot()
	window := testutil.Range("2024-01-01", "2024-01-31")

	kpis := KPIs(snap.Transactions, snap.Accounts, window, Filter{ProjectID: "p1"})
	assertDec(t, "10", kpis[0].Value)
	assertDec(t, "1130", kpis[3].Value)

	kpis = KPIs(snap.Transactions, snap.Accounts, window, Filter{AccountID: "a"})
	assertDec(t, "10", kpis[0].Value)
	assertDec(t, "110", kpis[3].Value)
}

func TestProfitability(t *testing.T) {
	snap := testutil.NewLedger().
		Account("bank", "0").
		Income("2024-01-10", "1000", "bank").
		Expense("2024-01-12", "750", "bank").
		Income("2023-12-10", "1000", "bank").
		Expense("2023-12-12", "500", "bank").
		Snapshot()

	k := Profitability(snap.Transactions, testutil.Range("2024-01-01", "2024-01-31"))
	assert.Equal(t, LabelProfitability, k.Label)
	assertDec(t, "25", k.Value)
	assertDec(t, "50", k.PreviousValue)
	assert.Equal(t, int64(-50), k.Delta)
	assert.Len(t, k.Sparkline, 7)

	assertDec(t, "0", Margin(decimal.Zero, testutil.Dec("10")))
}

func TestPendingLiabilities(t *testing.T) {
	snap := testutil.NewLedger().
		Account("bank", "0").
		Income("2024-01-01", "100", "bank", testutil.WithStatus(model.StatusPending)).
		Expense("2030-01-01", "40", "bank", testutil.WithStatus(model.StatusPending)).
		Expense("2024-01-01", "999", "bank").
		Txn("2024-01-01", model.Transfer, "5", "bank", testutil.WithStatus(model.StatusPending)).
		Snapshot()

	l := PendingLiabilities(snap.Transactions)
	assertDec(t, "100", l.PendingIncome)
	assertDec(t, "40", l.PendingExpense)
}
