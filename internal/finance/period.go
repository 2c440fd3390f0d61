package finance

import (
	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// SumPeriod totals APPROVED transactions of the given type dated within the
// window (bounds included) that pass the filter.
func SumPeriod(txns []model.Transaction, window model.DateRange, typ model.TransactionType, filter Filter) decimal.Decimal {
	total := decimal.Zero
	for i := range txns {
		t := &txns[i]
		if t.IsApproved() && t.Type == typ && window.Contains(t.Date) && filter.Match(t) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// previousWindow is w shifted back by its own period length.
func previousWindow(w model.DateRange) model.DateRange {
	return w.Shift(-periodDays(w))
}

// periodDays is the day difference of the window, at least one.
func periodDays(w model.DateRange) int {
	return max(1, w.Days())
}

// sparkWindows splits the trailing part of w into seven buckets of
// floor(periodDays/7) days each, oldest first. Consecutive buckets share a
// boundary day. When the period is shorter than a week every bucket is the
// single day w.To.
func sparkWindows(w model.DateRange) []model.DateRange {
	step := periodDays(w) / 7
	out := make([]model.DateRange, 0, sparkPoints)
	for i := sparkPoints - 1; i >= 0; i-- {
		end := w.To.AddDays(-i * step)
		out = append(out, model.DateRange{From: end.AddDays(-step), To: end})
	}
	return out
}

const sparkPoints = 7
