package finance

import (
	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// CashFlowPoint is the running cash position at the end of one day. Exactly
// one of Actual and Forecast is set, matching IsProjection.
type CashFlowPoint struct {
	Actual       *decimal.Decimal `json:"actual,omitempty"`
	Forecast     *decimal.Decimal `json:"forecast,omitempty"`
	Balance      decimal.Decimal  `json:"balance"`
	Date         model.Date       `json:"date"`
	IsProjection bool             `json:"is_projection"`
}

// CashFlowProjection is one point per day of the window plus the first
// forecast day that goes negative, if any.
type CashFlowProjection struct {
	GapDate *model.Date     `json:"gap_date,omitempty"`
	Points  []CashFlowPoint `json:"points"`
}

// ProjectCashFlow walks the window day by day from the opening balances of
// the selected accounts. Days up to and including today apply APPROVED
// transactions passing the filter; later days apply planned payments, which
// are never filtered. Transfers move nothing in either phase.
func ProjectCashFlow(
	accounts []model.Account,
	txns []model.Transaction,
	planned []model.PlannedPayment,
	window model.DateRange,
	filter Filter,
	today model.Date,
) CashFlowProjection {
	running := decimal.Zero
	for i := range accounts {
		if filter.MatchAccount(&accounts[i]) {
			running = running.Add(accounts[i].OpeningBalance)
		}
	}

	actual := make(map[model.Date]decimal.Decimal)
	for i := range txns {
		t := &txns[i]
		if !t.IsApproved() || t.Date.After(today) || !window.Contains(t.Date) || !filter.Match(t) {
			continue
		}
		actual[t.Date] = actual[t.Date].Add(signed(t.Type, t.Amount))
	}

	forecast := make(map[model.Date]decimal.Decimal)
	for i := range planned {
		p := &planned[i]
		if !p.Date.After(today) || !window.Contains(p.Date) {
			continue
		}
		forecast[p.Date] = forecast[p.Date].Add(signed(p.Type, p.Amount))
	}

	proj := CashFlowProjection{Points: make([]CashFlowPoint, 0, max(0, window.Days()+1))}
	for d := window.From; !d.After(window.To); d = d.AddDays(1) {
		point := CashFlowPoint{Date: d}
		if d.After(today) {
			running = running.Add(forecast[d])
			v := running
			point.Forecast = &v
			point.IsProjection = true
		} else {
			running = running.Add(actual[d])
			v := running
			point.Actual = &v
		}
		point.Balance = running
		if point.IsProjection && proj.GapDate == nil && running.IsNegative() {
			gap := d
			proj.GapDate = &gap
		}
		proj.Points = append(proj.Points, point)
	}
	return proj
}

// signed is the cash effect of an amount on its own account; transfers
// count as zero.
func signed(typ model.TransactionType, amount decimal.Decimal) decimal.Decimal {
	switch typ {
	case model.Income:
		return amount
	case model.Expense:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}
