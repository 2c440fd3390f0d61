package finance

import (
	"sort"

	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// MonthBucket is one calendar month's per-category totals.
type MonthBucket struct {
	Month      model.Date                 `json:"month"` // first day of the month
	Label      string                     `json:"label"` // e.g. "Jan 24"
	Categories map[string]decimal.Decimal `json:"categories"`
	Total      decimal.Decimal            `json:"total"`
}

// CategoryDynamics buckets the window's APPROVED transactions of one type by
// calendar month and category name. Months come back oldest first and only
// months with at least one transaction appear. Category names are listed in
// descending order of their total over the window.
func CategoryDynamics(
	txns []model.Transaction,
	categories []model.Category,
	window model.DateRange,
	typ model.TransactionType,
) ([]MonthBucket, []string) {
	names := categoryNames(categories)
	months := make(map[model.Date]*MonthBucket)
	totals := make(map[string]decimal.Decimal)

	for i := range txns {
		t := &txns[i]
		if !t.IsApproved() || t.Type != typ || !window.Contains(t.Date) {
			continue
		}
		key := t.Date.StartOfMonth()
		b, ok := months[key]
		if !ok {
			b = &MonthBucket{
				Month:      key,
				Label:      key.Time().Format("Jan 06"),
				Categories: make(map[string]decimal.Decimal),
				Total:      decimal.Zero,
			}
			months[key] = b
		}
		name := categoryName(names, t.CategoryID)
		b.Categories[name] = b.Categories[name].Add(t.Amount)
		b.Total = b.Total.Add(t.Amount)
		totals[name] = totals[name].Add(t.Amount)
	}

	buckets := make([]MonthBucket, 0, len(months))
	for _, b := range months {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })

	order := make([]string, 0, len(totals))
	for name := range totals {
		order = append(order, name)
	}
	sort.Slice(order, func(i, j int) bool {
		if c := totals[order[i]].Cmp(totals[order[j]]); c != 0 {
			return c > 0
		}
		return order[i] < order[j]
	})
	return buckets, order
}
