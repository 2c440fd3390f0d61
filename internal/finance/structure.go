package finance

import (
	"sort"

	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// OtherCategory names transactions without a resolvable category.
const OtherCategory = "Other"

// Palette colours structure slices by their sorted position.
var Palette = []string{
	"hsl(220, 70%, 50%)",
	"hsl(142, 71%, 45%)",
	"hsl(262, 83%, 58%)",
	"hsl(25, 95%, 53%)",
	"hsl(0, 84%, 60%)",
	"hsl(45, 93%, 47%)",
	"hsl(330, 81%, 60%)",
	"hsl(199, 89%, 48%)",
	"hsl(160, 60%, 45%)",
	"hsl(280, 65%, 60%)",
}

// StructureSlice is one category's share of a period's income or expense.
type StructureSlice struct {
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Value      decimal.Decimal `json:"value"`
	Percentage int64           `json:"percentage"`
}

// CategoryStructure breaks the window's APPROVED transactions of one type
// down by category name, largest first.
func CategoryStructure(
	txns []model.Transaction,
	categories []model.Category,
	window model.DateRange,
	typ model.TransactionType,
	filter Filter,
) []StructureSlice {
	names := categoryNames(categories)
	sums, order := groupByCategory(txns, names, func(t *model.Transaction) bool {
		return t.IsApproved() && t.Type == typ && window.Contains(t.Date) && filter.Match(t)
	}, func(t *model.Transaction) decimal.Decimal { return t.Amount })

	total := decimal.Zero
	for _, name := range order {
		total = total.Add(sums[name])
	}

	slices := make([]StructureSlice, len(order))
	for i, name := range order {
		slices[i] = StructureSlice{Name: name, Value: sums[name]}
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Value.GreaterThan(slices[j].Value)
	})
	for i := range slices {
		slices[i].Percentage = percentOf(slices[i].Value, total)
		slices[i].Color = Palette[i%len(Palette)]
	}
	return slices
}

func categoryNames(categories []model.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func categoryName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return OtherCategory
}

// groupByCategory sums value(t) per category name over the transactions
// accepted by keep. Names are returned in first-seen order.
func groupByCategory(
	txns []model.Transaction,
	names map[string]string,
	keep func(*model.Transaction) bool,
	value func(*model.Transaction) decimal.Decimal,
) (map[string]decimal.Decimal, []string) {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for i := range txns {
		t := &txns[i]
		if !keep(t) {
			continue
		}
		name := categoryName(names, t.CategoryID)
		if _, seen := sums[name]; !seen {
			order = append(order, name)
		}
		sums[name] = sums[name].Add(value(t))
	}
	return sums, order
}
