package finance

import (
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryStructure(t *testing.T) {
	snap := testutil.NewLedger().
		Account("bank", "0").
		Category("rent", "Rent", model.Expense).
		Category("food", "Food", model.Expense).
		Expense("2024-01-02", "100", "bank").
		Expense("2024-01-03", "300", "bank", testutil.WithCategory("food")).
		Expense("2024-01-04", "600", "bank", testutil.WithCategory("rent")).
		Expense("2024-01-05", "50", "bank", testutil.WithCategory("rent"), testutil.WithStatus(model.StatusPending)).
		Expense("2024-02-05", "50", "bank", testutil.WithCategory("rent")).
		Income("2024-01-05", "5000", "bank", testutil.WithCategory("rent")).
		Snapshot()

	slices := CategoryStructure(snap.Transactions, snap.Categories, testutil.Range("2024-01-01", "2024-01-31"), model.Expense, Filter{})

	require.Len(t, slices, 3)
	assert.Equal(t, "Rent", slices[0].Name)
	assert.Equal(t, "Food", slices[1].Name)
	assert.Equal(t, OtherCategory, slices[2].Name)
	assertDec(t, "600", slices[0].Value)
	assert.Equal(t, []int64{60, 30, 10}, []int64{slices[0].Percentage, slices[1].Percentage, slices[2].Percentage})
	for i, s := range slices {
		assert.Equal(t, Palette[i], s.Color)
	}
}

func TestCategoryStructure_UnknownCategoryIsOther(t *testing.T) {
	snap := testutil.NewLedger().
		Account("bank", "0").
		Income("2024-01-02", "10", "bank", testutil.WithCategory("deleted")).
		Income("2024-01-02", "5", "bank").
		Snapshot()

	slices := CategoryStructure(snap.Transactions, nil, testutil.Range("2024-01-01", "2024-01-31"), model.Income, Filter{})
	require.Len(t, slices, 1)
	assert.Equal(t, OtherCategory, slices[0].Name)
	assertDec(t, "15", slices[0].Value)
	assert.Equal(t, int64(100), slices[0].Percentage)
}

func TestCategoryStructure_ShareSumsToAboutHundred(t *testing.T) {
	b := testutil.NewLedger().Account("bank", "0")
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		id := "cat-" + name
		b.Category(id, name, model.Expense)
		b.Expense("2024-01-10", []string{"1", "2", "3"}[i%3], "bank", testutil.WithCategory(id))
	}
	snap := b.Snapshot()

	slices := CategoryStructure(snap.Transactions, snap.Categories, testutil.Range("2024-01-01", "2024-01-31"), model.Expense, Filter{})
	require.Len(t, slices, 12)

	var sum int64
	for i, s := range slices {
		sum += s.Percentage
		assert.Equal(t, Palette[i%len(Palette)], s.Color, "palette wraps")
		if i > 0 {
			assert.False(t, s.Value.GreaterThan(slices[i-1].Value), "sorted descending")
		}
	}
	assert.GreaterOrEqual(t, sum, int64(99))
	assert.LessOrEqual(t, sum, int64(101))

	// Equal values keep first-seen order.
	assert.Equal(t, "C", slices[0].Name)
	assert.Equal(t, "F", slices[1].Name)
}

func TestCategoryStructure_ZeroTotal(t *testing.T) {
	snap := testutil.NewLedger().
		Account("bank", "0").
		Expense("2024-01-10", "0", "bank").
		Snapshot()

	slices := CategoryStructure(snap.Transactions, nil, testutil.Range("2024-01-01", "2024-01-31"), model.Expense, Filter{})
	require.Len(t, slices, 1)
	assert.Equal(t, int64(0), slices[0].Percentage)

	assert.Empty(t, CategoryStructure(nil, nil, testutil.Range("2024-01-01", "2024-01-31"), model.Expense, Filter{}))
}

func TestCategoryStructure_Filter(t *testing.T) {
	snap := testutil.NewLedger().
		Account("a", "0").
		Account("b", "0").
		Expense("2024-01-10", "10", "a", testutil.WithProject("p")).
		Expense("2024-01-10", "30", "b").
		Snapshot()

	slices := CategoryStructure(snap.Transactions, nil, testutil.Range("2024-01-01", "2024-01-31"), model.Expense, Filter{AccountID: "a"})
	require.Len(t, slices, 1)
	assertDec(t, "10", slices[0].Value)

	slices = CategoryStructure(snap.Transactions, nil, testutil.Range("2024-01-01", "2024-01-31"), model.Expense, Filter{ProjectID: "p"})
	require.Len(t, slices, 1)
	assertDec(t, "10", slices[0].Value)
}

func TestCategoryStructure_TiesKeepFirstSeenOrder(t *testing.T) {
	snap := testutil.NewLedger().
		Account("bank", "0").
		Category("zeta", "Zeta", model.Expense).
		Category("alpha", "Alpha", model.Expense).
		Category("big", "Big", model.Expense).
		Expense("2024-01-02", "10", "bank", testutil.WithCategory("zeta")).
		Expense("2024-01-03", "10", "bank", testutil.WithCategory("alpha")).
		Expense("2024-01-04", "30", "bank", testutil.WithCategory("big")).
		Snapshot()

	slices := CategoryStructure(snap.Transactions, snap.Categories, testutil.Range("2024-01-01", "2024-01-31"), model.Expense, Filter{})

	require.Len(t, slices, 3)
	names := []string{slices[0].Name, slices[1].Name, slices[2].Name}
	assert.Equal(t, []string{"Big", "Zeta", "Alpha"}, names, "equal amounts stay in the order first seen")
	for i, s := range slices {
		assert.Equal(t, Palette[i], s.Color, "colour follows sorted position of %s", s.Name)
	}
}
