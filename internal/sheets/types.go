package sheets

import (
	"context"

	"github.com/Veraticus/tally/internal/model"
)

// ReportWriter publishes a workbook somewhere a bookkeeper can read it.
type ReportWriter interface {
	Write(ctx context.Context, wb *Workbook) error
}

// Tab is one sheet of the export. Rows hold cell values in column order;
// the first row is the header.
type Tab struct {
	Title           string
	Rows            [][]any
	CurrencyColumns []int
}

// Workbook is the full spreadsheet export for one date range.
type Workbook struct {
	Title string
	Range model.DateRange
	Tabs  []Tab
}

// Tab returns the tab titled title, or nil.
func (wb *Workbook) Tab(title string) *Tab {
	for i := range wb.Tabs {
		if wb.Tabs[i].Title == title {
			return &wb.Tabs[i]
		}
	}
	return nil
}

// RowCount sums the rows of every tab.
func (wb *Workbook) RowCount() int {
	n := 0
	for _, t := range wb.Tabs {
		n += len(t.Rows)
	}
	return n
}
