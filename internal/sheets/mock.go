package sheets

import (
	"context"
	"sync"
)

// MockWriter records workbooks instead of calling Google.
type MockWriter struct {
	// Err, when set, is returned from every Write after recording.
	Err       error
	workbooks []*Workbook
	mu        sync.Mutex
}

// Write records wb.
func (m *MockWriter) Write(_ context.Context, wb *Workbook) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workbooks = append(m.workbooks, wb)
	return m.Err
}

// Written returns the recorded workbooks in call order.
func (m *MockWriter) Written() []*Workbook {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Workbook(nil), m.workbooks...)
}

var _ ReportWriter = (*MockWriter)(nil)
