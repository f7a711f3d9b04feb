package sheets

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/studio-ledger/internal/common"
)

// MockAPI is an in-memory API for tests.
type MockAPI struct {
	// Sheets maps spreadsheet ID to sheet title to rows.
	Sheets map[string]map[string][][]any
	// Batches records every BatchUpdateValues call.
	Batches [][]*sheets.ValueRange
	// Added records titles created with AddSheet.
	Added []string
	// FailWrites makes the next N BatchUpdateValues calls return WriteErr.
	FailWrites int
	WriteErr   error
	TitleCalls int
	mu         sync.Mutex
}

var _ API = (*MockAPI)(nil)

// NewMockAPI creates an empty mock.
func NewMockAPI() *MockAPI {
	return &MockAPI{Sheets: make(map[string]map[string][][]any)}
}

// SetSheet stores rows under spreadsheetID/title.
func (m *MockAPI) SetSheet(spreadsheetID, title string, rows [][]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Sheets[spreadsheetID] == nil {
		m.Sheets[spreadsheetID] = make(map[string][][]any)
	}
	m.Sheets[spreadsheetID][title] = rows
}

// SheetTitles lists titles in sorted order.
func (m *MockAPI) SheetTitles(_ context.Context, spreadsheetID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TitleCalls++
	var titles []string
	for t := range m.Sheets[spreadsheetID] {
		titles = append(titles, t)
	}
	slices.Sort(titles)
	return titles, nil
}

// AddSheet creates an empty sheet.
func (m *MockAPI) AddSheet(_ context.Context, spreadsheetID, title string, _, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Sheets[spreadsheetID] == nil {
		m.Sheets[spreadsheetID] = make(map[string][][]any)
	}
	if _, ok := m.Sheets[spreadsheetID][title]; ok {
		return fmt.Errorf("sheet %q already exists", title)
	}
	m.Sheets[spreadsheetID][title] = nil
	m.Added = append(m.Added, title)
	return nil
}

// GetValues returns all rows of the sheet named in rng.
func (m *MockAPI) GetValues(_ context.Context, spreadsheetID, rng string) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for title, rows := range m.Sheets[spreadsheetID] {
		if rng == A1(title, "A:Z") {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("range %s: %w", rng, common.ErrNotFound)
}

// BatchUpdateValues records data.
func (m *MockAPI) BatchUpdateValues(_ context.Context, _ string, data []*sheets.ValueRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites > 0 {
		m.FailWrites--
		return m.WriteErr
	}
	m.Batches = append(m.Batches, data)
	return nil
}
