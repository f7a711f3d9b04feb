package engine

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/report"
)

// MockBookingSource serves booking texts keyed by day.
type MockBookingSource struct {
	Days  map[string][]model.BookingText
	Err   error
	calls int
	mu    sync.Mutex
}

// NewMockBookingSource creates an empty booking source.
func NewMockBookingSource() *MockBookingSource {
	return &MockBookingSource{Days: make(map[string][]model.BookingText)}
}

// Add appends texts to day.
func (m *MockBookingSource) Add(day time.Time, texts ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := day.Format(time.DateOnly)
	for _, t := range texts {
		m.Days[key] = append(m.Days[key], model.BookingText(t))
	}
}

// Bookings returns the texts of day or the configured error.
func (m *MockBookingSource) Bookings(_ context.Context, day time.Time) ([]model.BookingText, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Days[day.Format(time.DateOnly)], nil
}

// Calls returns how many times Bookings was called.
func (m *MockBookingSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockRegisterSource serves register tables keyed by month. Months without
// a table are reported as common.ErrNotFound.
type MockRegisterSource struct {
	Months map[string][][]string
	Err    error
	calls  int
	mu     sync.Mutex
}

// NewMockRegisterSource creates an empty register source.
func NewMockRegisterSource() *MockRegisterSource {
	return &MockRegisterSource{Months: make(map[string][][]string)}
}

// Set stores the table of the month containing month.
func (m *MockRegisterSource) Set(month time.Time, table [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Months[month.Format("2006-01")] = table
}

// Table returns the stored table.
func (m *MockRegisterSource) Table(_ context.Context, month time.Time) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.Months[month.Format("2006-01")]
	if !ok {
		return nil, common.ErrNotFound
	}
	return t, nil
}

// Calls returns how many times Table was called.
func (m *MockRegisterSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockCellWriter records written days.
type MockCellWriter struct {
	Written map[string][]report.Cell
	// FailDays makes WriteDay fail for the listed dates (YYYY-MM-DD).
	FailDays map[string]error
	mu       sync.Mutex
}

// NewMockCellWriter creates a recording writer.
func NewMockCellWriter() *MockCellWriter {
	return &MockCellWriter{
		Written:  make(map[string][]report.Cell),
		FailDays: make(map[string]error),
	}
}

// WriteDay records cells for day.
func (m *MockCellWriter) WriteDay(_ context.Context, day time.Time, cells []report.Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := day.Format(time.DateOnly)
	if err, ok := m.FailDays[key]; ok {
		return err
	}
	m.Written[key] = cells
	return nil
}

// MockConfirmer answers every confirmation with a fixed decision.
type MockConfirmer struct {
	Err    error
	Seen   *Result
	Answer bool
}

// Confirm records result and returns the configured answer.
func (m *MockConfirmer) Confirm(_ context.Context, result *Result) (bool, error) {
	m.Seen = result
	return m.Answer, m.Err
}
