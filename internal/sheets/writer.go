package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/studio-ledger/internal/report"
	"github.com/Veraticus/studio-ledger/internal/service"
)

// SummaryWriter writes day cells into the monthly summary sheets.
type SummaryWriter struct {
	api           API
	logger        *slog.Logger
	known         map[string]bool
	spreadsheetID string
	rows          int
	cols          int
	mu            sync.Mutex
}

var _ service.CellWriter = (*SummaryWriter)(nil)

// NewSummaryWriter writes into spreadsheetID; missing month sheets are
// created with the configured size.
func NewSummaryWriter(api API, config Config, logger *slog.Logger) *SummaryWriter {
	if logger == nil {
		logger = slog.Default()
	}
	rows, cols := config.NewSheetRows, config.NewSheetCols
	if rows <= 0 {
		rows = DefaultConfig().NewSheetRows
	}
	if cols <= 0 {
		cols = DefaultConfig().NewSheetCols
	}
	return &SummaryWriter{
		api:           api,
		logger:        logger,
		spreadsheetID: config.SummarySpreadsheetID,
		rows:          rows,
		cols:          cols,
		known:         make(map[string]bool),
	}
}

// WriteDay sends all cells of day in a single batched values update.
func (w *SummaryWriter) WriteDay(ctx context.Context, day time.Time, cells []report.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	name := SummarySheetName(day)
	if err := w.ensureSheet(ctx, name); err != nil {
		return err
	}

	if err := w.api.BatchUpdateValues(ctx, w.spreadsheetID, ValueRanges(name, cells)); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	w.logger.Debug("Summary cells written", "sheet", name, "cells", len(cells))
	return nil
}

// ValueRanges turns cells into one single-cell range each.
func ValueRanges(sheet string, cells []report.Cell) []*sheets.ValueRange {
	data := make([]*sheets.ValueRange, 0, len(cells))
	for _, c := range cells {
		data = append(data, &sheets.ValueRange{
			Range:  A1(sheet, c.Ref()),
			Values: [][]any{{c.Value}},
		})
	}
	return data
}

func (w *SummaryWriter) ensureSheet(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.known[name] {
		return nil
	}
	titles, err := w.api.SheetTitles(ctx, w.spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to list summary sheets: %w", err)
	}
	if !slices.Contains(titles, name) {
		w.logger.Info("Summary sheet not found, creating", "sheet", name)
		if err := w.api.AddSheet(ctx, w.spreadsheetID, name, w.rows, w.cols); err != nil {
			return fmt.Errorf("failed to create summary sheet %q: %w", name, err)
		}
	}
	w.known[name] = true
	return nil
}
