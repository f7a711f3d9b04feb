package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/service"
)

// RegisterReader loads monthly register sheets.
type RegisterReader struct {
	api           API
	logger        *slog.Logger
	spreadsheetID string
}

var _ service.RegisterSource = (*RegisterReader)(nil)

// NewRegisterReader reads register sheets of spreadsheetID through api.
func NewRegisterReader(api API, spreadsheetID string, logger *slog.Logger) *RegisterReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterReader{api: api, spreadsheetID: spreadsheetID, logger: logger}
}

// Table returns every row of the month's register sheet as strings. A missing
// sheet is common.ErrNotFound.
func (r *RegisterReader) Table(ctx context.Context, month time.Time) ([][]string, error) {
	name := RegisterSheetName(month)

	titles, err := r.api.SheetTitles(ctx, r.spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list register sheets: %w", err)
	}
	if !slices.Contains(titles, name) {
		return nil, fmt.Errorf("register sheet %q: %w", name, common.ErrNotFound)
	}

	values, err := r.api.GetValues(ctx, r.spreadsheetID, A1(name, "A:Z"))
	if err != nil {
		return nil, fmt.Errorf("failed to read register sheet %q: %w", name, err)
	}

	table := make([][]string, len(values))
	for i, row := range values {
		table[i] = toStrings(row)
	}
	r.logger.Debug("Register sheet read", "sheet", name, "rows", len(table))
	return table, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
