package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/sheets"
)

// RegisterCSV serves register tables exported as CSV, one file per month
// named after the register sheet ("октябрь 2025.csv").
type RegisterCSV struct {
	dir   string
	comma rune
}

// NewRegisterCSV returns a source reading from dir. A zero comma means ','.
func NewRegisterCSV(dir string, comma rune) *RegisterCSV {
	if comma == 0 {
		comma = ','
	}
	return &RegisterCSV{dir: dir, comma: comma}
}

// Path is the file holding the month containing month.
func (r *RegisterCSV) Path(month time.Time) string {
	return filepath.Join(r.dir, sheets.RegisterSheetName(month)+".csv")
}

// Table reads the month file. A missing file is common.ErrNotFound.
func (r *RegisterCSV) Table(_ context.Context, month time.Time) ([][]string, error) {
	path := r.Path(month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("register %s: %w", path, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open register %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadTable(f, r.comma)
}

// ReadTable parses CSV rows of varying width.
func ReadTable(in io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse register csv: %w", err)
	}
	return rows, nil
}
