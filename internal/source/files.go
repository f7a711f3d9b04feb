// Package source reads bookings and register tables from local files.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/studio-ledger/internal/model"
)

// DayDirLayout names the per-day booking directories.
const DayDirLayout = "2006-01-02"

// BookingDir serves booking texts stored one per file under
// <root>/<YYYY-MM-DD>/<name>.txt.
type BookingDir struct {
	root string
}

// NewBookingDir returns a source rooted at root.
func NewBookingDir(root string) *BookingDir {
	return &BookingDir{root: root}
}

// Bookings returns the texts of day in file name order. A missing day
// directory means the day had no bookings.
func (b *BookingDir) Bookings(ctx context.Context, day time.Time) ([]model.BookingText, error) {
	dir := filepath.Join(b.root, day.Format(DayDirLayout))

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	texts := make([]model.BookingText, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read booking %s: %w", name, err)
		}
		texts = append(texts, model.BookingText(data))
	}
	return texts, nil
}
