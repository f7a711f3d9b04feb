// Package engine runs the per-day booking and register pipeline over a period.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/studio-ledger/internal/classification"
	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/extract"
	"github.com/Veraticus/studio-ledger/internal/interval"
	"github.com/Veraticus/studio-ledger/internal/ledger"
	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/register"
	"github.com/Veraticus/studio-ledger/internal/service"
)

// Config holds configuration options for the engine.
type Config struct {
	// StudioName must appear verbatim in a booking text for it to count.
	// Empty disables the check.
	StudioName string
	Retry      service.RetryOptions
	Workers    int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Workers: 1,
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Progress is called after each finished day.
type Progress func(done, total int, day time.Time)

// DayStats counts what happened to the inputs of one day.
type DayStats struct {
	Bookings         int
	ForeignBookings  int
	Unknown          int
	RegisterRows     int
	RegisterRejected register.Rejections
	RegisterMissing  bool
}

// Result is the outcome of a run.
type Result struct {
	Totals ledger.Totals
	RunID  string
	Range  service.DateRange
	Days   []ledger.Snapshot
	Stats  []DayStats
}

// Engine orchestrates extraction, classification, interval computation and
// register reconciliation for each day of a period.
type Engine struct {
	bookings   service.BookingSource
	registers  service.RegisterSource
	classifier Classifier
	reconciler *register.Reconciler
	tables     map[string][][]string
	config     Config
}

// New creates an engine with the default configuration.
func New(bookings service.BookingSource, registers service.RegisterSource, classifier Classifier, reconciler *register.Reconciler) *Engine {
	return NewWithConfig(bookings, registers, classifier, reconciler, DefaultConfig())
}

// NewWithConfig creates an engine with a custom configuration.
func NewWithConfig(bookings service.BookingSource, registers service.RegisterSource, classifier Classifier, reconciler *register.Reconciler, config Config) *Engine {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &Engine{
		bookings:   bookings,
		registers:  registers,
		classifier: classifier,
		reconciler: reconciler,
		config:     config,
		tables:     make(map[string][][]string),
	}
}

// Run processes days in order and returns one snapshot per day together with
// the period totals.
func (e *Engine) Run(ctx context.Context, days []time.Time, progress Progress) (*Result, error) {
	runID := uuid.NewString()
	logger := slog.With("run_id", runID)
	logger.Info("Starting run", "days", len(days), "studio", e.config.StudioName, "workers", e.config.Workers)

	result := &Result{
		RunID:  runID,
		Range:  service.DateRangeOf(days),
		Totals: ledger.NewTotals(),
	}

	for i, day := range days {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		snap, stats, err := e.processDay(ctx, logger, day)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", day.Format(register.DateLayout), err)
		}
		result.Days = append(result.Days, snap)
		result.Stats = append(result.Stats, stats)
		result.Totals = result.Totals.Add(snap)

		if progress != nil {
			progress(i+1, len(days), day)
		}
	}

	logger.Info("Run complete", "days", result.Totals.Days())
	return result, nil
}

// ProcessDay runs the pipeline for a single day.
func (e *Engine) ProcessDay(ctx context.Context, day time.Time) (ledger.Snapshot, DayStats, error) {
	return e.processDay(ctx, slog.Default(), day)
}

func (e *Engine) processDay(ctx context.Context, logger *slog.Logger, day time.Time) (ledger.Snapshot, DayStats, error) {
	var stats DayStats
	logger = logger.With("day", day.Format(register.DateLayout))

	texts, err := common.Retry(ctx, func() ([]model.BookingText, error) {
		return e.bookings.Bookings(ctx, day)
	}, e.config.Retry)
	if err != nil {
		return ledger.Snapshot{}, stats, fmt.Errorf("failed to load bookings: %w", err)
	}

	records, err := e.records(ctx, texts, day)
	if err != nil {
		return ledger.Snapshot{}, stats, err
	}

	agg := ledger.NewDay(day)
	for i, rec := range records {
		if rec == nil {
			stats.ForeignBookings++
			logger.Debug("Skipping booking of another studio", "index", i)
			continue
		}
		stats.Bookings++
		if rec.Category == model.CategoryUnknown {
			stats.Unknown++
			logger.Info("Booking not classified", "index", i)
		}
		logger.Debug("Booking processed",
			"index", i,
			"category", rec.Category,
			"hours_in_day", rec.HoursInDay,
			"full_hours", rec.FullDurationHours)
		agg = agg.AddBooking(*rec)
	}

	table, missing, err := e.table(ctx, logger, day)
	if err != nil {
		return ledger.Snapshot{}, stats, err
	}
	stats.RegisterMissing = missing

	rows, rejected := e.reconciler.ParseTable(table, day)
	stats.RegisterRows = len(rows)
	stats.RegisterRejected = rejected
	if rejected.Total() > 0 {
		logger.Info("Register rows rejected",
			"short", rejected.Short,
			"bad_amount", rejected.BadAmount,
			"non_positive", rejected.NonPositive,
			"foreign_studio", rejected.ForeignStudio)
	}
	agg = agg.AddRegister(e.reconciler.Reconcile(rows))

	return agg.Snapshot(), stats, nil
}

// records turns texts into booking records, fanning out over the configured
// workers. A nil entry marks a booking of another studio. Order follows texts.
func (e *Engine) records(ctx context.Context, texts []model.BookingText, day time.Time) ([]*model.BookingRecord, error) {
	out := make([]*model.BookingRecord, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if rec, ok := e.Record(text, day); ok {
				out[i] = &rec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Record runs extraction, classification and interval computation for one
// booking. It reports false when the text does not belong to the configured
// studio.
func (e *Engine) Record(text model.BookingText, day time.Time) (model.BookingRecord, bool) {
	if e.config.StudioName != "" && !strings.Contains(string(text), e.config.StudioName) {
		return model.BookingRecord{}, false
	}

	fields := extract.Fields(text)
	cat := e.classifier.ClassifyFields(fields, text)
	cat = classification.ApplyNoShowOverride(cat, text)
	span := interval.Compute(fields, day)

	return model.BookingRecord{
		Category:          cat,
		HoursInDay:        span.HoursInDay,
		FullDurationHours: span.FullDurationHours,
		PrepaidAmount:     fields.PrepaidAmount,
	}, true
}

// table returns the register table of day's month, loading it once per run
// of the engine. A missing month yields an empty table.
func (e *Engine) table(ctx context.Context, logger *slog.Logger, day time.Time) ([][]string, bool, error) {
	key := day.Format("2006-01")
	if t, ok := e.tables[key]; ok {
		logger.Debug("Register month served from cache", "month", key)
		return t, t == nil, nil
	}

	table, err := common.Retry(ctx, func() ([][]string, error) {
		return e.registers.Table(ctx, day)
	}, e.config.Retry)
	switch {
	case errors.Is(err, common.ErrNotFound):
		logger.Info("Register month not found, register totals will be zero", "month", key)
		e.tables[key] = nil
		return nil, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to load register for %s: %w", key, err)
	}

	if table == nil {
		table = [][]string{}
	}
	e.tables[key] = table
	logger.Info("Register month loaded", "month", key, "rows", len(table))
	return table, false, nil
}
