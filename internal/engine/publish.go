package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/register"
	"github.com/Veraticus/studio-ledger/internal/report"
	"github.com/Veraticus/studio-ledger/internal/service"
)

// Publish writes every day of result through writer. A failed day does not
// stop the remaining days; all failures are returned joined.
func Publish(ctx context.Context, result *Result, writer service.CellWriter, layout report.Layout, retry service.RetryOptions) error {
	logger := slog.With("run_id", result.RunID)

	var errs []error
	for _, snap := range result.Days {
		date := snap.Date.Format(register.DateLayout)
		cells := report.Cells(snap, layout)

		err := common.WithRetry(ctx, func() error {
			return writer.WriteDay(ctx, snap.Date, cells)
		}, retry)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			if errors.Is(err, common.ErrRateLimit) {
				logger.Error("Quota exceeded while writing day, try again later", "day", date)
			} else {
				common.LogError(err, "Failed to write day", common.Fields{"day": date, "run_id": result.RunID})
			}
			errs = append(errs, fmt.Errorf("day %s: %w", date, err))
			continue
		}
		logger.Info("Day written", "day", date, "cells", len(cells))
	}
	return errors.Join(errs...)
}

// Review asks confirmer whether to publish and publishes on yes. It returns
// common.ErrCancelled when the operator declines.
func Review(ctx context.Context, result *Result, confirmer Confirmer, writer service.CellWriter, layout report.Layout, retry service.RetryOptions) error {
	ok, err := confirmer.Confirm(ctx, result)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return common.ErrCancelled
	}
	return Publish(ctx, result, writer, layout, retry)
}
